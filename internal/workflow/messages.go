package workflow

import (
	"fmt"
	"strings"

	"github.com/MATADOR666-spec/line-bot-project/internal/model"
)

// 回复文案（泰语，面向学校用户）
const (
	MsgChooseRole      = "กรุณาเลือกบทบาท: นักเรียน / ครู / แอดมิน"
	MsgInvalidRole     = "บทบาทไม่ถูกต้อง กรุณาพิมพ์ นักเรียน, ครู หรือ แอดมิน"
	MsgAdminPassword   = "กรุณากรอกรหัสผ่านแอดมิน"
	MsgWrongPassword   = "รหัสผ่านไม่ถูกต้อง กรุณาลองใหม่อีกครั้ง"
	MsgAskName         = "กรุณากรอกชื่อ-นามสกุล"
	MsgAskRoom         = "กรุณากรอกห้องเรียน (เช่น ม.5/1)"
	MsgAskRollNumber   = "กรุณากรอกเลขที่"
	MsgAskDutyWeekday  = "กรุณากรอกวันที่อยู่เวร (เช่น วันจันทร์)"
	MsgEmptyInput      = "ไม่ได้รับข้อมูล กรุณากรอกใหม่อีกครั้ง"
	MsgEditCancelled   = "ยกเลิกการแก้ไขข้อมูลแล้ว"
	MsgCancelled       = "ยกเลิกรายการแล้ว"
	MsgSystemError     = "ระบบขัดข้อง กรุณาลองใหม่อีกครั้งภายหลัง"
	MsgImageFailed     = "ไม่สามารถบันทึกรูปภาพได้ กรุณาส่งรูปนี้ใหม่อีกครั้ง"
	MsgSendImagesFirst = "หากต้องการส่งหลักฐานเวร กรุณาพิมพ์ \"ส่งเวร\" ก่อน"
	MsgHelp            = "พิมพ์ \"ข้อมูลส่วนตัว\" เพื่อลงทะเบียนหรือแก้ไขข้อมูล\nพิมพ์ \"ส่งเวร\" เพื่อส่งหลักฐานการทำเวร"

	MsgNotRegistered     = "กรุณาลงทะเบียนก่อน โดยพิมพ์ \"ข้อมูลส่วนตัว\""
	MsgRoleNotAllowed    = "บทบาทของคุณไม่สามารถส่งหลักฐานเวรได้"
	MsgWeekend           = "วันนี้เป็นวันหยุดเสาร์-อาทิตย์ ไม่ต้องส่งหลักฐานเวร"
	MsgHoliday           = "วันนี้เป็นวันหยุด ไม่ต้องส่งหลักฐานเวร"
	MsgEvidenceCommitted = "ส่งหลักฐานเวรเรียบร้อยแล้ว ✅ ขอบคุณครับ"
	MsgEvidenceExpired   = "รอบการส่งหลักฐานเวรของวันก่อนหมดอายุแล้ว กรุณาพิมพ์ \"ส่งเวร\" ใหม่อีกครั้ง"
)

// MsgEditConfirm 已注册用户进入编辑确认
func MsgEditConfirm(p *model.Profile) string {
	return "ข้อมูลของคุณ\n" + ProfileSummary(p) + "\n\nต้องการแก้ไขข้อมูลหรือไม่? (ใช่/ไม่)"
}

// MsgRegistered 注册完成确认
func MsgRegistered(p *model.Profile) string {
	return "บันทึกข้อมูลเรียบร้อย ✅\n" + ProfileSummary(p)
}

// ProfileSummary 资料摘要
func ProfileSummary(p *model.Profile) string {
	lines := []string{
		"ชื่อ: " + p.DisplayName,
		"บทบาท: " + RoleLabel(p.Role),
		"ห้อง: " + p.Room,
	}
	if p.Role != model.RoleTeacher {
		lines = append(lines, "เลขที่: "+p.RollNumber, "เวรวัน: "+p.DutyWeekday)
	}
	return strings.Join(lines, "\n")
}

// MsgNotDutyDay 今天不是该用户的值班日
func MsgNotDutyDay(dutyWeekday string) string {
	return fmt.Sprintf("วันนี้ไม่ใช่วันเวรของคุณ (เวรของคุณคือ %s)", dutyWeekday)
}

// MsgOutsideWindow 不在提交时间窗内
func MsgOutsideWindow(w Window) string {
	return fmt.Sprintf("ส่งหลักฐานเวรได้เฉพาะเวลา %s - %s น. เท่านั้น", w.StartLabel(), w.EndLabel())
}

// MsgAlreadySubmitted 教室今天已提交
func MsgAlreadySubmitted(room string) string {
	return fmt.Sprintf("ห้อง %s ส่งหลักฐานเวรของวันนี้แล้ว", room)
}

// MsgSendImages 证据收集开始
func MsgSendImages() string {
	return fmt.Sprintf("กรุณาส่งรูปภาพหลักฐานเวร %d รูป ทีละรูป", RequiredImages)
}

// MsgImageReceived 已收到第 k 张
func MsgImageReceived(k int) string {
	return fmt.Sprintf("ได้รับรูปแล้ว %d/%d", k, RequiredImages)
}

// MsgWaitingImages 收集态收到文本
func MsgWaitingImages(k int) string {
	return fmt.Sprintf("กรุณาส่งรูปภาพ (ได้รับแล้ว %d/%d) หรือพิมพ์ \"ยกเลิก\" เพื่อยกเลิก", k, RequiredImages)
}

// MsgTeacherNotice 证据提交后通知同班教师
func MsgTeacherNotice(l *model.DutyLog, submitter string) string {
	return fmt.Sprintf("📢 ห้อง %s ส่งหลักฐานเวรประจำ%s แล้ว\nผู้ส่ง: %s (เลขที่ %s)\nเวลา: %s\n%s",
		l.Room, l.DutyWeekday, submitter, l.RollNumber,
		l.SubmittedAt.Format("15:04"),
		strings.Join(l.ImageURLs(), "\n"))
}

// MsgReminder 当日值班提醒
func MsgReminder(w Window) string {
	return fmt.Sprintf("⏰ วันนี้เป็นวันเวรของคุณ อย่าลืมส่งหลักฐานเวรระหว่างเวลา %s - %s น.", w.StartLabel(), w.EndLabel())
}

// MsgMissingEvidence 未提交升级告警
func MsgMissingEvidence(room, date string) string {
	return fmt.Sprintf("⚠️ ห้อง %s ยังไม่ได้ส่งหลักฐานเวรของวันที่ %s", room, date)
}
