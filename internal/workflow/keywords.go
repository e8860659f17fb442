package workflow

import (
	"strings"
	"time"

	"github.com/MATADOR666-spec/line-bot-project/internal/model"
)

// ── 入口关键字 ──

var (
	profileKeywords  = []string{"ข้อมูลส่วนตัว", "profile"}
	evidenceKeywords = []string{"ส่งเวร", "submit"}
	cancelKeywords   = []string{"ยกเลิก", "cancel"}
	yesKeywords      = []string{"ใช่", "ตกลง", "yes", "Yes", "y", "Y"}
)

// 角色关键字精确匹配，区分大小写
var roleKeywords = map[string]model.Role{
	"นักเรียน": model.RoleStudent,
	"Student":  model.RoleStudent,
	"ครู":      model.RoleTeacher,
	"Teacher":  model.RoleTeacher,
	"แอดมิน":   model.RoleAdmin,
	"Admin":    model.RoleAdmin,
}

func matchAny(text string, set []string) bool {
	for _, k := range set {
		if text == k {
			return true
		}
	}
	return false
}

// IsProfileKeyword 查看/编辑资料入口
func IsProfileKeyword(text string) bool { return matchAny(text, profileKeywords) }

// IsEvidenceKeyword 提交值班证据入口
func IsEvidenceKeyword(text string) bool { return matchAny(text, evidenceKeywords) }

// IsCancelKeyword 取消当前会话
func IsCancelKeyword(text string) bool { return matchAny(text, cancelKeywords) }

func isAffirmative(text string) bool { return matchAny(text, yesKeywords) }

// ParseRole 角色关键字解析
func ParseRole(text string) (model.Role, bool) {
	r, ok := roleKeywords[text]
	return r, ok
}

// RoleLabel 角色的泰语显示名
func RoleLabel(r model.Role) string {
	switch r {
	case model.RoleStudent:
		return "นักเรียน"
	case model.RoleTeacher:
		return "ครู"
	case model.RoleAdmin:
		return "แอดมิน"
	}
	return string(r)
}

// ── 星期名 ──

var thaiWeekdays = [...]string{
	time.Sunday:    "วันอาทิตย์",
	time.Monday:    "วันจันทร์",
	time.Tuesday:   "วันอังคาร",
	time.Wednesday: "วันพุธ",
	time.Thursday:  "วันพฤหัสบดี",
	time.Friday:    "วันศุกร์",
	time.Saturday:  "วันเสาร์",
}

var weekdayAliases = map[string]time.Weekday{}

func init() {
	for i, name := range thaiWeekdays {
		wd := time.Weekday(i)
		weekdayAliases[name] = wd
		weekdayAliases[strings.TrimPrefix(name, "วัน")] = wd
		weekdayAliases[strings.ToLower(wd.String())] = wd
		weekdayAliases[strings.ToLower(wd.String()[:3])] = wd
	}
	weekdayAliases["พฤหัส"] = time.Thursday
	weekdayAliases["วันพฤหัส"] = time.Thursday
}

// ThaiWeekday 星期的泰语全称
func ThaiWeekday(wd time.Weekday) string { return thaiWeekdays[wd] }

// ParseWeekday 解析用户填写的值班星期，支持泰语全称/简称与英文
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(s)
	if wd, ok := weekdayAliases[s]; ok {
		return wd, true
	}
	wd, ok := weekdayAliases[strings.ToLower(s)]
	return wd, ok
}

// SameWeekday 资料中的值班星期是否为 wd；无法识别（含占位符 "-"）视为不匹配
func SameWeekday(stored string, wd time.Weekday) bool {
	parsed, ok := ParseWeekday(stored)
	return ok && parsed == wd
}
