package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/MATADOR666-spec/line-bot-project/internal/model"
)

// RequiredImages 每条值班记录所需的证据图片数
const RequiredImages = 3

// ── 提交时间窗 ──

// Window 一天内的提交时间窗（分钟粒度，两端包含）
type Window struct {
	Start int // 自零点起的分钟数
	End   int
}

// ParseWindow 解析 "HH:MM" 形式的起止时间
func ParseWindow(start, end string) (Window, error) {
	s, err := time.Parse("15:04", start)
	if err != nil {
		return Window{}, fmt.Errorf("无效的开始时间 %q: %w", start, err)
	}
	e, err := time.Parse("15:04", end)
	if err != nil {
		return Window{}, fmt.Errorf("无效的结束时间 %q: %w", end, err)
	}
	w := Window{Start: s.Hour()*60 + s.Minute(), End: e.Hour()*60 + e.Minute()}
	if w.End < w.Start {
		return Window{}, fmt.Errorf("结束时间 %s 早于开始时间 %s", end, start)
	}
	return w, nil
}

// Contains t 的本地时刻是否在窗内；17:00:59 视为 17:00
func (w Window) Contains(t time.Time) bool {
	m := t.Hour()*60 + t.Minute()
	return m >= w.Start && m <= w.End
}

// StartLabel HH:MM
func (w Window) StartLabel() string { return fmt.Sprintf("%02d:%02d", w.Start/60, w.Start%60) }

// EndLabel HH:MM
func (w Window) EndLabel() string { return fmt.Sprintf("%02d:%02d", w.End/60, w.End%60) }

// ── 日历 ──

// DateKey 业务日期键
func DateKey(t time.Time) string { return t.Format(model.DateLayout) }

// IsWeekend 周六或周日
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ── 入口门 ──

// Verdict 入口门判定结果
type Verdict int

const (
	VerdictOpen Verdict = iota
	VerdictNotRegistered
	VerdictRoleNotAllowed
	VerdictWeekend
	VerdictHoliday
	VerdictNotDutyDay
	VerdictOutsideWindow
	VerdictAlreadySubmitted
)

var verdictNames = map[Verdict]string{
	VerdictOpen:             "open",
	VerdictNotRegistered:    "not_registered",
	VerdictRoleNotAllowed:   "role_not_allowed",
	VerdictWeekend:          "weekend",
	VerdictHoliday:          "holiday",
	VerdictNotDutyDay:       "not_duty_day",
	VerdictOutsideWindow:    "outside_window",
	VerdictAlreadySubmitted: "already_submitted",
}

func (v Verdict) String() string { return verdictNames[v] }

// Lookup 入口门所需的持久层查询
type Lookup interface {
	IsHoliday(ctx context.Context, date string) (bool, error)
	HasDutyLog(ctx context.Context, room, date string) (bool, error)
}

// Policy 值班证据提交策略
type Policy struct {
	Window Window

	// AllowedRoles 可提交证据的角色；Teacher 即使配置也会被排除
	AllowedRoles map[model.Role]bool

	// WeekdayExempt 免星期匹配的角色（仍受周末/节假日约束）
	WeekdayExempt map[model.Role]bool
}

// NewPolicy 由配置字符串构造策略
func NewPolicy(w Window, allowed, exempt []string) Policy {
	p := Policy{
		Window:        w,
		AllowedRoles:  make(map[model.Role]bool),
		WeekdayExempt: make(map[model.Role]bool),
	}
	for _, r := range allowed {
		if role := model.Role(r); role.Valid() && role != model.RoleTeacher {
			p.AllowedRoles[role] = true
		}
	}
	for _, r := range exempt {
		p.WeekdayExempt[model.Role(r)] = true
	}
	return p
}

// Evaluate 按序评估入口门，首个失败即返回
// now 必须已转换到值班时区
func (p Policy) Evaluate(ctx context.Context, profile *model.Profile, now time.Time, lk Lookup) (Verdict, error) {
	if profile == nil {
		return VerdictNotRegistered, nil
	}
	if !p.AllowedRoles[profile.Role] {
		return VerdictRoleNotAllowed, nil
	}

	if IsWeekend(now) {
		return VerdictWeekend, nil
	}
	date := DateKey(now)
	holiday, err := lk.IsHoliday(ctx, date)
	if err != nil {
		return VerdictOpen, fmt.Errorf("查询节假日失败: %w", err)
	}
	if holiday {
		return VerdictHoliday, nil
	}
	if !p.WeekdayExempt[profile.Role] && !SameWeekday(profile.DutyWeekday, now.Weekday()) {
		return VerdictNotDutyDay, nil
	}

	if !p.Window.Contains(now) {
		return VerdictOutsideWindow, nil
	}

	exists, err := lk.HasDutyLog(ctx, profile.Room, date)
	if err != nil {
		return VerdictOpen, fmt.Errorf("查询值班记录失败: %w", err)
	}
	if exists {
		return VerdictAlreadySubmitted, nil
	}
	return VerdictOpen, nil
}

// RejectMessage 入口门失败时回复给用户的文案
func (p Policy) RejectMessage(v Verdict, profile *model.Profile) string {
	switch v {
	case VerdictNotRegistered:
		return MsgNotRegistered
	case VerdictRoleNotAllowed:
		return MsgRoleNotAllowed
	case VerdictWeekend:
		return MsgWeekend
	case VerdictHoliday:
		return MsgHoliday
	case VerdictNotDutyDay:
		return MsgNotDutyDay(profile.DutyWeekday)
	case VerdictOutsideWindow:
		return MsgOutsideWindow(p.Window)
	case VerdictAlreadySubmitted:
		return MsgAlreadySubmitted(profile.Room)
	}
	return ""
}

// ── 证据收集 ──

// StartEvidence 入口门通过后开启收集会话，记录通过入口门的那一天
func StartEvidence(profile *model.Profile, now time.Time) Result {
	snapshot := *profile
	return Result{
		Next: State{
			Step:     StepEvidenceCollecting,
			Role:     profile.Role,
			Snapshot: &snapshot,
			Images:   []string{},
			DutyDate: DateKey(now),
		},
		Reply: MsgSendImages(),
	}
}

// EvidenceExpired 收集会话跨天后失效，需重新通过入口门
func EvidenceExpired(st State, now time.Time) bool {
	return st.Step == StepEvidenceCollecting && st.DutyDate != "" && st.DutyDate != DateKey(now)
}

// AddEvidence 追加一张已存储的图片引用
// 达到 RequiredImages 时 Completed=true，由 service 提交记录
func AddEvidence(st State, ref string) Result {
	if st.Step != StepEvidenceCollecting || st.Snapshot == nil {
		return stay(st, MsgSendImagesFirst)
	}
	next := st
	next.Images = append(append([]string{}, st.Images...), ref)
	if len(next.Images) >= RequiredImages {
		next.Images = next.Images[:RequiredImages]
		return Result{Next: next, End: true, Completed: true}
	}
	return Result{Next: next, Reply: MsgImageReceived(len(next.Images))}
}

// BuildDutyLog 由完成的收集状态构造值班记录
// 业务日期取自入口门通过的那一天，now 仅作为提交时间
func BuildDutyLog(st State, now time.Time) *model.DutyLog {
	p := st.Snapshot
	date := st.DutyDate
	if date == "" {
		date = DateKey(now)
	}
	return &model.DutyLog{
		UserID:      p.UserID,
		Room:        p.Room,
		DutyDate:    date,
		DutyWeekday: p.DutyWeekday,
		RollNumber:  p.RollNumber,
		ImageURL1:   st.Images[0],
		ImageURL2:   st.Images[1],
		ImageURL3:   st.Images[2],
		SubmittedAt: now,
		Status:      model.DutyLogSubmitted,
	}
}
