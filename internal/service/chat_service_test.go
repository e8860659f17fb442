package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MATADOR666-spec/line-bot-project/config"
	"github.com/MATADOR666-spec/line-bot-project/internal/model"
	"github.com/MATADOR666-spec/line-bot-project/internal/repository"
	"github.com/MATADOR666-spec/line-bot-project/internal/session"
	"github.com/MATADOR666-spec/line-bot-project/internal/workflow"
	"github.com/MATADOR666-spec/line-bot-project/pkg/jwt"
	"github.com/MATADOR666-spec/line-bot-project/pkg/line"
)

// ── 测试辅助 ──

const adminPassword = "secret-pass"

var bangkok, _ = time.LoadLocation("Asia/Bangkok")

// 2026-10-14 为星期三
func wednesday(hour, minute int) time.Time {
	return time.Date(2026, 10, 14, hour, minute, 0, 0, bangkok)
}

type fixture struct {
	svc           *Service
	profiles      *mockProfileRepo
	logs          *mockDutyLogRepo
	holidays      *mockHolidayRepo
	notifications *mockNotificationRepo
	sessions      *session.MemoryStore
	messenger     *fakeMessenger
	storage       *fakeStorage
	deduper       *fakeDeduper

	mu  sync.Mutex
	now time.Time
	seq int64
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:         "test-secret-key-for-unit-tests",
			AccessTokenTTL:    time.Hour,
			AdminPasswordHash: string(hash),
		},
		Duty: config.DutyConfig{
			Timezone:      "Asia/Bangkok",
			WindowStart:   "14:40",
			WindowEnd:     "17:00",
			EvidenceRoles: []string{"student", "admin"},
		},
	}
}

func setupFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{
		profiles:      newMockProfileRepo(),
		logs:          newMockDutyLogRepo(),
		holidays:      newMockHolidayRepo(),
		notifications: newMockNotificationRepo(),
		sessions:      session.NewMemoryStore(0),
		messenger:     newFakeMessenger(),
		storage:       &fakeStorage{},
		deduper:       &fakeDeduper{},
		now:           now,
	}
	cfg := testConfig(t)
	repo := &repository.Repository{
		Profile:      f.profiles,
		DutyLog:      f.logs,
		Holiday:      f.holidays,
		Notification: f.notifications,
	}
	svc, err := NewService(cfg, Deps{
		Repo:      repo,
		Sessions:  f.sessions,
		Messenger: f.messenger,
		Storage:   f.storage,
		Deduper:   f.deduper,
		JWT:       jwt.NewManager(&cfg.Auth),
		Now:       f.clock,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("创建 Service 失败: %v", err)
	}
	f.svc = svc
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) setNow(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

func (f *fixture) event(userID string, kind line.EventKind) line.Event {
	n := atomic.AddInt64(&f.seq, 1)
	return line.Event{
		ID:         fmt.Sprintf("EV%d", n),
		UserID:     userID,
		ReplyToken: fmt.Sprintf("RT:%s:%d", userID, n),
		Kind:       kind,
		MessageID:  fmt.Sprintf("M%d", n),
	}
}

// say 发送文本并返回回复
func (f *fixture) say(userID, text string) string {
	ev := f.event(userID, line.KindText)
	ev.Text = text
	f.svc.Chat.Handle(context.Background(), ev)
	return f.messenger.lastReply(userID)
}

// sendImage 发送图片并返回回复
func (f *fixture) sendImage(userID string) string {
	f.svc.Chat.Handle(context.Background(), f.event(userID, line.KindImage))
	return f.messenger.lastReply(userID)
}

func (f *fixture) session(t *testing.T, userID string) *session.Session {
	t.Helper()
	s, err := f.sessions.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("读取会话失败: %v", err)
	}
	return s
}

func studentProfile(userID, room, weekday string) *model.Profile {
	return &model.Profile{UserID: userID, DisplayName: "นักเรียน " + userID, Role: model.RoleStudent,
		Room: room, RollNumber: "12", DutyWeekday: weekday, RegisteredOn: "2026-10-01", Status: model.ProfileActive}
}

func teacherProfile(userID, room string) *model.Profile {
	return &model.Profile{UserID: userID, DisplayName: "ครู " + userID, Role: model.RoleTeacher,
		Room: room, RollNumber: model.Sentinel, DutyWeekday: model.Sentinel, RegisteredOn: "2026-10-01", Status: model.ProfileActive}
}

// ── 注册向导 ──

func TestChat_RegistrationScenario(t *testing.T) {
	f := setupFixture(t, wednesday(10, 0))

	if got := f.say("U1", "profile"); got != workflow.MsgChooseRole {
		t.Fatalf("期望角色选择提示，实际=%q", got)
	}
	if s := f.session(t, "U1"); s == nil || s.State.Step != workflow.StepRoleSelect {
		t.Fatalf("期望会话处于 role_select")
	}

	if got := f.say("U1", "Student"); got != workflow.MsgAskName {
		t.Fatalf("期望姓名提示，实际=%q", got)
	}
	f.say("U1", "สมชาย ใจดี")
	f.say("U1", "Room5A")
	f.say("U1", "12")
	got := f.say("U1", "Wednesday")

	p, ok := f.profiles.profiles["U1"]
	if !ok {
		t.Fatal("资料应已写入")
	}
	if p.Role != model.RoleStudent || p.Room != "Room5A" || p.RollNumber != "12" || p.DutyWeekday != "Wednesday" {
		t.Errorf("资料字段不符: %+v", p)
	}
	if p.RegisteredOn != "2026-10-14" || p.Status != model.ProfileActive {
		t.Errorf("注册日期或状态不符: %s %s", p.RegisteredOn, p.Status)
	}
	if got != workflow.MsgRegistered(p) {
		t.Errorf("期望注册确认，实际=%q", got)
	}
	if f.session(t, "U1") != nil {
		t.Error("完成后会话应被清除")
	}
}

func TestChat_InvalidRoleNeverAdvances(t *testing.T) {
	f := setupFixture(t, wednesday(10, 0))
	f.say("U1", "profile")
	for i := 0; i < 7; i++ {
		if got := f.say("U1", "student"); got != workflow.MsgInvalidRole {
			t.Fatalf("第 %d 次无效角色期望纠正提示，实际=%q", i+1, got)
		}
	}
	if s := f.session(t, "U1"); s.State.Step != workflow.StepRoleSelect {
		t.Errorf("无效输入后步骤应不变，实际=%s", s.State.Step)
	}
}

func TestChat_TeacherBranchCommitsSentinels(t *testing.T) {
	f := setupFixture(t, wednesday(10, 0))
	f.say("T1", "ข้อมูลส่วนตัว")
	f.say("T1", "ครู")
	f.say("T1", "ครูสมศรี")
	f.say("T1", "Room5A")

	p := f.profiles.profiles["T1"]
	if p == nil || p.RollNumber != model.Sentinel || p.DutyWeekday != model.Sentinel {
		t.Errorf("教师资料应使用占位符: %+v", p)
	}
}

func TestChat_AdminPasswordGate(t *testing.T) {
	f := setupFixture(t, wednesday(10, 0))
	f.say("A1", "profile")
	if got := f.say("A1", "Admin"); got != workflow.MsgAdminPassword {
		t.Fatalf("期望密码提示，实际=%q", got)
	}
	for i := 0; i < 3; i++ {
		if got := f.say("A1", "wrong"); got != workflow.MsgWrongPassword {
			t.Fatalf("错误密码期望重新提示，实际=%q", got)
		}
	}
	if got := f.say("A1", adminPassword); got != workflow.MsgAskName {
		t.Fatalf("正确密码后期望姓名提示，实际=%q", got)
	}
}

func TestChat_EditConfirmDeclined(t *testing.T) {
	f := setupFixture(t, wednesday(10, 0))
	f.profiles.add(studentProfile("U1", "Room5A", "Wednesday"))

	got := f.say("U1", "profile")
	if !strings.Contains(got, "Room5A") {
		t.Errorf("编辑确认应展示现有资料，实际=%q", got)
	}
	if got := f.say("U1", "ไม่"); got != workflow.MsgEditCancelled {
		t.Errorf("期望取消提示，实际=%q", got)
	}
	if f.session(t, "U1") != nil {
		t.Error("否定答复后会话应被清除")
	}
	if f.profiles.profiles["U1"].Room != "Room5A" {
		t.Error("取消编辑不应修改资料")
	}
}

func TestChat_EditReplacesProfile(t *testing.T) {
	f := setupFixture(t, wednesday(10, 0))
	f.profiles.add(studentProfile("U1", "Room5A", "Wednesday"))

	f.say("U1", "profile")
	if got := f.say("U1", "ใช่"); got != workflow.MsgAskName {
		t.Fatalf("确认编辑后期望姓名提示，实际=%q", got)
	}
	f.say("U1", "ชื่อใหม่")
	f.say("U1", "Room6B")
	f.say("U1", "7")
	f.say("U1", "Friday")

	p := f.profiles.profiles["U1"]
	if p.Room != "Room6B" || p.DutyWeekday != "Friday" || p.DisplayName != "ชื่อใหม่" {
		t.Errorf("资料应被整体替换: %+v", p)
	}
}

func TestChat_UpsertFailureKeepsSession(t *testing.T) {
	f := setupFixture(t, wednesday(10, 0))
	f.say("T1", "profile")
	f.say("T1", "Teacher")
	f.say("T1", "ครูสมศรี")

	f.profiles.upsertErr = errBoom
	if got := f.say("T1", "Room5A"); got != workflow.MsgSystemError {
		t.Fatalf("持久层失败应回复系统错误，实际=%q", got)
	}
	s := f.session(t, "T1")
	if s == nil || s.State.Step != workflow.StepRoom {
		t.Fatalf("会话应停留在最后一个字段")
	}

	f.profiles.upsertErr = nil
	f.say("T1", "Room5A")
	if f.profiles.profiles["T1"] == nil {
		t.Error("重试后资料应写入")
	}
}

// ── 证据工作流 ──

func seedRoom5A(f *fixture) {
	f.profiles.add(studentProfile("U1", "Room5A", "Wednesday"))
	f.profiles.add(teacherProfile("T1", "Room5A"))
	f.profiles.add(teacherProfile("T2", "Room5A"))
	f.profiles.add(teacherProfile("T3", "Room5B"))
}

func TestChat_EvidenceScenario(t *testing.T) {
	f := setupFixture(t, wednesday(15, 0))
	seedRoom5A(f)

	if got := f.say("U1", "ส่งเวร"); got != workflow.MsgSendImages() {
		t.Fatalf("入口门应通过，实际=%q", got)
	}
	if s := f.session(t, "U1"); s == nil || s.State.Step != workflow.StepEvidenceCollecting {
		t.Fatal("应开启证据收集会话")
	}

	if got := f.sendImage("U1"); got != workflow.MsgImageReceived(1) {
		t.Errorf("第1张期望 1/3，实际=%q", got)
	}
	if got := f.sendImage("U1"); got != workflow.MsgImageReceived(2) {
		t.Errorf("第2张期望 2/3，实际=%q", got)
	}
	if f.logs.count() != 0 {
		t.Fatal("不足 3 张不应提交")
	}

	if got := f.sendImage("U1"); got != workflow.MsgEvidenceCommitted {
		t.Errorf("第3张期望提交成功，实际=%q", got)
	}

	log := f.logs.logs["Room5A|2026-10-14"]
	if log == nil {
		t.Fatal("应写入 (Room5A, 2026-10-14) 记录")
	}
	if log.UserID != "U1" || log.RollNumber != "12" || log.DutyWeekday != "Wednesday" {
		t.Errorf("记录字段不符: %+v", log)
	}
	for i, u := range log.ImageURLs() {
		if !strings.HasPrefix(u, "https://cdn.example.com/duty/2026-10-14/Room5A/") || !strings.HasSuffix(u, ".jpg") {
			t.Errorf("第 %d 张图片 URL 不符: %s", i+1, u)
		}
	}

	pushed := f.messenger.pushedTo()
	if pushed["T1"] != 1 || pushed["T2"] != 1 || pushed["T3"] != 0 {
		t.Errorf("只应通知 Room5A 的教师，实际=%v", pushed)
	}
	if n := len(f.notifications.byStatus(model.NotifySent)); n != 2 {
		t.Errorf("期望 2 条通知流水，实际=%d", n)
	}
	if f.session(t, "U1") != nil {
		t.Error("提交后会话应被清除")
	}
}

func TestChat_OutsideWindowRejected(t *testing.T) {
	f := setupFixture(t, wednesday(13, 0))
	seedRoom5A(f)

	got := f.say("U1", "ส่งเวร")
	w, _ := workflow.ParseWindow("14:40", "17:00")
	if got != workflow.MsgOutsideWindow(w) {
		t.Errorf("期望时间窗提示，实际=%q", got)
	}
	if f.session(t, "U1") != nil {
		t.Error("被拒绝时不应创建会话")
	}
}

func TestChat_AlreadySubmittedRejected(t *testing.T) {
	f := setupFixture(t, wednesday(15, 0))
	seedRoom5A(f)
	f.profiles.add(studentProfile("U2", "Room5A", "Wednesday"))
	_ = f.logs.Create(context.Background(), &model.DutyLog{Room: "Room5A", DutyDate: "2026-10-14", UserID: "U1"})

	if got := f.say("U2", "submit"); got != workflow.MsgAlreadySubmitted("Room5A") {
		t.Errorf("期望已提交提示，实际=%q", got)
	}
	if f.session(t, "U2") != nil {
		t.Error("被拒绝时不应创建会话")
	}
}

func TestChat_GateRejections(t *testing.T) {
	cases := []struct {
		name  string
		now   time.Time
		user  string
		setup func(f *fixture)
		want  string
	}{
		{"未注册", wednesday(15, 0), "U9", func(*fixture) {}, workflow.MsgNotRegistered},
		{"教师", wednesday(15, 0), "T1", func(*fixture) {}, workflow.MsgRoleNotAllowed},
		{"周六", time.Date(2026, 10, 17, 15, 0, 0, 0, bangkok), "U1", func(*fixture) {}, workflow.MsgWeekend},
		{"节假日", wednesday(15, 0), "U1", func(f *fixture) {
			f.holidays.holidays["2026-10-14"] = &model.Holiday{HolidayDate: "2026-10-14"}
		}, workflow.MsgHoliday},
		{"非值班日", time.Date(2026, 10, 13, 15, 0, 0, 0, bangkok), "U1", func(*fixture) {}, workflow.MsgNotDutyDay("Wednesday")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := setupFixture(t, c.now)
			seedRoom5A(f)
			c.setup(f)
			if got := f.say(c.user, "ส่งเวร"); got != c.want {
				t.Errorf("期望 %q，实际 %q", c.want, got)
			}
			if f.session(t, c.user) != nil {
				t.Error("被拒绝时不应创建会话")
			}
		})
	}
}

func TestChat_ConcurrentThirdImageCommitsOnce(t *testing.T) {
	f := setupFixture(t, wednesday(15, 0))
	seedRoom5A(f)
	f.profiles.add(studentProfile("U2", "Room5A", "Wednesday"))

	for _, u := range []string{"U1", "U2"} {
		if got := f.say(u, "ส่งเวร"); got != workflow.MsgSendImages() {
			t.Fatalf("%s 入口门应通过，实际=%q", u, got)
		}
		f.sendImage(u)
		f.sendImage(u)
	}

	var wg sync.WaitGroup
	replies := make(map[string]string)
	var mu sync.Mutex
	for _, u := range []string{"U1", "U2"} {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			r := f.sendImage(u)
			mu.Lock()
			replies[u] = r
			mu.Unlock()
		}(u)
	}
	wg.Wait()

	if f.logs.count() != 1 {
		t.Fatalf("同教室同日只能有 1 条记录，实际=%d", f.logs.count())
	}
	committed, rejected := 0, 0
	for _, r := range replies {
		switch r {
		case workflow.MsgEvidenceCommitted:
			committed++
		case workflow.MsgAlreadySubmitted("Room5A"):
			rejected++
		}
	}
	if committed != 1 || rejected != 1 {
		t.Errorf("期望一方成功一方已提交，实际=%v", replies)
	}
	for _, u := range []string{"U1", "U2"} {
		if f.session(t, u) != nil {
			t.Errorf("%s 的会话应被清除", u)
		}
	}
}

func TestChat_CommitFailureKeepsPreviousState(t *testing.T) {
	f := setupFixture(t, wednesday(15, 0))
	seedRoom5A(f)
	f.say("U1", "ส่งเวร")
	f.sendImage("U1")
	f.sendImage("U1")

	f.logs.createErr = errBoom
	if got := f.sendImage("U1"); got != workflow.MsgSystemError {
		t.Fatalf("写入失败应回复系统错误，实际=%q", got)
	}
	s := f.session(t, "U1")
	if s == nil || len(s.State.Images) != 2 {
		t.Fatalf("会话应保留前两张图片")
	}
	if len(f.messenger.pushedTo()) != 0 {
		t.Error("未提交时不应通知教师")
	}

	f.logs.createErr = nil
	if got := f.sendImage("U1"); got != workflow.MsgEvidenceCommitted {
		t.Errorf("重发第三张应提交成功，实际=%q", got)
	}
}

func TestChat_ContentFailureDoesNotAdvance(t *testing.T) {
	f := setupFixture(t, wednesday(15, 0))
	seedRoom5A(f)
	f.say("U1", "ส่งเวร")
	f.sendImage("U1")

	f.messenger.contentErr = errBoom
	if got := f.sendImage("U1"); got != workflow.MsgImageFailed {
		t.Errorf("下载失败期望重发提示，实际=%q", got)
	}
	if s := f.session(t, "U1"); s == nil || len(s.State.Images) != 1 {
		t.Error("下载失败不应改变会话")
	}
}

func TestChat_StorageFailureDoesNotAdvance(t *testing.T) {
	f := setupFixture(t, wednesday(15, 0))
	seedRoom5A(f)
	f.say("U1", "ส่งเวร")

	f.storage.err = errBoom
	if got := f.sendImage("U1"); got != workflow.MsgImageFailed {
		t.Errorf("存储失败期望重发提示，实际=%q", got)
	}
	if s := f.session(t, "U1"); s == nil || len(s.State.Images) != 0 {
		t.Error("存储失败不应改变会话")
	}
}

func TestChat_NotifyFailureIsRecorded(t *testing.T) {
	f := setupFixture(t, wednesday(15, 0))
	seedRoom5A(f)
	f.messenger.pushErr["T1"] = errBoom

	f.say("U1", "ส่งเวร")
	f.sendImage("U1")
	f.sendImage("U1")
	if got := f.sendImage("U1"); got != workflow.MsgEvidenceCommitted {
		t.Fatalf("通知失败不影响提交，实际=%q", got)
	}

	failed := f.notifications.byStatus(model.NotifyFailed)
	if len(failed) != 1 || failed[0].UserID != "T1" || failed[0].Error == nil {
		t.Errorf("失败通知应记录流水: %+v", failed)
	}
	if len(f.notifications.byStatus(model.NotifySent)) != 1 {
		t.Error("T2 的成功通知应记录")
	}
}

// ── 其他路由 ──

func TestChat_ImageWithoutSession(t *testing.T) {
	f := setupFixture(t, wednesday(15, 0))
	if got := f.sendImage("U1"); got != workflow.MsgSendImagesFirst {
		t.Errorf("无会话的图片期望引导提示，实际=%q", got)
	}
	if len(f.storage.keys) != 0 {
		t.Error("无会话时不应保存图片")
	}
}

func TestChat_TextDuringCollection(t *testing.T) {
	f := setupFixture(t, wednesday(15, 0))
	seedRoom5A(f)
	f.say("U1", "ส่งเวร")
	f.sendImage("U1")
	if got := f.say("U1", "hello"); got != workflow.MsgWaitingImages(1) {
		t.Errorf("收集态文本期望等待图片提示，实际=%q", got)
	}
}

func TestChat_CancelDropsSession(t *testing.T) {
	f := setupFixture(t, wednesday(15, 0))
	seedRoom5A(f)
	f.say("U1", "ส่งเวร")
	f.sendImage("U1")

	if got := f.say("U1", "ยกเลิก"); got != workflow.MsgCancelled {
		t.Errorf("期望已取消提示，实际=%q", got)
	}
	if f.session(t, "U1") != nil {
		t.Error("取消后会话应被清除")
	}
	if got := f.say("U1", "cancel"); got != workflow.MsgHelp {
		t.Errorf("无会话时取消期望帮助菜单，实际=%q", got)
	}
}

func TestChat_UnknownTextShowsHelp(t *testing.T) {
	f := setupFixture(t, wednesday(15, 0))
	if got := f.say("U1", "สวัสดี"); got != workflow.MsgHelp {
		t.Errorf("期望帮助菜单，实际=%q", got)
	}
}

func TestChat_EntryKeywordRestartsWizard(t *testing.T) {
	f := setupFixture(t, wednesday(10, 0))
	f.say("U1", "profile")
	f.say("U1", "Student")
	f.say("U1", "ชื่อ")
	if got := f.say("U1", "profile"); got != workflow.MsgChooseRole {
		t.Errorf("重新触发应回到角色选择，实际=%q", got)
	}
	if s := f.session(t, "U1"); s.State.Draft != (workflow.Draft{}) {
		t.Errorf("重新开始后草稿应为空: %+v", s.State.Draft)
	}
}

func TestChat_DuplicateEventIgnored(t *testing.T) {
	f := setupFixture(t, wednesday(10, 0))
	ev := f.event("U1", line.KindText)
	ev.Text = "profile"
	f.svc.Chat.Handle(context.Background(), ev)
	f.svc.Chat.Handle(context.Background(), ev)

	f.messenger.mu.Lock()
	n := len(f.messenger.replies)
	f.messenger.mu.Unlock()
	if n != 1 {
		t.Errorf("重复投递只应处理一次，实际回复 %d 次", n)
	}
}

func TestChat_GateIsIdempotent(t *testing.T) {
	f := setupFixture(t, wednesday(15, 0))
	seedRoom5A(f)
	first := f.say("U1", "ส่งเวร")
	second := f.say("U1", "ส่งเวร")
	if first != second {
		t.Errorf("未提交时两次入口门结果应一致: %q vs %q", first, second)
	}
}

func TestChat_EvidenceSessionExpiresAcrossDays(t *testing.T) {
	f := setupFixture(t, wednesday(16, 55))
	seedRoom5A(f)
	f.profiles.add(studentProfile("U9", "Room5A", "Thursday"))

	f.say("U1", "ส่งเวร")
	f.sendImage("U1")
	f.sendImage("U1")

	// 次日上午才发第三张
	thursday := time.Date(2026, 10, 15, 9, 0, 0, 0, bangkok)
	f.setNow(thursday)
	if got := f.sendImage("U1"); got != workflow.MsgEvidenceExpired {
		t.Fatalf("跨天的收集会话应失效，实际=%q", got)
	}
	if f.session(t, "U1") != nil {
		t.Error("失效会话应被销毁")
	}
	if f.logs.count() != 0 {
		t.Fatalf("跨天不应提交记录，实际 %d 条", f.logs.count())
	}

	// 周四的值班学生不受影响
	f.setNow(thursday.Add(6 * time.Hour))
	if got := f.say("U9", "ส่งเวร"); got != workflow.MsgSendImages() {
		t.Errorf("周四值班学生应可开启收集，实际=%q", got)
	}
}

func TestChat_EvidenceTextAfterRolloverExpires(t *testing.T) {
	f := setupFixture(t, wednesday(16, 55))
	seedRoom5A(f)
	f.say("U1", "ส่งเวร")

	f.setNow(time.Date(2026, 10, 15, 8, 0, 0, 0, bangkok))
	if got := f.say("U1", "สวัสดี"); got != workflow.MsgEvidenceExpired {
		t.Errorf("跨天后文本应提示重新开始，实际=%q", got)
	}
	if f.session(t, "U1") != nil {
		t.Error("失效会话应被销毁")
	}
}

func TestChat_LateCommitKeepsGateDate(t *testing.T) {
	f := setupFixture(t, wednesday(16, 59))
	seedRoom5A(f)
	f.say("U1", "ส่งเวร")
	f.sendImage("U1")
	f.sendImage("U1")

	// 同一天内稍晚提交，记录归属入口门当天
	f.setNow(wednesday(17, 30))
	if got := f.sendImage("U1"); got != workflow.MsgEvidenceCommitted {
		t.Fatalf("期望提交成功，实际=%q", got)
	}
	if ok, _ := f.logs.ExistsByRoomAndDate(context.Background(), "Room5A", "2026-10-14"); !ok {
		t.Error("记录应落在 2026-10-14")
	}
	for _, key := range f.storage.keys {
		if !strings.HasPrefix(key, "duty/2026-10-14/Room5A/") {
			t.Errorf("对象键应使用入口门日期，实际=%s", key)
		}
	}
}

func TestChat_FailedEventCanBeRedelivered(t *testing.T) {
	f := setupFixture(t, wednesday(15, 0))
	seedRoom5A(f)
	f.say("U1", "ส่งเวร")
	f.sendImage("U1")
	f.sendImage("U1")

	ev := f.event("U1", line.KindImage)
	f.logs.createErr = errBoom
	f.svc.Chat.Handle(context.Background(), ev)
	if got := f.messenger.lastReply("U1"); got != workflow.MsgSystemError {
		t.Fatalf("写入失败应回复系统错误，实际=%q", got)
	}

	// LINE 重投同一事件
	f.logs.createErr = nil
	f.svc.Chat.Handle(context.Background(), ev)
	if got := f.messenger.lastReply("U1"); got != workflow.MsgEvidenceCommitted {
		t.Errorf("处理失败的事件重投后应被处理，实际=%q", got)
	}
	if f.logs.count() != 1 {
		t.Errorf("期望 1 条记录，实际 %d", f.logs.count())
	}

	// 成功处理后再次重投仍被忽略
	f.svc.Chat.Handle(context.Background(), ev)
	if f.logs.count() != 1 {
		t.Error("已成功处理的事件不应重复处理")
	}
}
