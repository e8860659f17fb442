package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MATADOR666-spec/line-bot-project/internal/metrics"
	"github.com/MATADOR666-spec/line-bot-project/internal/model"
	"github.com/MATADOR666-spec/line-bot-project/internal/repository"
	"github.com/MATADOR666-spec/line-bot-project/internal/session"
	"github.com/MATADOR666-spec/line-bot-project/internal/workflow"
	pkgerrors "github.com/MATADOR666-spec/line-bot-project/pkg/errors"
	"github.com/MATADOR666-spec/line-bot-project/pkg/line"
	"github.com/MATADOR666-spec/line-bot-project/pkg/storage"
)

// eventDedupeTTL 覆盖 LINE 的重投窗口
const eventDedupeTTL = 10 * time.Minute

// ChatService 聊天事件处理
type ChatService interface {
	// Handle 处理单个事件；错误在内部转为用户提示，不向上抛出
	Handle(ctx context.Context, ev line.Event)
}

// ChatConfig 聊天工作流参数
type ChatConfig struct {
	Policy        workflow.Policy
	CheckPassword workflow.PasswordChecker
	Now           func() time.Time // 已转换到值班时区
}

type chatService struct {
	cfg       ChatConfig
	repo      *repository.Repository
	sessions  session.Store
	locks     *session.Locker
	messenger Messenger
	storage   storage.Storage
	images    ImageProcessor
	deduper   EventDeduper
	notify    NotifyService
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewChatService 创建 ChatService 实例
func NewChatService(cfg ChatConfig, deps Deps, notify NotifyService, logger *zap.Logger) ChatService {
	return &chatService{
		cfg:       cfg,
		repo:      deps.Repo,
		sessions:  deps.Sessions,
		locks:     session.NewLocker(),
		messenger: deps.Messenger,
		storage:   deps.Storage,
		images:    deps.Images,
		deduper:   deps.Deduper,
		notify:    notify,
		metrics:   deps.Metrics,
		logger:    logger,
	}
}

func (s *chatService) Handle(ctx context.Context, ev line.Event) {
	if ev.UserID == "" || ev.Kind == line.KindOther {
		return
	}
	s.metrics.Event(string(ev.Kind))

	if s.seenBefore(ctx, ev) {
		s.logger.Info("忽略重复投递的事件", zap.String("event_id", ev.ID), zap.String("user_id", ev.UserID))
		return
	}

	// 同一用户的读-改-写串行执行
	unlock := s.locks.Lock(ev.UserID)
	defer unlock()

	var replies []string
	switch ev.Kind {
	case line.KindText:
		replies = s.handleText(ctx, ev.UserID, strings.TrimSpace(ev.Text))
	case line.KindImage:
		replies = s.handleImage(ctx, ev.UserID, ev.MessageID)
	}
	if retryable(replies) {
		// 处理失败，允许 LINE 重投同一事件
		s.forgetEvent(ctx, ev)
	}
	s.reply(ctx, ev, replies...)
}

func (s *chatService) seenBefore(ctx context.Context, ev line.Event) bool {
	if s.deduper == nil || ev.ID == "" {
		return false
	}
	first, err := s.deduper.MarkEventOnce(ctx, ev.ID, eventDedupeTTL)
	if err != nil {
		// 去重不可用时继续处理
		s.logger.Warn("事件去重失败", zap.String("event_id", ev.ID), zap.Error(err))
		return false
	}
	return !first
}

func (s *chatService) forgetEvent(ctx context.Context, ev line.Event) {
	if s.deduper == nil || ev.ID == "" {
		return
	}
	// 请求 context 可能已取消
	if err := s.deduper.ForgetEvent(context.WithoutCancel(ctx), ev.ID); err != nil {
		s.logger.Warn("释放事件去重标记失败", zap.String("event_id", ev.ID), zap.Error(err))
	}
}

// retryable 回复中含系统错误或图片保存失败
func retryable(replies []string) bool {
	for _, r := range replies {
		if r == workflow.MsgSystemError || r == workflow.MsgImageFailed {
			return true
		}
	}
	return false
}

func (s *chatService) reply(ctx context.Context, ev line.Event, texts ...string) {
	if ev.ReplyToken == "" || len(texts) == 0 {
		return
	}
	if err := s.messenger.Reply(ctx, ev.ReplyToken, texts...); err != nil {
		s.logger.Warn("回复消息失败", zap.String("user_id", ev.UserID), zap.Error(err))
	}
}

// ────────────────────── 文本 ──────────────────────

func (s *chatService) handleText(ctx context.Context, userID, text string) []string {
	// 入口关键字优先于会话路由：重新触发即重新开始
	switch {
	case workflow.IsProfileKeyword(text):
		return s.startRegistration(ctx, userID)
	case workflow.IsEvidenceKeyword(text):
		return s.startEvidence(ctx, userID)
	}

	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		s.logger.Error("读取会话失败", zap.String("user_id", userID), zap.Error(err))
		return []string{workflow.MsgSystemError}
	}

	if workflow.IsCancelKeyword(text) {
		if sess == nil {
			return []string{workflow.MsgHelp}
		}
		s.dropSession(ctx, userID)
		return []string{workflow.MsgCancelled}
	}

	if sess == nil {
		return []string{workflow.MsgHelp}
	}

	switch sess.State.Step.Flow() {
	case workflow.FlowRegistration:
		return s.continueRegistration(ctx, sess, text)
	case workflow.FlowEvidence:
		if workflow.EvidenceExpired(sess.State, s.cfg.Now()) {
			s.dropSession(ctx, userID)
			return []string{workflow.MsgEvidenceExpired}
		}
		return []string{workflow.MsgWaitingImages(len(sess.State.Images))}
	}

	// 残留的空闲会话
	s.dropSession(ctx, userID)
	return []string{workflow.MsgHelp}
}

// ────────────────────── 注册向导 ──────────────────────

func (s *chatService) startRegistration(ctx context.Context, userID string) []string {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return []string{workflow.MsgSystemError}
	}

	res := workflow.StartRegistration(profile)
	if err := s.sessions.Put(ctx, &session.Session{UserID: userID, State: res.Next}); err != nil {
		s.logger.Error("写入会话失败", zap.String("user_id", userID), zap.Error(err))
		return []string{workflow.MsgSystemError}
	}
	return []string{res.Reply}
}

func (s *chatService) continueRegistration(ctx context.Context, sess *session.Session, text string) []string {
	res := workflow.Register(sess.State, text, s.cfg.CheckPassword)

	switch {
	case res.Completed:
		profile := workflow.BuildProfile(res.Next, sess.UserID, workflow.DateKey(s.cfg.Now()))
		if err := s.repo.Profile.Upsert(ctx, profile); err != nil {
			// 会话停留在最后一个字段，用户重发即可重试
			s.logger.Error("保存用户资料失败", zap.String("user_id", sess.UserID), zap.Error(err))
			return []string{workflow.MsgSystemError}
		}
		s.dropSession(ctx, sess.UserID)
		s.logger.Info("用户资料已保存",
			zap.String("user_id", profile.UserID),
			zap.String("role", string(profile.Role)),
			zap.String("room", profile.Room),
			zap.Bool("editing", res.Next.Editing),
		)
		return []string{workflow.MsgRegistered(profile)}

	case res.End:
		s.dropSession(ctx, sess.UserID)
		return []string{res.Reply}
	}

	sess.State = res.Next
	if err := s.sessions.Put(ctx, sess); err != nil {
		s.logger.Error("写入会话失败", zap.String("user_id", sess.UserID), zap.Error(err))
		return []string{workflow.MsgSystemError}
	}
	return []string{res.Reply}
}

// ────────────────────── 证据工作流 ──────────────────────

func (s *chatService) startEvidence(ctx context.Context, userID string) []string {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return []string{workflow.MsgSystemError}
	}

	now := s.cfg.Now()
	verdict, err := s.cfg.Policy.Evaluate(ctx, profile, now, gateLookup{repo: s.repo})
	if err != nil {
		s.logger.Error("评估证据入口门失败", zap.String("user_id", userID), zap.Error(err))
		return []string{workflow.MsgSystemError}
	}
	s.metrics.Verdict(verdict.String())
	if verdict != workflow.VerdictOpen {
		return []string{s.cfg.Policy.RejectMessage(verdict, profile)}
	}

	res := workflow.StartEvidence(profile, now)
	if err := s.sessions.Put(ctx, &session.Session{UserID: userID, State: res.Next}); err != nil {
		s.logger.Error("写入会话失败", zap.String("user_id", userID), zap.Error(err))
		return []string{workflow.MsgSystemError}
	}
	return []string{res.Reply}
}

func (s *chatService) handleImage(ctx context.Context, userID, messageID string) []string {
	sess, err := s.sessions.Get(ctx, userID)
	if err != nil {
		s.logger.Error("读取会话失败", zap.String("user_id", userID), zap.Error(err))
		return []string{workflow.MsgSystemError}
	}
	if sess == nil || sess.State.Step.Flow() != workflow.FlowEvidence || sess.State.Snapshot == nil {
		return []string{workflow.MsgSendImagesFirst}
	}
	if workflow.EvidenceExpired(sess.State, s.cfg.Now()) {
		s.dropSession(ctx, userID)
		s.logger.Info("证据收集会话已跨天失效",
			zap.String("user_id", userID),
			zap.String("duty_date", sess.State.DutyDate),
		)
		return []string{workflow.MsgEvidenceExpired}
	}

	ref, err := s.storeImage(ctx, sess.State, messageID)
	if err != nil {
		s.logger.Error("保存证据图片失败",
			zap.String("user_id", userID),
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		return []string{workflow.MsgImageFailed}
	}

	res := workflow.AddEvidence(sess.State, ref)
	if !res.Completed {
		sess.State = res.Next
		if err := s.sessions.Put(ctx, sess); err != nil {
			s.logger.Error("写入会话失败", zap.String("user_id", userID), zap.Error(err))
			return []string{workflow.MsgSystemError}
		}
		return []string{res.Reply}
	}
	return s.commitEvidence(ctx, sess, res.Next)
}

func (s *chatService) commitEvidence(ctx context.Context, sess *session.Session, st workflow.State) []string {
	log := workflow.BuildDutyLog(st, s.cfg.Now())

	err := s.repo.DutyLog.Create(ctx, log)
	if errors.Is(err, pkgerrors.ErrDutyLogExists) {
		// 并发提交的另一方已写入
		s.dropSession(ctx, sess.UserID)
		s.logger.Info("教室当日已有值班记录", zap.String("room", log.Room), zap.String("date", log.DutyDate))
		return []string{workflow.MsgAlreadySubmitted(log.Room)}
	}
	if err != nil {
		// 不推进会话：保留前两张，第三张需重发
		s.logger.Error("写入值班记录失败", zap.String("user_id", sess.UserID), zap.Error(err))
		return []string{workflow.MsgSystemError}
	}

	s.dropSession(ctx, sess.UserID)
	s.metrics.DutyLogCommitted()
	s.logger.Info("值班记录已提交",
		zap.String("duty_log_id", log.DutyLogID),
		zap.String("room", log.Room),
		zap.String("date", log.DutyDate),
		zap.String("user_id", log.UserID),
	)

	notice := workflow.MsgTeacherNotice(log, st.Snapshot.DisplayName)
	if _, _, err := s.notify.NotifyRoomTeachers(ctx, log.Room, model.NotifyDutySubmitted, notice); err != nil {
		s.logger.Warn("通知教师失败", zap.String("room", log.Room), zap.Error(err))
	}
	return []string{workflow.MsgEvidenceCommitted}
}

// storeImage 下载、压缩并持久化图片，返回可访问的 URL
func (s *chatService) storeImage(ctx context.Context, st workflow.State, messageID string) (string, error) {
	data, contentType, err := s.messenger.GetContent(ctx, messageID)
	if err != nil {
		return "", err
	}

	if s.images != nil {
		processed, ct, perr := s.images.Process(data)
		if perr != nil {
			s.logger.Warn("图片处理失败，按原图保存", zap.String("message_id", messageID), zap.Error(perr))
		} else {
			data, contentType = processed, ct
		}
	}

	date := st.DutyDate
	if date == "" {
		date = workflow.DateKey(s.cfg.Now())
	}
	key := fmt.Sprintf("duty/%s/%s/%s%s",
		date,
		safeSegment(st.Snapshot.Room),
		uuid.NewString(),
		extensionFor(contentType),
	)
	return s.storage.Save(ctx, key, contentType, data)
}

// ────────────────────── 辅助 ──────────────────────

func (s *chatService) loadProfile(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.repo.Profile.GetByUserID(ctx, userID)
	if errors.Is(err, pkgerrors.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("查询用户资料失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (s *chatService) dropSession(ctx context.Context, userID string) {
	if err := s.sessions.Delete(ctx, userID); err != nil {
		s.logger.Warn("删除会话失败", zap.String("user_id", userID), zap.Error(err))
	}
}

// gateLookup 入口门的持久层查询
type gateLookup struct {
	repo *repository.Repository
}

func (l gateLookup) IsHoliday(ctx context.Context, date string) (bool, error) {
	return l.repo.Holiday.IsHoliday(ctx, date)
}

func (l gateLookup) HasDutyLog(ctx context.Context, room, date string) (bool, error) {
	return l.repo.DutyLog.ExistsByRoomAndDate(ctx, room, date)
}

// safeSegment 教室名可能含 "/"（如 ม.5/1）
func safeSegment(s string) string {
	s = strings.NewReplacer("/", "-", "\\", "-", " ", "_").Replace(strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." {
		return "unknown"
	}
	return s
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ""
}
