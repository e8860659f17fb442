package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/MATADOR666-spec/line-bot-project/internal/model"
	"github.com/MATADOR666-spec/line-bot-project/internal/repository"
	pkgerrors "github.com/MATADOR666-spec/line-bot-project/pkg/errors"
)

// ── Mock ProfileRepository ──

type mockProfileRepo struct {
	mu        sync.Mutex
	profiles  map[string]*model.Profile
	upsertErr error
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, userID string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, pkgerrors.ErrProfileNotFound
}

func (m *mockProfileRepo) ListActive(_ context.Context) ([]model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Profile
	for _, p := range m.profiles {
		if p.Status == model.ProfileActive {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (m *mockProfileRepo) ListByRoomAndRole(_ context.Context, room string, role model.Role) ([]model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Profile
	for _, p := range m.profiles {
		if p.Room == room && p.Role == role && p.Status == model.ProfileActive {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (m *mockProfileRepo) Upsert(_ context.Context, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	cp := *p
	m.profiles[p.UserID] = &cp
	return nil
}

func (m *mockProfileRepo) add(p *model.Profile) {
	if p.Status == "" {
		p.Status = model.ProfileActive
	}
	m.profiles[p.UserID] = p
}

// ── Mock DutyLogRepository ──

type mockDutyLogRepo struct {
	mu        sync.Mutex
	logs      map[string]*model.DutyLog // key: room|date
	createErr error
	existsErr error
}

func newMockDutyLogRepo() *mockDutyLogRepo {
	return &mockDutyLogRepo{logs: make(map[string]*model.DutyLog)}
}

func (m *mockDutyLogRepo) Create(_ context.Context, log *model.DutyLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	key := log.Room + "|" + log.DutyDate
	if _, ok := m.logs[key]; ok {
		return pkgerrors.ErrDutyLogExists
	}
	if log.DutyLogID == "" {
		log.DutyLogID = "log-" + key
	}
	cp := *log
	m.logs[key] = &cp
	return nil
}

func (m *mockDutyLogRepo) ExistsByRoomAndDate(_ context.Context, room, date string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.logs[room+"|"+date]
	return ok, nil
}

func (m *mockDutyLogRepo) List(ctx context.Context, f repository.DutyLogFilter, offset, limit int) ([]model.DutyLog, int64, error) {
	all, _ := m.ListAll(ctx, f)
	total := int64(len(all))
	if offset >= len(all) {
		return []model.DutyLog{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockDutyLogRepo) ListAll(_ context.Context, f repository.DutyLogFilter) ([]model.DutyLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.DutyLog
	for _, l := range m.logs {
		if f.Date != "" && l.DutyDate != f.Date {
			continue
		}
		if f.From != "" && l.DutyDate < f.From {
			continue
		}
		if f.To != "" && l.DutyDate > f.To {
			continue
		}
		if f.Room != "" && l.Room != f.Room {
			continue
		}
		result = append(result, *l)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DutyDate != result[j].DutyDate {
			return result[i].DutyDate < result[j].DutyDate
		}
		return result[i].Room < result[j].Room
	})
	return result, nil
}

func (m *mockDutyLogRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

// ── Mock HolidayRepository ──

type mockHolidayRepo struct {
	mu       sync.Mutex
	holidays map[string]*model.Holiday
}

func newMockHolidayRepo() *mockHolidayRepo {
	return &mockHolidayRepo{holidays: make(map[string]*model.Holiday)}
}

func (m *mockHolidayRepo) IsHoliday(_ context.Context, date string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.holidays[date]
	return ok, nil
}

func (m *mockHolidayRepo) List(_ context.Context, from, to string) ([]model.Holiday, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Holiday
	for d, h := range m.holidays {
		if (from == "" || d >= from) && (to == "" || d <= to) {
			result = append(result, *h)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].HolidayDate < result[j].HolidayDate })
	return result, nil
}

func (m *mockHolidayRepo) Create(_ context.Context, h *model.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holidays[h.HolidayDate]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.holidays[h.HolidayDate] = h
	return nil
}

func (m *mockHolidayRepo) Delete(_ context.Context, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holidays[date]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.holidays, date)
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	mu    sync.Mutex
	items []model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, *n)
	return nil
}

func (m *mockNotificationRepo) byStatus(status string) []model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Notification
	for _, n := range m.items {
		if n.Status == status {
			result = append(result, n)
		}
	}
	return result
}

// ── Fake Messenger ──

type sentReply struct {
	token string
	texts []string
}

type sentPush struct {
	to   string
	text string
}

type fakeMessenger struct {
	mu         sync.Mutex
	replies    []sentReply
	pushes     []sentPush
	pushErr    map[string]error
	contentErr error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{pushErr: make(map[string]error)}
}

func (f *fakeMessenger) Reply(_ context.Context, token string, texts ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, sentReply{token: token, texts: texts})
	return nil
}

func (f *fakeMessenger) Push(_ context.Context, to string, texts ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.pushErr[to]; err != nil {
		return err
	}
	for _, t := range texts {
		f.pushes = append(f.pushes, sentPush{to: to, text: t})
	}
	return nil
}

func (f *fakeMessenger) GetContent(_ context.Context, messageID string) ([]byte, string, error) {
	if f.contentErr != nil {
		return nil, "", f.contentErr
	}
	return []byte("img-" + messageID), "image/jpeg", nil
}

// lastReply 用户最近一次收到的回复（token 形如 RT:<user>:<n>）
func (f *fakeMessenger) lastReply(userID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := "RT:" + userID + ":"
	for i := len(f.replies) - 1; i >= 0; i-- {
		if strings.HasPrefix(f.replies[i].token, prefix) {
			return strings.Join(f.replies[i].texts, "\n")
		}
	}
	return ""
}

func (f *fakeMessenger) pushedTo() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make(map[string]int)
	for _, p := range f.pushes {
		result[p.to]++
	}
	return result
}

// ── Fake Storage ──

type fakeStorage struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (s *fakeStorage) Save(_ context.Context, key, _ string, _ []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.keys = append(s.keys, key)
	return "https://cdn.example.com/" + key, nil
}

// ── Fake EventDeduper ──

type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (d *fakeDeduper) MarkEventOnce(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	if d.seen[eventID] {
		return false, nil
	}
	d.seen[eventID] = true
	return true, nil
}

func (d *fakeDeduper) ForgetEvent(_ context.Context, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, eventID)
	return nil
}

var errBoom = errors.New("boom")
