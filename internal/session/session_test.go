package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/MATADOR666-spec/line-bot-project/internal/model"
	"github.com/MATADOR666-spec/line-bot-project/internal/workflow"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(0)

	got, err := st.Get(ctx, "U1")
	if err != nil || got != nil {
		t.Fatalf("空存储应未命中，实际=%v err=%v", got, err)
	}

	if err := st.Put(ctx, &Session{UserID: "U1", State: workflow.State{Step: workflow.StepName, Role: model.RoleStudent}}); err != nil {
		t.Fatalf("Put 失败: %v", err)
	}
	got, _ = st.Get(ctx, "U1")
	if got == nil || got.State.Step != workflow.StepName {
		t.Fatalf("期望取回 name 步骤，实际=%+v", got)
	}

	// 修改取回的副本不影响存储
	got.State.Step = workflow.StepRoom
	again, _ := st.Get(ctx, "U1")
	if again.State.Step != workflow.StepName {
		t.Error("Get 应返回副本")
	}

	if err := st.Delete(ctx, "U1"); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if got, _ := st.Get(ctx, "U1"); got != nil {
		t.Error("删除后应未命中")
	}
}

func TestMemoryStore_IdleTimeout(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)
	st := NewMemoryStore(30 * time.Minute)
	st.now = func() time.Time { return now }

	_ = st.Put(ctx, &Session{UserID: "U1"})

	now = now.Add(29 * time.Minute)
	if got, _ := st.Get(ctx, "U1"); got == nil {
		t.Fatal("未超时的会话应存在")
	}

	now = now.Add(2 * time.Minute)
	if got, _ := st.Get(ctx, "U1"); got != nil {
		t.Error("超时会话应视为不存在")
	}
	if st.Len() != 0 {
		t.Errorf("超时会话应被清除，剩余=%d", st.Len())
	}
}

func TestMemoryStore_NoTimeoutKeepsForever(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	st := NewMemoryStore(0)
	st.now = func() time.Time { return now }
	_ = st.Put(ctx, &Session{UserID: "U1"})
	now = now.Add(365 * 24 * time.Hour)
	if got, _ := st.Get(ctx, "U1"); got == nil {
		t.Error("idle_timeout=0 时会话不应过期")
	}
}

func TestLocker_SerializesSameUser(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(0)
	locks := NewLocker()
	_ = st.Put(ctx, &Session{UserID: "U1", State: workflow.State{Images: []string{}}})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("U1")
			defer unlock()

			s, _ := st.Get(ctx, "U1")
			s.State.Images = append(append([]string{}, s.State.Images...), "img")
			_ = st.Put(ctx, s)
		}()
	}
	wg.Wait()

	s, _ := st.Get(ctx, "U1")
	if len(s.State.Images) != 50 {
		t.Errorf("串行读-改-写后期望 50 条，实际=%d", len(s.State.Images))
	}
	if len(locks.locks) != 0 {
		t.Errorf("锁表应清空，剩余=%d", len(locks.locks))
	}
}

// ── RedisStore（内存 JSONCache） ──

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}, ttl: map[string]time.Duration{}}
}

func (f *fakeCache) SetJSON(_ context.Context, key string, v interface{}, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = b
	f.ttl[key] = ttl
	return nil
}

func (f *fakeCache) GetJSON(_ context.Context, key string, v interface{}) (bool, error) {
	f.mu.Lock()
	b, ok := f.data[key]
	f.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, v)
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	st := NewRedisStore(cache, 2*time.Hour)

	snapshot := &model.Profile{UserID: "U1", Room: "Room5A", Role: model.RoleStudent}
	in := &Session{UserID: "U1", State: workflow.State{
		Step:     workflow.StepEvidenceCollecting,
		Role:     model.RoleStudent,
		Snapshot: snapshot,
		Images:   []string{"a", "b"},
	}}
	if err := st.Put(ctx, in); err != nil {
		t.Fatalf("Put 失败: %v", err)
	}
	if cache.ttl["session:U1"] != 2*time.Hour {
		t.Errorf("TTL 应等于空闲超时，实际=%v", cache.ttl["session:U1"])
	}

	out, err := st.Get(ctx, "U1")
	if err != nil || out == nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if out.State.Step != workflow.StepEvidenceCollecting || len(out.State.Images) != 2 || out.State.Snapshot.Room != "Room5A" {
		t.Errorf("会话内容不符: %+v", out.State)
	}

	_ = st.Delete(ctx, "U1")
	if out, _ := st.Get(ctx, "U1"); out != nil {
		t.Error("删除后应未命中")
	}
}
