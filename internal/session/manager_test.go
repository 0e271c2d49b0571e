package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/queue"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/repository"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubBackend struct {
	profileErr error
	ordersErr  error
}

func (stubBackend) ValidateCoupon(context.Context, string, models.Money) (*models.CouponValidateResponse, error) {
	return &models.CouponValidateResponse{Valid: true, Discount: models.NewMoneyFromInt(100)}, nil
}

func (stubBackend) Login(_ context.Context, email, _ string) (*models.AuthSession, error) {
	return &models.AuthSession{User: &models.User{ID: "u1", Email: email}, Token: "tok"}, nil
}

func (b stubBackend) GetProfile(context.Context, string) (*models.Profile, error) {
	if b.profileErr != nil {
		return nil, b.profileErr
	}
	return &models.Profile{ID: "u1", Name: "Asha"}, nil
}

func (stubBackend) UploadPrescription(context.Context, string, string, io.Reader) (string, error) {
	return "/uploads/rx.png", nil
}

func (stubBackend) SaveAddress(context.Context, string, models.Address) error { return nil }

func (stubBackend) CreateOrder(context.Context, string, models.OrderSubmission) (*models.OrderCreated, error) {
	return &models.OrderCreated{ID: "o1"}, nil
}

func (b stubBackend) ListMyOrders(context.Context, string) ([]models.OrderRecord, error) {
	if b.ordersErr != nil {
		return nil, b.ordersErr
	}
	return []models.OrderRecord{{ID: "o1", Status: "Processing"}}, nil
}

type recordingScheduler struct {
	mu       sync.Mutex
	payloads []queue.SessionPurgePayload
	delays   []time.Duration
}

func (s *recordingScheduler) EnqueueSessionPurge(payload queue.SessionPurgePayload, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	s.delays = append(s.delays, delay)
	return nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestManager(t *testing.T, opts Options) (*Manager, *repository.MemoryStorageRepository, *clock) {
	t.Helper()
	repo := repository.NewMemoryStorageRepository()
	m := NewManager(repo, stubBackend{}, opts)
	clk := &clock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	m.now = clk.Now
	return m, repo, clk
}

func TestGetRejectsInvalidID(t *testing.T) {
	m, _, _ := newTestManager(t, Options{})
	_, err := m.Get(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, ErrInvalidSessionID)
	assert.True(t, ValidID(NewID()))
}

func TestGetReturnsSameSession(t *testing.T) {
	m, _, _ := newTestManager(t, Options{})
	id := gofakeit.UUID()

	first, err := m.Get(context.Background(), id)
	require.NoError(t, err)
	second, err := m.Get(context.Background(), " "+id+" ")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, m.Len())
}

func TestGetHydratesCartAndAuthAfterEviction(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t, Options{})
	id := gofakeit.UUID()

	sess, err := m.Get(ctx, id)
	require.NoError(t, err)
	require.NoError(t, sess.Cart.AddLine(ctx, models.CartLine{ProductID: "A", UnitPrice: models.NewMoneyFromInt(2000)}))
	require.NoError(t, sess.Cart.AddLine(ctx, models.CartLine{ProductID: "A", UnitPrice: models.NewMoneyFromInt(2000)}))
	_, err = sess.Auth.Login(ctx, "asha@example.com", "pw")
	require.NoError(t, err)
	_, err = sess.Coupon.Apply(ctx, "SAVE100", sess.Cart.Subtotal())
	require.NoError(t, err)

	m.Evict(id)
	restored, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.NotSame(t, sess, restored)
	assert.Equal(t, 2, restored.Cart.Count())
	assert.True(t, restored.Auth.Authenticated())
	assert.Nil(t, restored.Coupon.Applied(), "coupon state is not persisted")
}

func TestHydrateDropsExpiredToken(t *testing.T) {
	ctx := context.Background()
	m, repo, _ := newTestManager(t, Options{})
	id := gofakeit.UUID()

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
	token, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	raw, err := json.Marshal(models.AuthSession{User: &models.User{ID: "u1"}, Token: token})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, repository.SessionKey(id, constants.StorageKeyAuth), raw))

	sess, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, sess.Auth.Authenticated())
	_, ok, err := repo.Load(ctx, repository.SessionKey(id, constants.StorageKeyAuth))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTouchSchedulesPurgeOncePerHalfTTL(t *testing.T) {
	ctx := context.Background()
	scheduler := &recordingScheduler{}
	m, _, clk := newTestManager(t, Options{IdleTTL: time.Hour, Scheduler: scheduler})
	id := gofakeit.UUID()

	for i := 0; i < 3; i++ {
		_, err := m.Get(ctx, id)
		require.NoError(t, err)
		clk.Advance(10 * time.Minute)
	}
	require.Len(t, scheduler.payloads, 1)

	clk.Advance(10 * time.Minute)
	_, err := m.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, scheduler.payloads, 2)
	assert.Equal(t, id, scheduler.payloads[1].SessionID)
	assert.Equal(t, time.Hour, scheduler.delays[1])
}

func TestPurgeSkipsActiveSession(t *testing.T) {
	ctx := context.Background()
	m, repo, clk := newTestManager(t, Options{IdleTTL: time.Hour})
	id := gofakeit.UUID()

	sess, err := m.Get(ctx, id)
	require.NoError(t, err)
	require.NoError(t, sess.Cart.AddLine(ctx, models.CartLine{ProductID: "A", UnitPrice: models.NewMoneyFromInt(10)}))

	clk.Advance(30 * time.Minute)
	purged, err := m.Purge(ctx, id)
	require.NoError(t, err)
	assert.False(t, purged)
	_, ok, _ := repo.Load(ctx, repository.SessionKey(id, constants.StorageKeyCart))
	assert.True(t, ok)
}

func TestPurgeRemovesIdleSession(t *testing.T) {
	ctx := context.Background()
	m, repo, clk := newTestManager(t, Options{IdleTTL: time.Hour})
	id := gofakeit.UUID()

	sess, err := m.Get(ctx, id)
	require.NoError(t, err)
	require.NoError(t, sess.Cart.AddLine(ctx, models.CartLine{ProductID: "A", UnitPrice: models.NewMoneyFromInt(10)}))
	_, err = sess.Auth.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)
	purged, err := m.Purge(ctx, id)
	require.NoError(t, err)
	assert.True(t, purged)
	assert.Equal(t, 0, repo.Len())
	assert.Equal(t, 0, m.Len())

	_, err = m.Purge(ctx, "bad")
	require.ErrorIs(t, err, ErrInvalidSessionID)
}

func TestSweepEvictsIdleSessionsOnly(t *testing.T) {
	ctx := context.Background()
	m, repo, clk := newTestManager(t, Options{IdleTTL: time.Hour})
	idle := gofakeit.UUID()
	active := gofakeit.UUID()

	_, err := m.Get(ctx, idle)
	require.NoError(t, err)
	clk.Advance(50 * time.Minute)
	_, err = m.Get(ctx, active)
	require.NoError(t, err)
	clk.Advance(20 * time.Minute)

	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())
	_, ok, _ := repo.Load(ctx, repository.SessionKey(idle, storageKeyMeta))
	assert.True(t, ok, "sweep must not touch storage")
}

func TestRunJanitorStopsWithContext(t *testing.T) {
	m, _, _ := newTestManager(t, Options{IdleTTL: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunJanitor(ctx, 5*time.Millisecond)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("janitor did not stop after cancel")
	}
}

func TestClearCartDropsCoupon(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t, Options{})
	sess, err := m.Get(ctx, gofakeit.UUID())
	require.NoError(t, err)
	require.NoError(t, sess.Cart.AddLine(ctx, models.CartLine{ProductID: "A", UnitPrice: models.NewMoneyFromInt(500)}))
	_, err = sess.Coupon.Apply(ctx, "SAVE100", sess.Cart.Subtotal())
	require.NoError(t, err)

	require.NoError(t, sess.ClearCart(ctx))
	assert.True(t, sess.Cart.Empty())
	assert.Nil(t, sess.Coupon.Applied())
}

func TestLoadAccount(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t, Options{})
	sess, err := m.Get(ctx, gofakeit.UUID())
	require.NoError(t, err)

	_, err = sess.LoadAccount(ctx, stubBackend{})
	require.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = sess.Auth.Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)

	account, err := sess.LoadAccount(ctx, stubBackend{profileErr: errors.New("down")})
	require.NoError(t, err)
	assert.Nil(t, account.Profile)
	require.Len(t, account.Orders, 1)

	_, err = sess.LoadAccount(ctx, stubBackend{profileErr: errors.New("down"), ordersErr: errors.New("down")})
	require.Error(t, err)

	account, err = sess.LoadAccount(ctx, stubBackend{})
	require.NoError(t, err)
	assert.Equal(t, "Asha", account.Profile.Name)
	assert.Equal(t, "a@b.c", account.User.Email)
}
