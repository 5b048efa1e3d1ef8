package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchen-admin/internal/common/logger"
	"kitchen-admin/internal/domain"
	"kitchen-admin/internal/feed"
)

// mockStore implements Store over an in-memory map, with injectable write
// failures to exercise rollback.
type mockStore struct {
	mu        sync.Mutex
	orders    map[string]domain.Order
	updateErr error
	updates   []string
}

func newMockStore(orders ...domain.Order) *mockStore {
	m := &mockStore{orders: make(map[string]domain.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *mockStore) ListActive(ctx context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.Status != domain.StatusCompleted {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateStatus(ctx context.Context, id string, status domain.Status, changedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	m.orders[id] = o
	m.updates = append(m.updates, fmt.Sprintf("%s:%s", id, status))
	return nil
}

func money(s string) decimal.NullDecimal {
	d, _ := decimal.NewFromString(s)
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func order(id string, status domain.Status, total string, age time.Duration) domain.Order {
	return domain.Order{
		ID:           id,
		CustomerName: "customer " + id,
		Status:       status,
		Total:        money(total),
		CreatedAt:    time.Now().UTC().Add(-age),
	}
}

func setupManager(t *testing.T, orders ...domain.Order) (*Manager, *mockStore) {
	t.Helper()
	store := newMockStore(orders...)
	mgr := NewManager(store, "test-session", logger.New("test"))
	require.NoError(t, mgr.Refresh(context.Background()))
	return mgr, store
}

func TestTransitionScenario(t *testing.T) {
	mgr, _ := setupManager(t,
		order("1", domain.StatusNew, "10", 5*time.Minute),
		order("2", domain.StatusPreparing, "20", 15*time.Minute),
	)

	got, err := mgr.Transition(context.Background(), "1", domain.StatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, got.Status)

	active := mgr.ListActive()
	require.Len(t, active, 2)
	byID := map[string]domain.Order{}
	for _, o := range active {
		byID[o.ID] = o
	}
	assert.Equal(t, domain.StatusPreparing, byID["1"].Status)
	assert.Equal(t, domain.StatusPreparing, byID["2"].Status)

	// Completing order 1 straight from Preparing removes it from the
	// active set entirely.
	_, err = mgr.Transition(context.Background(), "1", domain.StatusCompleted)
	require.NoError(t, err)

	active = mgr.ListActive()
	require.Len(t, active, 1)
	assert.Equal(t, "2", active[0].ID)
	assert.Equal(t, 1, mgr.ActiveCount())
}

func TestCompletionAllowedFromAnyForwardState(t *testing.T) {
	for _, from := range []domain.Status{domain.StatusNew, domain.StatusPreparing, domain.StatusReady} {
		mgr, store := setupManager(t, order("1", from, "10", time.Minute))

		got, err := mgr.Transition(context.Background(), "1", domain.StatusCompleted)
		require.NoErrorf(t, err, "completing from %s", from)
		assert.Equal(t, domain.StatusCompleted, got.Status)
		assert.Empty(t, mgr.ListActive())

		store.mu.Lock()
		assert.Equal(t, domain.StatusCompleted, store.orders["1"].Status)
		store.mu.Unlock()
	}
}

func TestTransitionRejectsBackwardMove(t *testing.T) {
	mgr, store := setupManager(t, order("2", domain.StatusPreparing, "20", time.Minute))

	_, err := mgr.Transition(context.Background(), "2", domain.StatusNew)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Local state unchanged, nothing written to the store.
	active := mgr.ListActive()
	require.Len(t, active, 1)
	assert.Equal(t, domain.StatusPreparing, active[0].Status)
	assert.Empty(t, store.updates)
}

func TestTransitionRejectsEveryDisallowedPair(t *testing.T) {
	for _, from := range domain.Statuses {
		for _, to := range domain.Statuses {
			if from.CanTransitionTo(to) {
				continue
			}
			mgr, _ := setupManager(t, order("x", from, "5", time.Minute))
			if from == domain.StatusCompleted {
				// Completed orders never enter the active set, so the
				// manager reports them gone rather than mis-transitioned.
				_, err := mgr.Transition(context.Background(), "x", to)
				require.ErrorIs(t, err, domain.ErrNotFound)
				continue
			}
			_, err := mgr.Transition(context.Background(), "x", to)
			require.ErrorIsf(t, err, domain.ErrInvalidTransition, "%s -> %s", from, to)
		}
	}
}

func TestTransitionUnknownTargetRejectedLocally(t *testing.T) {
	mgr, store := setupManager(t, order("1", domain.StatusNew, "10", time.Minute))
	_, err := mgr.Transition(context.Background(), "1", domain.Status("Burnt"))
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Empty(t, store.updates)
}

func TestTransitionNotFound(t *testing.T) {
	mgr, _ := setupManager(t)
	_, err := mgr.Transition(context.Background(), "ghost", domain.StatusPreparing)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransitionRollsBackOnStoreFailure(t *testing.T) {
	mgr, store := setupManager(t, order("1", domain.StatusNew, "10", time.Minute))
	store.updateErr = fmt.Errorf("%w: connection reset", domain.ErrStoreUnavailable)

	_, err := mgr.Transition(context.Background(), "1", domain.StatusPreparing)
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)

	active := mgr.ListActive()
	require.Len(t, active, 1)
	assert.Equal(t, domain.StatusNew, active[0].Status, "local view must roll back to last known-good state")
}

func TestCompletionRollbackRestoresOrder(t *testing.T) {
	mgr, store := setupManager(t, order("1", domain.StatusReady, "10", time.Minute))
	store.updateErr = fmt.Errorf("%w: write refused", domain.ErrStoreUnavailable)

	_, err := mgr.Transition(context.Background(), "1", domain.StatusCompleted)
	require.Error(t, err)

	active := mgr.ListActive()
	require.Len(t, active, 1)
	assert.Equal(t, domain.StatusReady, active[0].Status)
}

func TestTransitionNotFoundWhenRemovedRemotely(t *testing.T) {
	o := order("3", domain.StatusReady, "12", time.Minute)
	mgr, store := setupManager(t, o)

	// Another session completes the order; the store no longer accepts
	// writes for it as far as this manager can tell.
	store.mu.Lock()
	delete(store.orders, "3")
	store.mu.Unlock()

	_, err := mgr.Transition(context.Background(), "3", domain.StatusCompleted)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListActiveNewestFirstAndFiltered(t *testing.T) {
	mgr, _ := setupManager(t,
		order("old", domain.StatusNew, "1", time.Hour),
		order("mid", domain.StatusPreparing, "2", 30*time.Minute),
		order("new", domain.StatusNew, "3", time.Minute),
	)

	active := mgr.ListActive()
	require.Len(t, active, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{active[0].ID, active[1].ID, active[2].ID})

	onlyNew := mgr.ListActive(domain.StatusNew)
	require.Len(t, onlyNew, 2)
	for _, o := range onlyNew {
		assert.Equal(t, domain.StatusNew, o.Status)
	}
}

func TestOnChangeNotifiesAndUnsubscribes(t *testing.T) {
	mgr, _ := setupManager(t, order("1", domain.StatusNew, "10", time.Minute))

	var mu sync.Mutex
	calls := 0
	unsub := mgr.OnChange(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	_, err := mgr.Transition(context.Background(), "1", domain.StatusPreparing)
	require.NoError(t, err)
	require.NoError(t, mgr.Refresh(context.Background()))

	mu.Lock()
	afterTwo := calls
	mu.Unlock()
	assert.GreaterOrEqual(t, afterTwo, 2, "at-least-once delivery for local change and refresh")

	unsub()
	unsub() // idempotent
	_, err = mgr.Transition(context.Background(), "1", domain.StatusReady)
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, afterTwo, calls, "no notifications after unsubscribe")
	mu.Unlock()
}

func TestConcurrentTransitionsResolveToOneFinalStatus(t *testing.T) {
	mgr, store := setupManager(t, order("3", domain.StatusNew, "30", time.Minute))

	var wg sync.WaitGroup
	results := make([]error, 2)
	targets := []domain.Status{domain.StatusCancelled, domain.StatusPreparing}
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target domain.Status) {
			defer wg.Done()
			_, err := mgr.Transition(context.Background(), "3", target)
			results[i] = err
		}(i, target)
	}
	wg.Wait()

	// Both calls complete without panic; races may reject one locally once
	// the other's optimistic update lands, but never corrupt state.
	for _, err := range results {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		}
	}

	require.NoError(t, mgr.Refresh(context.Background()))
	active := mgr.ListActive()
	require.Len(t, active, 1)
	final := active[0].Status

	store.mu.Lock()
	stored := store.orders["3"].Status
	store.mu.Unlock()
	assert.Equal(t, stored, final, "local view matches whichever write landed last")
	assert.Contains(t, []domain.Status{domain.StatusCancelled, domain.StatusPreparing}, final)
}

func TestRefreshDropsRemotelyCompletedOrders(t *testing.T) {
	mgr, store := setupManager(t,
		order("1", domain.StatusNew, "10", time.Minute),
		order("2", domain.StatusPreparing, "20", time.Minute),
	)

	store.mu.Lock()
	o := store.orders["1"]
	o.Status = domain.StatusCompleted
	store.orders["1"] = o
	store.mu.Unlock()

	require.NoError(t, mgr.Refresh(context.Background()))
	active := mgr.ListActive()
	require.Len(t, active, 1)
	assert.Equal(t, "2", active[0].ID)
}

func TestWatchReleasesSubscriptionOnCancel(t *testing.T) {
	mgr, _ := setupManager(t)
	src := &stubSource{events: make(chan feed.Event, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Watch(ctx, src) }()

	src.events <- feed.Event{Table: "orders", At: time.Now()}
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancellation")
	}
	assert.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.released
	}, time.Second, 10*time.Millisecond, "subscription must be released on teardown")
}

type stubSource struct {
	mu       sync.Mutex
	events   chan feed.Event
	released bool
}

func (s *stubSource) Subscribe(ctx context.Context, table string) (<-chan feed.Event, func(), error) {
	return s.events, func() {
		s.mu.Lock()
		s.released = true
		s.mu.Unlock()
	}, nil
}
