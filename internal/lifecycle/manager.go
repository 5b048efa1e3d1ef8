// Package lifecycle owns the staff-facing view of live orders: it applies
// status transitions, keeps a write-through cache of the active set, and
// tells subscribers when that set changes, whether the change came from
// this session or another one.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"kitchen-admin/internal/domain"
	"kitchen-admin/internal/feed"
)

// Store is the slice of the order repository the manager needs.
type Store interface {
	ListActive(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status, changedBy string) error
}

// Manager holds the authoritative local view of currently relevant orders.
// The view is a read-through, write-through cache over the store; it is
// never persisted independently.
type Manager struct {
	store   Store
	session string
	log     *slog.Logger

	mu     sync.RWMutex
	active map[string]domain.Order

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

func NewManager(store Store, session string, log *slog.Logger) *Manager {
	return &Manager{
		store:   store,
		session: session,
		log:     log,
		active:  make(map[string]domain.Order),
		subs:    make(map[int]func()),
	}
}

// Refresh replaces the local view with the latest server state. The change
// feed carries no diff, so every feed event funnels here.
func (m *Manager) Refresh(ctx context.Context) error {
	orders, err := m.store.ListActive(ctx)
	if err != nil {
		return err
	}
	next := make(map[string]domain.Order, len(orders))
	for _, o := range orders {
		next[o.ID] = o
	}
	m.mu.Lock()
	m.active = next
	m.mu.Unlock()

	m.notify()
	return nil
}

// ListActive returns the cached active set newest-first, optionally
// filtered by status. Completed orders are never in the active set;
// cancelled ones stay visible so staff can stop work on them.
func (m *Manager) ListActive(filter ...domain.Status) []domain.Order {
	m.mu.RLock()
	out := make([]domain.Order, 0, len(m.active))
	for _, o := range m.active {
		if len(filter) > 0 && !statusIn(o.Status, filter) {
			continue
		}
		out = append(out, o)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// ActiveCount drives the layout badge. It is always derived from the
// cached set, never tracked separately.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active)
}

// Transition moves an order to target. Validation happens locally before
// any store call; on success the local view is updated optimistically and
// the write persisted. If the store rejects the write, the local view rolls
// back to the last known-good state and the error surfaces to the caller.
// A transition to Completed removes the order from the active set.
func (m *Manager) Transition(ctx context.Context, orderID string, target domain.Status) (domain.Order, error) {
	if !target.Valid() {
		return domain.Order{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, string(target))
	}

	m.mu.Lock()
	prev, ok := m.active[orderID]
	if !ok {
		m.mu.Unlock()
		return domain.Order{}, domain.ErrNotFound
	}
	if !prev.Status.CanTransitionTo(target) {
		m.mu.Unlock()
		return domain.Order{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, prev.Status, target)
	}

	updated := prev
	updated.Status = target
	if target == domain.StatusCompleted {
		delete(m.active, orderID)
	} else {
		m.active[orderID] = updated
	}
	m.mu.Unlock()

	if err := m.store.UpdateStatus(ctx, orderID, target, m.session); err != nil {
		m.rollback(orderID, prev, target)
		if errors.Is(err, domain.ErrNotFound) {
			// Another session removed the order between our read and write.
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, err
	}

	m.log.Info("order transitioned",
		"order_id", orderID, "from", string(prev.Status), "to", string(target))
	m.notify()
	return updated, nil
}

// rollback restores the last known-good state after a rejected write. For a
// failed completion the order re-enters the active set; a concurrent remote
// completion will be observed by the next Refresh.
func (m *Manager) rollback(orderID string, prev domain.Order, target domain.Status) {
	m.mu.Lock()
	if target == domain.StatusCompleted {
		m.active[orderID] = prev
	} else if cur, ok := m.active[orderID]; ok && cur.Status == target {
		m.active[orderID] = prev
	}
	m.mu.Unlock()
	m.log.Warn("transition rolled back",
		"order_id", orderID, "attempted", string(target), "restored", string(prev.Status))
}

// OnChange registers a callback invoked whenever the active set changes.
// Delivery is at-least-once; callbacks must be idempotent with respect to
// redundant notifications. The returned unsubscribe is safe to call more
// than once.
func (m *Manager) OnChange(fn func()) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

func (m *Manager) notify() {
	m.subMu.Lock()
	fns := make([]func(), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Watch ties the manager to a change-feed subscription for the orders
// table: every event triggers a Refresh. It blocks until ctx is cancelled
// and releases the subscription on the way out.
func (m *Manager) Watch(ctx context.Context, src feed.Source) error {
	events, release, err := src.Subscribe(ctx, "orders")
	if err != nil {
		return err
	}
	defer release()

	if err := m.Refresh(ctx); err != nil {
		m.log.Error("initial refresh failed", "err", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-events:
			if !ok {
				return nil
			}
			if err := m.Refresh(ctx); err != nil {
				// Transient store failures leave the previous view in
				// place; the next event retries.
				m.log.Error("refresh failed", "err", err)
			}
		}
	}
}

func statusIn(s domain.Status, set []domain.Status) bool {
	for _, c := range set {
		if s == c {
			return true
		}
	}
	return false
}
