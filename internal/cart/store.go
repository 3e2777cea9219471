// Package cart holds the client-side cart state and keeps it converged with
// the remote cart service through the gateway.
package cart

import (
	"context"
	"sync"

	"github.com/angelmondragon/cartsync/internal/gateway"
	"github.com/angelmondragon/cartsync/internal/reconcile"
	"github.com/angelmondragon/cartsync/internal/session"
	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
	"github.com/angelmondragon/cartsync/pkg/logger"
)

// Gateway is the remote surface the store depends on.
type Gateway interface {
	List(ctx context.Context, userID string, page int) ([]gateway.Entry, error)
	Create(ctx context.Context, input gateway.CreateInput) ([]gateway.Entry, bool, error)
	UpdateQuantity(ctx context.Context, entryID string, quantity int) (*gateway.Entry, error)
	Delete(ctx context.Context, entryID string) error
}

var _ Gateway = (*gateway.Client)(nil)

// Snapshot is the read surface handed to subscribers. Aggregates are derived
// from Items at snapshot time, never stored.
type Snapshot struct {
	Items       []reconcile.Item
	IsLoading   bool
	TotalAmount int64
	ItemCount   int
}

// StoreParams groups dependencies for the cart store.
type StoreParams struct {
	Gateway  Gateway
	Sessions session.Provider
	Logger   *logger.Logger

	// PropagateFetchErrors surfaces fetch and resync failures to callers.
	// Off by default: reads favor stale data over hard failure, while
	// mutation failures always propagate.
	PropagateFetchErrors bool
}

// Store owns the local cart projection for the active session.
//
// All remote operations are serialized through a single-flight lock, so only
// one call is ever in flight and completions apply in issue order. Every
// session transition bumps an epoch; completions from an older epoch are
// discarded at commit time instead of overwriting the new session's state.
type Store struct {
	gateway              Gateway
	sessions             session.Provider
	log                  *logger.Logger
	propagateFetchErrors bool

	flight sync.Mutex

	mu          sync.Mutex
	items       []reconcile.Item
	loading     bool
	epoch       uint64
	subscribers map[int]func(Snapshot)
	nextSubID   int
	unbind      func()
}

// NewStore builds a cart store bound to the given session provider. The store
// fetches in the background when the session logs in and clears synchronously
// when it logs out.
func NewStore(params StoreParams) (*Store, error) {
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session provider is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}

	store := &Store{
		gateway:              params.Gateway,
		sessions:             params.Sessions,
		log:                  params.Logger,
		propagateFetchErrors: params.PropagateFetchErrors,
		subscribers:          make(map[int]func(Snapshot)),
	}
	store.unbind = params.Sessions.Subscribe(store.handleSessionChange)
	return store, nil
}

// Close detaches the store from the session provider. In-flight completions
// after Close are still epoch-checked.
func (s *Store) Close() {
	if s.unbind != nil {
		s.unbind()
	}
}

// Subscribe registers a snapshot consumer, invoked synchronously after every
// state change. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Items returns a copy of the current item list.
func (s *Store) Items() []reconcile.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]reconcile.Item(nil), s.items...)
}

// IsLoading reports whether a remote operation is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// TotalAmount derives the cart total from the current items.
func (s *Store) TotalAmount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalAmount(s.items)
}

// ItemCount derives the summed quantity from the current items.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ItemCount(s.items)
}

// CurrentSnapshot returns the full read surface at once.
func (s *Store) CurrentSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Fetch replaces the item list with the server's cart. A no-op without an
// active session. Failures keep the previous items; whether they surface to
// the caller follows the configured fetch policy.
func (s *Store) Fetch(ctx context.Context) error {
	sess := s.sessions.Current()
	if !sess.LoggedIn {
		return nil
	}

	s.flight.Lock()
	defer s.flight.Unlock()

	epoch := s.beginOp()
	entries, err := s.gateway.List(ctx, sess.UserID, 1)
	if err != nil {
		s.abortOp()
		s.log.Error(s.log.WithUserID(ctx, sess.UserID), "cart fetch failed, keeping stale items", err)
		if s.propagateFetchErrors {
			return err
		}
		return nil
	}

	s.commitOp(epoch, reconcile.MapEntries(entries))
	return nil
}

// Add puts a product into the cart. A quantity of zero means one, matching
// the remote contract's default. Mutation failures propagate to the caller
// after the busy flag is cleared; no local state was changed before
// confirmation, so there is nothing to roll back.
func (s *Store) Add(ctx context.Context, productID string, quantity int) error {
	if quantity == 0 {
		quantity = 1
	}

	sess, err := s.requireSession(ctx, "add")
	if err != nil {
		return err
	}

	s.flight.Lock()
	defer s.flight.Unlock()

	epoch := s.beginOp()
	entries, usable, err := s.gateway.Create(ctx, gateway.CreateInput{ProductID: productID, Quantity: quantity})
	if err != nil {
		s.abortOp()
		return err
	}

	items, resync := reconcile.AfterCreate(entries, usable)
	if resync {
		return s.resyncOp(ctx, sess, epoch)
	}
	s.commitOp(epoch, items)
	return nil
}

// Remove deletes one cart entry. Removal is unambiguous, so the local list is
// filtered directly with no resync.
func (s *Store) Remove(ctx context.Context, entryID string) error {
	_, err := s.requireSession(ctx, "remove")
	if err != nil {
		return err
	}

	s.flight.Lock()
	defer s.flight.Unlock()

	epoch := s.beginOp()
	if err := s.gateway.Delete(ctx, entryID); err != nil {
		s.abortOp()
		return err
	}

	s.mu.Lock()
	items := reconcile.AfterDelete(s.items, entryID)
	s.mu.Unlock()

	s.commitOp(epoch, items)
	return nil
}

// SetQuantity changes one entry's quantity. Anything below one is a removal,
// not a distinct state. When the server echoes the updated entry only its
// quantity is trusted; a missing echo forces a resync.
func (s *Store) SetQuantity(ctx context.Context, entryID string, quantity int) error {
	if quantity < 1 {
		return s.Remove(ctx, entryID)
	}

	sess, err := s.requireSession(ctx, "setQuantity")
	if err != nil {
		return err
	}

	s.flight.Lock()
	defer s.flight.Unlock()

	epoch := s.beginOp()
	entry, err := s.gateway.UpdateQuantity(ctx, entryID, quantity)
	if err != nil {
		s.abortOp()
		return err
	}

	s.mu.Lock()
	current := append([]reconcile.Item(nil), s.items...)
	s.mu.Unlock()

	items, resync := reconcile.AfterUpdate(current, entry)
	if resync {
		return s.resyncOp(ctx, sess, epoch)
	}
	s.commitOp(epoch, items)
	return nil
}

func (s *Store) requireSession(ctx context.Context, op string) (session.State, error) {
	sess := s.sessions.Current()
	if !sess.LoggedIn {
		s.log.Warn(s.log.WithOperation(ctx, op), "cart mutation without active session")
		return sess, pkgerrors.New(pkgerrors.CodeSession, op+" requires an active session")
	}
	return sess, nil
}

// resyncOp re-derives local state from a full list when a mutation response
// carried no usable data. The mutation itself already succeeded, so a failed
// resync is handled like a failed fetch: stale items stay in place.
func (s *Store) resyncOp(ctx context.Context, sess session.State, epoch uint64) error {
	entries, err := s.gateway.List(ctx, sess.UserID, 1)
	if err != nil {
		s.abortOp()
		s.log.Error(s.log.WithUserID(ctx, sess.UserID), "resync after mutation failed, keeping stale items", err)
		if s.propagateFetchErrors {
			return err
		}
		return nil
	}
	s.commitOp(epoch, reconcile.MapEntries(entries))
	return nil
}

// beginOp flags the store busy and captures the epoch the operation was
// issued under. Must be called with the flight lock held.
func (s *Store) beginOp() uint64 {
	s.mu.Lock()
	s.loading = true
	epoch := s.epoch
	snap, subs := s.snapshotLocked(), s.subscriberListLocked()
	s.mu.Unlock()

	publish(subs, snap)
	return epoch
}

// commitOp applies the operation's result unless the session epoch moved
// while the call was in flight, in which case the completion is dropped.
func (s *Store) commitOp(epoch uint64, items []reconcile.Item) {
	s.mu.Lock()
	s.loading = false
	if epoch == s.epoch {
		s.items = items
	}
	snap, subs := s.snapshotLocked(), s.subscriberListLocked()
	s.mu.Unlock()

	publish(subs, snap)
}

// abortOp clears the busy flag without touching items.
func (s *Store) abortOp() {
	s.mu.Lock()
	s.loading = false
	snap, subs := s.snapshotLocked(), s.subscriberListLocked()
	s.mu.Unlock()

	publish(subs, snap)
}

// handleSessionChange runs synchronously inside the provider's notification.
// The epoch bump and the clear happen before any in-flight completion can
// commit, which is what invalidates requests issued under the old session.
// State is scoped to exactly one session, so a user switch clears just like
// a logout; the fresh session starts empty until its fetch lands.
func (s *Store) handleSessionChange(state session.State) {
	s.mu.Lock()
	s.epoch++
	s.items = nil
	snap, subs := s.snapshotLocked(), s.subscriberListLocked()
	s.mu.Unlock()

	publish(subs, snap)

	if state.LoggedIn {
		go func() {
			_ = s.Fetch(context.Background())
		}()
	}
}

func (s *Store) snapshotLocked() Snapshot {
	items := append([]reconcile.Item(nil), s.items...)
	return Snapshot{
		Items:       items,
		IsLoading:   s.loading,
		TotalAmount: TotalAmount(items),
		ItemCount:   ItemCount(items),
	}
}

func (s *Store) subscriberListLocked() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func publish(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
