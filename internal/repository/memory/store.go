// Package memory provides an in-memory transactional store. Transactions are
// serialised and run against a private copy of the state that replaces the
// committed state only when the transaction function succeeds.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/slotswap/internal/model"
	"github.com/Freeeeeet/slotswap/internal/repository"
	"github.com/google/uuid"
)

type state struct {
	slots    map[uuid.UUID]*model.Slot
	requests map[uuid.UUID]*model.SwapRequest
	users    map[string]*model.User
}

func newState() *state {
	return &state{
		slots:    make(map[uuid.UUID]*model.Slot),
		requests: make(map[uuid.UUID]*model.SwapRequest),
		users:    make(map[string]*model.User),
	}
}

func (st *state) clone() *state {
	c := &state{
		slots:    make(map[uuid.UUID]*model.Slot, len(st.slots)),
		requests: make(map[uuid.UUID]*model.SwapRequest, len(st.requests)),
		users:    make(map[string]*model.User, len(st.users)),
	}
	for id, s := range st.slots {
		c.slots[id] = s.Clone()
	}
	for id, r := range st.requests {
		c.requests[id] = r.Clone()
	}
	for id, u := range st.users {
		cu := *u
		c.users[id] = &cu
	}
	return c
}

// Store is safe for concurrent use.
type Store struct {
	txMu sync.Mutex   // serialises writers
	mu   sync.RWMutex // guards data
	data *state
	now  func() time.Time
}

type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		data: newState(),
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) committed() *view { return &view{store: s} }

func (s *Store) Slots() repository.SlotStore           { return s.committed() }
func (s *Store) Requests() repository.SwapRequestStore { return s.committed() }
func (s *Store) Users() repository.UserStore           { return s.committed() }

func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	if err := fn(&view{store: s, st: work}); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

// view is either the committed state (st == nil) or a transaction's working copy.
type view struct {
	store *Store
	st    *state
}

func (v *view) Slots() repository.SlotStore           { return v }
func (v *view) Requests() repository.SwapRequestStore { return v }
func (v *view) Users() repository.UserStore           { return v }

// InTx inside a transaction behaves like a savepoint.
func (v *view) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if v.st == nil {
		return v.store.InTx(ctx, fn)
	}
	inner := v.st.clone()
	if err := fn(&view{store: v.store, st: inner}); err != nil {
		return err
	}
	*v.st = *inner
	return nil
}

func (v *view) read(fn func(st *state)) {
	if v.st != nil {
		fn(v.st)
		return
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	fn(v.store.data)
}

func (v *view) write(ctx context.Context, fn func(st *state) error) error {
	if v.st != nil {
		return fn(v.st)
	}
	return v.store.InTx(ctx, func(tx repository.Store) error {
		return fn(tx.(*view).st)
	})
}

// ---- slots ----

func sortSlots(slots []*model.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].StartTime.Equal(slots[j].StartTime) {
			return slots[i].StartTime.Before(slots[j].StartTime)
		}
		return slots[i].ID.String() < slots[j].ID.String()
	})
}

func (v *view) filterSlots(keep func(*model.Slot) bool) []*model.Slot {
	var out []*model.Slot
	v.read(func(st *state) {
		for _, s := range st.slots {
			if keep(s) {
				out = append(out, s.Clone())
			}
		}
	})
	sortSlots(out)
	return out
}

func (v *view) FindSlot(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	var slot *model.Slot
	v.read(func(st *state) { slot = st.slots[id].Clone() })
	return slot, nil
}

func (v *view) FindSlotsByOwner(ctx context.Context, ownerID string) ([]*model.Slot, error) {
	return v.filterSlots(func(s *model.Slot) bool { return s.OwnerID == ownerID }), nil
}

func (v *view) FindSwappableSlots(ctx context.Context, excludeOwnerID string) ([]*model.Slot, error) {
	return v.filterSlots(func(s *model.Slot) bool {
		return s.Status == model.SlotStatusSwappable && s.OwnerID != excludeOwnerID
	}), nil
}

func (v *view) FindSlotsByStatus(ctx context.Context, status model.SlotStatus) ([]*model.Slot, error) {
	return v.filterSlots(func(s *model.Slot) bool { return s.Status == status }), nil
}

// LockSlots needs no row locks: transactions already run one at a time.
func (v *view) LockSlots(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*model.Slot, error) {
	locked := make(map[uuid.UUID]*model.Slot, len(ids))
	v.read(func(st *state) {
		for _, id := range ids {
			if s, ok := st.slots[id]; ok {
				locked[id] = s.Clone()
			}
		}
	})
	return locked, nil
}

func (v *view) CreateSlot(ctx context.Context, slot *model.Slot) error {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	now := v.store.now()
	return v.write(ctx, func(st *state) error {
		if _, ok := st.slots[slot.ID]; ok {
			return fmt.Errorf("create slot %s: %w", slot.ID, repository.ErrConflict)
		}
		slot.CreatedAt = now
		slot.UpdatedAt = now
		st.slots[slot.ID] = slot.Clone()
		return nil
	})
}

func (v *view) UpdateSlot(ctx context.Context, slot *model.Slot) error {
	now := v.store.now()
	return v.write(ctx, func(st *state) error {
		if _, ok := st.slots[slot.ID]; !ok {
			return fmt.Errorf("update slot %s: not found", slot.ID)
		}
		slot.UpdatedAt = now
		st.slots[slot.ID] = slot.Clone()
		return nil
	})
}

func (v *view) DeleteSlot(ctx context.Context, id uuid.UUID, ownerID string) (bool, error) {
	var deleted bool
	err := v.write(ctx, func(st *state) error {
		if s, ok := st.slots[id]; ok && s.OwnerID == ownerID {
			delete(st.slots, id)
			deleted = true
		}
		return nil
	})
	return deleted, err
}

// ---- swap requests ----

func sortRequests(reqs []*model.SwapRequest) {
	sort.Slice(reqs, func(i, j int) bool {
		if !reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
		}
		return reqs[i].ID.String() < reqs[j].ID.String()
	})
}

func (v *view) filterRequests(keep func(*model.SwapRequest) bool) []*model.SwapRequest {
	var out []*model.SwapRequest
	v.read(func(st *state) {
		for _, r := range st.requests {
			if keep(r) {
				out = append(out, r.Clone())
			}
		}
	})
	sortRequests(out)
	return out
}

func (v *view) FindRequest(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error) {
	var req *model.SwapRequest
	v.read(func(st *state) { req = st.requests[id].Clone() })
	return req, nil
}

func (v *view) LockRequest(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error) {
	return v.FindRequest(ctx, id)
}

func (v *view) FindRequestsByPair(ctx context.Context, mySlotID, theirSlotID uuid.UUID, status model.SwapStatus) ([]*model.SwapRequest, error) {
	return v.filterRequests(func(r *model.SwapRequest) bool {
		return r.MySlotID == mySlotID && r.TheirSlotID == theirSlotID && r.Status == status
	}), nil
}

func (v *view) FindRequestsBySlot(ctx context.Context, slotID uuid.UUID, status model.SwapStatus) ([]*model.SwapRequest, error) {
	return v.filterRequests(func(r *model.SwapRequest) bool {
		return r.References(slotID) && r.Status == status
	}), nil
}

func (v *view) FindRequestsByStatus(ctx context.Context, status model.SwapStatus) ([]*model.SwapRequest, error) {
	return v.filterRequests(func(r *model.SwapRequest) bool { return r.Status == status }), nil
}

func (v *view) FindRequestsByUser(ctx context.Context, userID string, role model.SwapRole) ([]*model.SwapRequest, error) {
	return v.filterRequests(func(r *model.SwapRequest) bool {
		if role == model.SwapRoleOwner {
			return r.OwnerID == userID
		}
		return r.RequesterID == userID
	}), nil
}

func (v *view) CreateRequest(ctx context.Context, req *model.SwapRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	now := v.store.now()
	return v.write(ctx, func(st *state) error {
		if _, ok := st.requests[req.ID]; ok {
			return fmt.Errorf("create swap request %s: %w", req.ID, repository.ErrConflict)
		}
		if req.Status == model.SwapStatusPending {
			for _, r := range st.requests {
				if r.IsPending() && r.MySlotID == req.MySlotID && r.TheirSlotID == req.TheirSlotID {
					return fmt.Errorf("create swap request: %w", repository.ErrConflict)
				}
			}
		}
		req.CreatedAt = now
		st.requests[req.ID] = req.Clone()
		return nil
	})
}

func (v *view) UpdateRequest(ctx context.Context, req *model.SwapRequest) error {
	return v.write(ctx, func(st *state) error {
		if _, ok := st.requests[req.ID]; !ok {
			return fmt.Errorf("update swap request %s: not found", req.ID)
		}
		st.requests[req.ID] = req.Clone()
		return nil
	})
}

// ---- users ----

func (v *view) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user *model.User
	v.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			cu := *u
			user = &cu
		}
	})
	return user, nil
}

func (v *view) GetUsers(ctx context.Context, ids []string) (map[string]*model.User, error) {
	users := make(map[string]*model.User, len(ids))
	v.read(func(st *state) {
		for _, id := range ids {
			if u, ok := st.users[id]; ok {
				cu := *u
				users[id] = &cu
			}
		}
	})
	return users, nil
}

func (v *view) UpsertUser(ctx context.Context, user *model.User) error {
	now := v.store.now()
	return v.write(ctx, func(st *state) error {
		if existing, ok := st.users[user.ID]; ok {
			user.CreatedAt = existing.CreatedAt
			if user.Name == "" {
				user.Name = existing.Name
			}
			if user.TelegramID == nil {
				user.TelegramID = existing.TelegramID
			}
		} else {
			user.CreatedAt = now
		}
		cu := *user
		st.users[user.ID] = &cu
		return nil
	})
}

var _ repository.Store = (*Store)(nil)
var _ repository.Store = (*view)(nil)
