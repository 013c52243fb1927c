package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/slotswap/internal/model"
	"github.com/Freeeeeet/slotswap/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSlot(owner string, hour int) *model.Slot {
	start := time.Date(2025, 3, 1, hour, 0, 0, 0, time.UTC)
	return &model.Slot{
		OwnerID:   owner,
		Title:     "slot",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    model.SlotStatusSwappable,
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	slot := newSlot("u1", 9)
	require.NoError(t, s.Slots().CreateSlot(ctx, slot))

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx repository.Store) error {
		slot.Status = model.SlotStatusBusy
		if err := tx.Slots().UpdateSlot(ctx, slot); err != nil {
			return err
		}
		if err := tx.Slots().CreateSlot(ctx, newSlot("u2", 10)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Slots().FindSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusSwappable, got.Status)

	others, err := s.Slots().FindSlotsByOwner(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestNestedInTxIsSavepoint(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.InTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Slots().CreateSlot(ctx, newSlot("u1", 9)))
		inner := tx.InTx(ctx, func(tx repository.Store) error {
			require.NoError(t, tx.Slots().CreateSlot(ctx, newSlot("u1", 10)))
			return errors.New("inner failed")
		})
		assert.Error(t, inner)
		return nil
	})
	require.NoError(t, err)

	slots, err := s.Slots().FindSlotsByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	slot := newSlot("u1", 9)
	require.NoError(t, s.Slots().CreateSlot(ctx, slot))

	slot.OwnerID = "intruder"
	got, err := s.Slots().FindSlot(ctx, slot.ID)
	require.NoError(t, err)
	got.Status = model.SlotStatusBusy

	again, err := s.Slots().FindSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", again.OwnerID)
	assert.Equal(t, model.SlotStatusSwappable, again.Status)
}

func TestPendingPairIsUnique(t *testing.T) {
	ctx := context.Background()
	s := New()
	my, their := uuid.New(), uuid.New()
	req := func() *model.SwapRequest {
		return &model.SwapRequest{MySlotID: my, TheirSlotID: their, RequesterID: "u1", OwnerID: "u2", Status: model.SwapStatusPending}
	}

	require.NoError(t, s.Requests().CreateRequest(ctx, req()))
	err := s.Requests().CreateRequest(ctx, req())
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestRequestsOrderedNewestFirst(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time {
		now = now.Add(time.Minute)
		return now
	}))

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		r := &model.SwapRequest{MySlotID: uuid.New(), TheirSlotID: uuid.New(), RequesterID: "u1", OwnerID: "u2", Status: model.SwapStatusPending}
		require.NoError(t, s.Requests().CreateRequest(ctx, r))
		ids = append(ids, r.ID)
	}

	got, err := s.Requests().FindRequestsByUser(ctx, "u2", model.SwapRoleOwner)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ids[2], got[0].ID)
	assert.Equal(t, ids[0], got[2].ID)
}
