package service

import (
	"context"

	"github.com/Freeeeeet/slotswap/internal/model"
	"github.com/google/uuid"
)

// Violation нарушение правила "слот SWAP_PENDING тогда и только тогда,
// когда на него ссылается активная заявка"
type Violation struct {
	SlotID    uuid.UUID
	Status    model.SlotStatus // пусто, если слот удалён
	RequestID uuid.UUID        // uuid.Nil, если активной заявки нет
	Reason    string
}

// Audit сверяет статусы слотов с активными заявками. Только читает данные.
func (s *SwapService) Audit(ctx context.Context) ([]Violation, error) {
	pendingSlots, err := s.store.Slots().FindSlotsByStatus(ctx, model.SlotStatusSwapPending)
	if err != nil {
		return nil, storeError("audit slots", err)
	}
	pendingReqs, err := s.store.Requests().FindRequestsByStatus(ctx, model.SwapStatusPending)
	if err != nil {
		return nil, storeError("audit requests", err)
	}

	referencedBy := make(map[uuid.UUID]uuid.UUID)
	for _, req := range pendingReqs {
		referencedBy[req.MySlotID] = req.ID
		referencedBy[req.TheirSlotID] = req.ID
	}

	locked := make(map[uuid.UUID]bool, len(pendingSlots))
	var violations []Violation
	for _, slot := range pendingSlots {
		locked[slot.ID] = true
		if _, ok := referencedBy[slot.ID]; !ok {
			violations = append(violations, Violation{
				SlotID: slot.ID,
				Status: slot.Status,
				Reason: "slot is SWAP_PENDING without a pending request",
			})
		}
	}

	for slotID, reqID := range referencedBy {
		if locked[slotID] {
			continue
		}
		slot, err := s.store.Slots().FindSlot(ctx, slotID)
		if err != nil {
			return nil, storeError("audit slot", err)
		}
		v := Violation{SlotID: slotID, RequestID: reqID}
		if slot == nil {
			v.Reason = "pending request references a missing slot"
		} else {
			v.Status = slot.Status
			v.Reason = "pending request references a slot that is not SWAP_PENDING"
		}
		violations = append(violations, v)
	}

	return violations, nil
}
