package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/slotswap/internal/model"
	"github.com/Freeeeeet/slotswap/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SwapService единственный компонент, который меняет статус заявок
// и переводит слоты между SWAPPABLE, SWAP_PENDING и BUSY в ходе обмена.
type SwapService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewSwapService(store repository.Store, logger *zap.Logger) *SwapService {
	return &SwapService{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ParseDecision разбирает ответ на заявку. DECLINED и REJECTED принимаются как синонимы отказа.
func ParseDecision(raw string) (model.Decision, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ACCEPT", "ACCEPTED":
		return model.DecisionAccept, nil
	case "DECLINE", "DECLINED", "REJECT", "REJECTED":
		return model.DecisionDecline, nil
	default:
		return "", ErrInvalidDecision
	}
}

// ListSwappableSlots получает чужие слоты, открытые для обмена, по времени начала
func (s *SwapService) ListSwappableSlots(ctx context.Context, excludeUserID string) ([]*model.Slot, error) {
	slots, err := s.store.Slots().FindSwappableSlots(ctx, excludeUserID)
	if err != nil {
		return nil, storeError("list swappable slots", err)
	}
	return slots, nil
}

// CreateRequest создаёт заявку на обмен mySlotID на theirSlotID и блокирует оба слота
func (s *SwapService) CreateRequest(ctx context.Context, requesterID string, mySlotID, theirSlotID uuid.UUID) (*model.SwapRequest, error) {
	if requesterID == "" {
		return nil, validationError("requester is required")
	}
	if mySlotID == uuid.Nil || theirSlotID == uuid.Nil {
		return nil, validationError("both mySlotId and theirSlotId are required")
	}
	if mySlotID == theirSlotID {
		return nil, ErrSelfSwap
	}

	var created *model.SwapRequest
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		slots, err := tx.Slots().LockSlots(ctx, mySlotID, theirSlotID)
		if err != nil {
			return err
		}

		mySlot, theirSlot := slots[mySlotID], slots[theirSlotID]
		if mySlot == nil || theirSlot == nil {
			return ErrSlotNotFound
		}
		if mySlot.OwnerID != requesterID {
			return ErrNotOwner
		}
		if theirSlot.OwnerID == requesterID {
			return ErrSelfSwap
		}

		existing, err := tx.Requests().FindRequestsByPair(ctx, mySlotID, theirSlotID, model.SwapStatusPending)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrDuplicatePendingRequest
		}

		// Статус слота уже кодирует участие в другой активной заявке
		if !mySlot.IsSwappable() || !theirSlot.IsSwappable() {
			return ErrSlotNotSwappable
		}

		req := &model.SwapRequest{
			MySlotID:    mySlotID,
			TheirSlotID: theirSlotID,
			RequesterID: requesterID,
			OwnerID:     theirSlot.OwnerID,
			Status:      model.SwapStatusPending,
		}
		if err := tx.Requests().CreateRequest(ctx, req); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrDuplicatePendingRequest
			}
			return err
		}

		for _, slot := range []*model.Slot{mySlot, theirSlot} {
			slot.Status = model.SlotStatusSwapPending
			if err := tx.Slots().UpdateSlot(ctx, slot); err != nil {
				return err
			}
		}

		created = req
		return nil
	})
	if err != nil {
		return nil, storeError("create swap request", err)
	}

	s.logger.Info("Swap request created",
		zap.String("request_id", created.ID.String()),
		zap.String("requester_id", requesterID),
		zap.String("owner_id", created.OwnerID),
		zap.String("my_slot_id", mySlotID.String()),
		zap.String("their_slot_id", theirSlotID.String()),
	)

	return created, nil
}

// RespondToRequest принимает или отклоняет заявку.
// Принятие меняет владельцев слотов местами и делает оба BUSY,
// отказ возвращает слоты в SWAPPABLE.
func (s *SwapService) RespondToRequest(ctx context.Context, responderID string, requestID uuid.UUID, decision model.Decision) (*model.SwapRequest, error) {
	if decision != model.DecisionAccept && decision != model.DecisionDecline {
		return nil, ErrInvalidDecision
	}
	if requestID == uuid.Nil {
		return nil, ErrRequestNotFound
	}

	var updated *model.SwapRequest
	var superseded int
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		req, err := tx.Requests().LockRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return ErrRequestNotFound
		}
		if req.OwnerID != responderID {
			return ErrNotRequestOwner
		}
		if !req.IsPending() {
			return ErrRequestNotPending
		}

		slots, err := tx.Slots().LockSlots(ctx, req.MySlotID, req.TheirSlotID)
		if err != nil {
			return err
		}
		mySlot, theirSlot := slots[req.MySlotID], slots[req.TheirSlotID]
		if mySlot == nil || theirSlot == nil {
			return ErrSlotNotFound
		}

		now := s.now()
		req.RespondedAt = &now
		if decision == model.DecisionAccept {
			req.Status = model.SwapStatusAccepted
		} else {
			req.Status = model.SwapStatusRejected
		}
		if err := tx.Requests().UpdateRequest(ctx, req); err != nil {
			return err
		}

		if decision == model.DecisionAccept {
			mySlot.OwnerID, theirSlot.OwnerID = theirSlot.OwnerID, mySlot.OwnerID
			mySlot.Status = model.SlotStatusBusy
			theirSlot.Status = model.SlotStatusBusy

			superseded, err = s.rejectOverlapping(ctx, tx, req, now)
			if err != nil {
				return err
			}
		} else {
			for _, slot := range []*model.Slot{mySlot, theirSlot} {
				status, err := s.releasedStatus(ctx, tx, slot.ID)
				if err != nil {
					return err
				}
				slot.Status = status
			}
		}

		for _, slot := range []*model.Slot{mySlot, theirSlot} {
			if err := tx.Slots().UpdateSlot(ctx, slot); err != nil {
				return err
			}
		}

		updated = req
		return nil
	})
	if err != nil {
		return nil, storeError("respond to swap request", err)
	}

	s.logger.Info("Swap request answered",
		zap.String("request_id", requestID.String()),
		zap.String("responder_id", responderID),
		zap.String("status", string(updated.Status)),
		zap.Int("superseded", superseded),
	)

	return updated, nil
}

// releasedStatus статус слота после завершения заявки без обмена:
// слот остаётся SWAP_PENDING, только пока на него ссылается другая активная заявка.
func (s *SwapService) releasedStatus(ctx context.Context, tx repository.Store, slotID uuid.UUID) (model.SlotStatus, error) {
	pending, err := tx.Requests().FindRequestsBySlot(ctx, slotID, model.SwapStatusPending)
	if err != nil {
		return "", err
	}
	if len(pending) > 0 {
		return model.SlotStatusSwapPending, nil
	}
	return model.SlotStatusSwappable, nil
}

// rejectOverlapping отклоняет другие активные заявки на слоты принятого обмена
// и освобождает их вторые слоты. Возвращает число отклонённых заявок.
func (s *SwapService) rejectOverlapping(ctx context.Context, tx repository.Store, accepted *model.SwapRequest, now time.Time) (int, error) {
	rejected := 0
	for _, slotID := range []uuid.UUID{accepted.MySlotID, accepted.TheirSlotID} {
		others, err := tx.Requests().FindRequestsBySlot(ctx, slotID, model.SwapStatusPending)
		if err != nil {
			return rejected, err
		}

		for _, other := range others {
			other.Status = model.SwapStatusRejected
			other.RespondedAt = &now
			if err := tx.Requests().UpdateRequest(ctx, other); err != nil {
				return rejected, err
			}
			rejected++

			freed := other.MySlotID
			if accepted.References(freed) {
				freed = other.TheirSlotID
			}
			if accepted.References(freed) {
				continue
			}

			locked, err := tx.Slots().LockSlots(ctx, freed)
			if err != nil {
				return rejected, err
			}
			slot := locked[freed]
			if slot == nil || !slot.IsPending() {
				continue
			}
			if slot.Status, err = s.releasedStatus(ctx, tx, freed); err != nil {
				return rejected, err
			}
			if err := tx.Slots().UpdateSlot(ctx, slot); err != nil {
				return rejected, err
			}
		}
	}
	return rejected, nil
}

// ListRequests получает входящие и исходящие заявки пользователя.
// Внутри каждой группы новые первыми, входящие идут раньше исходящих.
func (s *SwapService) ListRequests(ctx context.Context, userID string) ([]model.RequestView, error) {
	incoming, err := s.store.Requests().FindRequestsByUser(ctx, userID, model.SwapRoleOwner)
	if err != nil {
		return nil, storeError("list incoming requests", err)
	}
	outgoing, err := s.store.Requests().FindRequestsByUser(ctx, userID, model.SwapRoleRequester)
	if err != nil {
		return nil, storeError("list outgoing requests", err)
	}

	all := append(append([]*model.SwapRequest{}, incoming...), outgoing...)
	slots, err := s.loadSlots(ctx, all)
	if err != nil {
		return nil, storeError("load request slots", err)
	}

	counterpartIDs := make([]string, 0, len(all))
	for _, req := range incoming {
		counterpartIDs = append(counterpartIDs, req.RequesterID)
	}
	for _, req := range outgoing {
		counterpartIDs = append(counterpartIDs, req.OwnerID)
	}
	users, err := s.store.Users().GetUsers(ctx, counterpartIDs)
	if err != nil {
		return nil, storeError("load counterparts", err)
	}

	views := make([]model.RequestView, 0, len(all))
	build := func(req *model.SwapRequest, dir model.RequestDirection, counterpartID string) model.RequestView {
		return model.RequestView{
			ID:           req.ID,
			Type:         dir,
			Counterpart:  model.Counterpart{ID: counterpartID, Name: users[counterpartID].DisplayName()},
			EventTitle:   slotTitle(slots[req.TheirSlotID]),
			MyEventTitle: slotTitle(slots[req.MySlotID]),
			Status:       req.Status,
			CreatedAt:    req.CreatedAt,
		}
	}
	for _, req := range incoming {
		views = append(views, build(req, model.DirectionIncoming, req.RequesterID))
	}
	for _, req := range outgoing {
		views = append(views, build(req, model.DirectionOutgoing, req.OwnerID))
	}

	return views, nil
}

// ListHistory получает завершённые заявки пользователя, новые первыми
func (s *SwapService) ListHistory(ctx context.Context, userID string) ([]model.HistoryEntry, error) {
	var terminal []*model.SwapRequest
	roles := make(map[uuid.UUID]model.SwapRole)
	for _, role := range []model.SwapRole{model.SwapRoleRequester, model.SwapRoleOwner} {
		reqs, err := s.store.Requests().FindRequestsByUser(ctx, userID, role)
		if err != nil {
			return nil, storeError("list history", err)
		}
		for _, req := range reqs {
			if !req.Status.IsTerminal() {
				continue
			}
			if _, seen := roles[req.ID]; seen {
				continue
			}
			roles[req.ID] = role
			terminal = append(terminal, req)
		}
	}

	sort.SliceStable(terminal, func(i, j int) bool {
		return terminal[i].CreatedAt.After(terminal[j].CreatedAt)
	})

	slots, err := s.loadSlots(ctx, terminal)
	if err != nil {
		return nil, storeError("load history slots", err)
	}

	history := make([]model.HistoryEntry, 0, len(terminal))
	for _, req := range terminal {
		entry := model.HistoryEntry{
			ID:        req.ID,
			Status:    req.Status,
			Role:      roles[req.ID],
			CreatedAt: req.CreatedAt,
		}
		if slot := slots[req.MySlotID]; slot != nil {
			entry.Title = slot.Title
			entry.StartTime = slot.StartTime
			entry.EndTime = slot.EndTime
		}
		history = append(history, entry)
	}

	return history, nil
}

// loadSlots получает слоты, на которые ссылаются заявки. Удалённые слоты пропускаются.
func (s *SwapService) loadSlots(ctx context.Context, reqs []*model.SwapRequest) (map[uuid.UUID]*model.Slot, error) {
	slots := make(map[uuid.UUID]*model.Slot)
	for _, req := range reqs {
		for _, id := range []uuid.UUID{req.MySlotID, req.TheirSlotID} {
			if _, ok := slots[id]; ok {
				continue
			}
			slot, err := s.store.Slots().FindSlot(ctx, id)
			if err != nil {
				return nil, err
			}
			slots[id] = slot
		}
	}
	return slots, nil
}

func slotTitle(slot *model.Slot) string {
	if slot == nil {
		return ""
	}
	return slot.Title
}
