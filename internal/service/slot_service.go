package service

import (
	"context"
	"strings"
	"time"

	"github.com/Freeeeeet/slotswap/internal/model"
	"github.com/Freeeeeet/slotswap/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SlotService операции владельца над своими слотами
type SlotService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewSlotService(store repository.Store, logger *zap.Logger) *SlotService {
	return &SlotService{
		store:  store,
		logger: logger,
	}
}

// ListOwnSlots получает слоты пользователя по времени начала
func (s *SlotService) ListOwnSlots(ctx context.Context, userID string) ([]*model.Slot, error) {
	slots, err := s.store.Slots().FindSlotsByOwner(ctx, userID)
	if err != nil {
		return nil, storeError("list own slots", err)
	}
	return slots, nil
}

// CreateSlot создаёт слот пользователя в статусе SWAPPABLE
func (s *SlotService) CreateSlot(ctx context.Context, userID, title string, start, end time.Time) (*model.Slot, error) {
	title = strings.TrimSpace(title)
	if userID == "" || title == "" || start.IsZero() || end.IsZero() {
		return nil, validationError("All fields required")
	}
	if !start.Before(end) {
		return nil, validationError("start must be before end")
	}

	slot := &model.Slot{
		OwnerID:   userID,
		Title:     title,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		Status:    model.SlotStatusSwappable,
	}

	if err := s.store.Slots().CreateSlot(ctx, slot); err != nil {
		return nil, storeError("create slot", err)
	}

	s.logger.Info("Slot created",
		zap.String("slot_id", slot.ID.String()),
		zap.String("user_id", userID),
		zap.Time("start_time", slot.StartTime),
	)

	return slot, nil
}

// DeleteSlot удаляет слот владельца. Слот в активном обмене удалить нельзя.
func (s *SlotService) DeleteSlot(ctx context.Context, userID string, slotID uuid.UUID) error {
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		slot, err := s.lockOwned(ctx, tx, userID, slotID)
		if err != nil {
			return err
		}
		if slot.IsPending() {
			return ErrSlotSwapPending
		}

		deleted, err := tx.Slots().DeleteSlot(ctx, slotID, userID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrSlotNotFound
		}
		return nil
	})
	if err != nil {
		return storeError("delete slot", err)
	}

	s.logger.Info("Slot deleted",
		zap.String("slot_id", slotID.String()),
		zap.String("user_id", userID),
	)

	return nil
}

// ToggleStatus переключает слот между BUSY и SWAPPABLE
func (s *SlotService) ToggleStatus(ctx context.Context, userID string, slotID uuid.UUID) (*model.Slot, error) {
	var updated *model.Slot
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		slot, err := s.lockOwned(ctx, tx, userID, slotID)
		if err != nil {
			return err
		}

		next, ok := slot.Toggled()
		if !ok {
			return ErrInvalidTransition
		}
		slot.Status = next

		if err := tx.Slots().UpdateSlot(ctx, slot); err != nil {
			return err
		}
		updated = slot
		return nil
	})
	if err != nil {
		return nil, storeError("toggle slot status", err)
	}

	s.logger.Info("Slot status toggled",
		zap.String("slot_id", slotID.String()),
		zap.String("user_id", userID),
		zap.String("status", string(updated.Status)),
	)

	return updated, nil
}

// lockOwned блокирует слот; чужой слот неотличим от отсутствующего
func (s *SlotService) lockOwned(ctx context.Context, tx repository.Store, userID string, slotID uuid.UUID) (*model.Slot, error) {
	slots, err := tx.Slots().LockSlots(ctx, slotID)
	if err != nil {
		return nil, err
	}
	slot := slots[slotID]
	if slot == nil || slot.OwnerID != userID {
		return nil, ErrSlotNotFound
	}
	return slot, nil
}
