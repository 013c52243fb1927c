package repository

import (
	"context"
	"errors"

	"github.com/Freeeeeet/slotswap/internal/model"
	"github.com/google/uuid"
)

// ErrConflict запись нарушает ограничение уникальности хранилища
var ErrConflict = errors.New("conflicting record")

// Все Find* методы возвращают (nil, nil) если запись не найдена.

// SlotStore операции над слотами
type SlotStore interface {
	FindSlot(ctx context.Context, id uuid.UUID) (*model.Slot, error)
	FindSlotsByOwner(ctx context.Context, ownerID string) ([]*model.Slot, error)
	FindSwappableSlots(ctx context.Context, excludeOwnerID string) ([]*model.Slot, error)
	FindSlotsByStatus(ctx context.Context, status model.SlotStatus) ([]*model.Slot, error)
	// LockSlots блокирует слоты до конца транзакции в порядке возрастания id.
	// Отсутствующие слоты не попадают в результат.
	LockSlots(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*model.Slot, error)
	CreateSlot(ctx context.Context, slot *model.Slot) error
	UpdateSlot(ctx context.Context, slot *model.Slot) error
	DeleteSlot(ctx context.Context, id uuid.UUID, ownerID string) (bool, error)
}

// SwapRequestStore операции над заявками на обмен
type SwapRequestStore interface {
	FindRequest(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error)
	// LockRequest как FindRequest, но блокирует строку до конца транзакции
	LockRequest(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error)
	FindRequestsByPair(ctx context.Context, mySlotID, theirSlotID uuid.UUID, status model.SwapStatus) ([]*model.SwapRequest, error)
	FindRequestsBySlot(ctx context.Context, slotID uuid.UUID, status model.SwapStatus) ([]*model.SwapRequest, error)
	FindRequestsByStatus(ctx context.Context, status model.SwapStatus) ([]*model.SwapRequest, error)
	// FindRequestsByUser возвращает заявки пользователя в роли role, новые первыми
	FindRequestsByUser(ctx context.Context, userID string, role model.SwapRole) ([]*model.SwapRequest, error)
	CreateRequest(ctx context.Context, req *model.SwapRequest) error
	UpdateRequest(ctx context.Context, req *model.SwapRequest) error
}

// UserStore справочник пользователей
type UserStore interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUsers(ctx context.Context, ids []string) (map[string]*model.User, error)
	UpsertUser(ctx context.Context, user *model.User) error
}

// Store точка доступа к хранилищу.
// InTx выполняет fn в одной транзакции: либо применяются все записи, либо ни одной.
type Store interface {
	Slots() SlotStore
	Requests() SwapRequestStore
	Users() UserStore
	InTx(ctx context.Context, fn func(tx Store) error) error
}
