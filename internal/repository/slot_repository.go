package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/slotswap/internal/model"
	"github.com/Freeeeeet/slotswap/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const slotColumns = `id, owner_id, title, start_time, end_time, status, created_at, updated_at`

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(db base.DBTX) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(db)}
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.OwnerID,
		&slot.Title,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Status,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *SlotRepository) querySlots(ctx context.Context, query string, args ...any) ([]*model.Slot, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}

// CreateSlot создаёт новый слот
func (r *SlotRepository) CreateSlot(ctx context.Context, slot *model.Slot) error {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}

	query := `
		INSERT INTO slots (id, owner_id, title, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		slot.ID,
		slot.OwnerID,
		slot.Title,
		slot.StartTime,
		slot.EndTime,
		slot.Status,
	).Scan(&slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// FindSlot получает слот по ID
func (r *SlotRepository) FindSlot(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// FindSlotsByOwner получает все слоты пользователя по времени начала
func (r *SlotRepository) FindSlotsByOwner(ctx context.Context, ownerID string) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE owner_id = $1
		ORDER BY start_time, id
	`

	slots, err := r.querySlots(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get slots by owner: %w", err)
	}
	return slots, nil
}

// FindSwappableSlots получает слоты других пользователей, открытые для обмена
func (r *SlotRepository) FindSwappableSlots(ctx context.Context, excludeOwnerID string) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE status = $1 AND owner_id <> $2
		ORDER BY start_time, id
	`

	slots, err := r.querySlots(ctx, query, model.SlotStatusSwappable, excludeOwnerID)
	if err != nil {
		return nil, fmt.Errorf("get swappable slots: %w", err)
	}
	return slots, nil
}

// FindSlotsByStatus получает все слоты в указанном статусе
func (r *SlotRepository) FindSlotsByStatus(ctx context.Context, status model.SlotStatus) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE status = $1
		ORDER BY start_time, id
	`

	slots, err := r.querySlots(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("get slots by status: %w", err)
	}
	return slots, nil
}

// LockSlots блокирует строки слотов (SELECT ... FOR UPDATE).
// Строки захватываются в порядке id, чтобы встречные заявки не взаимоблокировались.
func (r *SlotRepository) LockSlots(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*model.Slot, error) {
	sorted := make([]string, 0, len(ids))
	for _, id := range ids {
		sorted = append(sorted, id.String())
	}
	sort.Strings(sorted)

	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE id = ANY($1::uuid[])
		ORDER BY id
		FOR UPDATE
	`

	slots, err := r.querySlots(ctx, query, sorted)
	if err != nil {
		return nil, fmt.Errorf("lock slots: %w", err)
	}

	locked := make(map[uuid.UUID]*model.Slot, len(slots))
	for _, slot := range slots {
		locked[slot.ID] = slot
	}
	return locked, nil
}

// UpdateSlot сохраняет владельца, статус и время слота
func (r *SlotRepository) UpdateSlot(ctx context.Context, slot *model.Slot) error {
	query := `
		UPDATE slots
		SET owner_id = $1, title = $2, start_time = $3, end_time = $4, status = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at
	`

	err := r.QueryRow(
		ctx, query,
		slot.OwnerID,
		slot.Title,
		slot.StartTime,
		slot.EndTime,
		slot.Status,
		slot.ID,
	).Scan(&slot.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("update slot %s: %w", slot.ID, pgx.ErrNoRows)
		}
		return fmt.Errorf("update slot: %w", err)
	}

	return nil
}

// DeleteSlot удаляет слот владельца. Возвращает false если слот не найден.
func (r *SlotRepository) DeleteSlot(ctx context.Context, id uuid.UUID, ownerID string) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM slots WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete slot: %w", err)
	}
	return affected > 0, nil
}
