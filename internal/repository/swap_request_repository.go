package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/slotswap/internal/model"
	"github.com/Freeeeeet/slotswap/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const requestColumns = `id, my_slot_id, their_slot_id, requester_id, owner_id, status, created_at, responded_at`

type SwapRequestRepository struct {
	*base.Repository
}

func NewSwapRequestRepository(db base.DBTX) *SwapRequestRepository {
	return &SwapRequestRepository{Repository: base.NewRepository(db)}
}

func scanRequest(row pgx.Row) (*model.SwapRequest, error) {
	var req model.SwapRequest
	err := row.Scan(
		&req.ID,
		&req.MySlotID,
		&req.TheirSlotID,
		&req.RequesterID,
		&req.OwnerID,
		&req.Status,
		&req.CreatedAt,
		&req.RespondedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *SwapRequestRepository) queryRequests(ctx context.Context, query string, args ...any) ([]*model.SwapRequest, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*model.SwapRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap requests: %w", err)
	}

	return requests, nil
}

func (r *SwapRequestRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*model.SwapRequest, error) {
	req, err := scanRequest(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// CreateRequest создаёт заявку на обмен
func (r *SwapRequestRepository) CreateRequest(ctx context.Context, req *model.SwapRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}

	query := `
		INSERT INTO swap_requests (id, my_slot_id, their_slot_id, requester_id, owner_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		req.ID,
		req.MySlotID,
		req.TheirSlotID,
		req.RequesterID,
		req.OwnerID,
		req.Status,
	).Scan(&req.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create swap request: %w", ErrConflict)
		}
		return fmt.Errorf("create swap request: %w", err)
	}

	return nil
}

// FindRequest получает заявку по ID
func (r *SwapRequestRepository) FindRequest(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error) {
	req, err := r.findOne(ctx, `SELECT `+requestColumns+` FROM swap_requests WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get swap request: %w", err)
	}
	return req, nil
}

// LockRequest получает заявку и блокирует её строку до конца транзакции
func (r *SwapRequestRepository) LockRequest(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error) {
	req, err := r.findOne(ctx, `SELECT `+requestColumns+` FROM swap_requests WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, fmt.Errorf("lock swap request: %w", err)
	}
	return req, nil
}

// FindRequestsByPair получает заявки по паре слотов и статусу
func (r *SwapRequestRepository) FindRequestsByPair(ctx context.Context, mySlotID, theirSlotID uuid.UUID, status model.SwapStatus) ([]*model.SwapRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM swap_requests
		WHERE my_slot_id = $1 AND their_slot_id = $2 AND status = $3
		ORDER BY created_at DESC, id
	`

	requests, err := r.queryRequests(ctx, query, mySlotID, theirSlotID, status)
	if err != nil {
		return nil, fmt.Errorf("get swap requests by pair: %w", err)
	}
	return requests, nil
}

// FindRequestsBySlot получает заявки, в которых участвует слот
func (r *SwapRequestRepository) FindRequestsBySlot(ctx context.Context, slotID uuid.UUID, status model.SwapStatus) ([]*model.SwapRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM swap_requests
		WHERE (my_slot_id = $1 OR their_slot_id = $1) AND status = $2
		ORDER BY created_at DESC, id
	`

	requests, err := r.queryRequests(ctx, query, slotID, status)
	if err != nil {
		return nil, fmt.Errorf("get swap requests by slot: %w", err)
	}
	return requests, nil
}

// FindRequestsByStatus получает все заявки в указанном статусе
func (r *SwapRequestRepository) FindRequestsByStatus(ctx context.Context, status model.SwapStatus) ([]*model.SwapRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM swap_requests
		WHERE status = $1
		ORDER BY created_at DESC, id
	`

	requests, err := r.queryRequests(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("get swap requests by status: %w", err)
	}
	return requests, nil
}

// FindRequestsByUser получает заявки пользователя в заданной роли, новые первыми
func (r *SwapRequestRepository) FindRequestsByUser(ctx context.Context, userID string, role model.SwapRole) ([]*model.SwapRequest, error) {
	column := "requester_id"
	if role == model.SwapRoleOwner {
		column = "owner_id"
	}

	query := `
		SELECT ` + requestColumns + `
		FROM swap_requests
		WHERE ` + column + ` = $1
		ORDER BY created_at DESC, id
	`

	requests, err := r.queryRequests(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get swap requests by %s: %w", role, err)
	}
	return requests, nil
}

// UpdateRequest обновляет статус заявки
func (r *SwapRequestRepository) UpdateRequest(ctx context.Context, req *model.SwapRequest) error {
	query := `
		UPDATE swap_requests
		SET status = $1, responded_at = $2
		WHERE id = $3
	`

	affected, err := r.ExecAffected(ctx, query, req.Status, req.RespondedAt, req.ID)
	if err != nil {
		return fmt.Errorf("update swap request: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("update swap request %s: %w", req.ID, pgx.ErrNoRows)
	}

	return nil
}
