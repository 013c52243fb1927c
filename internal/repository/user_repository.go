package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/slotswap/internal/model"
	"github.com/Freeeeeet/slotswap/internal/repository/base"
)

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(db base.DBTX) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(db)}
}

// UpsertUser создаёт пользователя или обновляет его имя (пустое имя не затирает сохранённое)
func (r *UserRepository) UpsertUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, name, telegram_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
		    telegram_id = COALESCE(EXCLUDED.telegram_id, users.telegram_id)
		RETURNING name, created_at
	`

	err := r.QueryRow(ctx, query, user.ID, user.Name, user.TelegramID).Scan(&user.Name, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}

// GetUser получает пользователя по ID
func (r *UserRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT id, name, telegram_id, created_at
		FROM users
		WHERE id = $1
	`

	var user model.User
	err := r.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.TelegramID,
		&user.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Пользователь не найден
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &user, nil
}

// GetUsers получает пользователей по списку ID
func (r *UserRepository) GetUsers(ctx context.Context, ids []string) (map[string]*model.User, error) {
	users := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	query := `
		SELECT id, name, telegram_id, created_at
		FROM users
		WHERE id = ANY($1)
	`

	rows, err := r.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user model.User
		if err := rows.Scan(&user.ID, &user.Name, &user.TelegramID, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users[user.ID] = &user
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}
