package repository

import (
	"context"

	"github.com/Freeeeeet/slotswap/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore хранилище поверх PostgreSQL.
// Вне транзакции работает на пуле, внутри InTx на pgx.Tx.
type PostgresStore struct {
	db       base.Beginner
	slots    *SlotRepository
	requests *SwapRequestRepository
	users    *UserRepository
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return newPostgresStore(pool, pool)
}

func newPostgresStore(db base.Beginner, conn base.DBTX) *PostgresStore {
	return &PostgresStore{
		db:       db,
		slots:    NewSlotRepository(conn),
		requests: NewSwapRequestRepository(conn),
		users:    NewUserRepository(conn),
	}
}

func (s *PostgresStore) Slots() SlotStore           { return s.slots }
func (s *PostgresStore) Requests() SwapRequestStore { return s.requests }
func (s *PostgresStore) Users() UserStore           { return s.users }

// InTx выполняет fn в транзакции; вложенный вызов открывает savepoint
func (s *PostgresStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return base.RunInTx(ctx, s.db, func(tx pgx.Tx) error {
		return fn(newPostgresStore(tx, tx))
	})
}
