package app

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/slotswap/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SwapAuditor проверяет согласованность слотов и заявок
type SwapAuditor interface {
	Audit(ctx context.Context) ([]service.Violation, error)
}

// Auditor периодически запускает проверку согласованности и пишет нарушения в лог.
// Ничего не исправляет.
type Auditor struct {
	audit    SwapAuditor
	interval time.Duration
	logger   *zap.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

// NewAuditor создаёт фоновый аудитор
func NewAuditor(audit SwapAuditor, interval time.Duration, logger *zap.Logger) *Auditor {
	return &Auditor{
		audit:    audit,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start запускает фоновую задачу; при interval <= 0 ничего не делает
func (a *Auditor) Start(ctx context.Context) {
	if a.interval <= 0 {
		a.logger.Info("Consistency auditor disabled")
		close(a.done)
		return
	}

	a.logger.Info("Starting consistency auditor", zap.Duration("interval", a.interval))
	go a.run(ctx)
}

// Stop останавливает задачу и ждёт её завершения
func (a *Auditor) Stop() {
	a.stopOnce.Do(func() { close(a.stopChan) })
	<-a.done
}

func (a *Auditor) run(ctx context.Context) {
	defer close(a.done)

	// Первый проход сразу при старте
	a.RunOnce(ctx)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.RunOnce(ctx)
		case <-a.stopChan:
			a.logger.Info("Consistency auditor stopped")
			return
		case <-ctx.Done():
			a.logger.Info("Consistency auditor cancelled")
			return
		}
	}
}

// RunOnce выполняет одну проверку и возвращает число найденных нарушений
func (a *Auditor) RunOnce(ctx context.Context) int {
	violations, err := a.audit.Audit(ctx)
	if err != nil {
		a.logger.Error("Consistency audit failed", zap.Error(err))
		return 0
	}

	for _, v := range violations {
		fields := []zap.Field{
			zap.String("slot_id", v.SlotID.String()),
			zap.String("slot_status", string(v.Status)),
			zap.String("reason", v.Reason),
		}
		if v.RequestID != uuid.Nil {
			fields = append(fields, zap.String("request_id", v.RequestID.String()))
		}
		a.logger.Warn("Slot state inconsistency", fields...)
	}

	if len(violations) == 0 {
		a.logger.Debug("Consistency audit passed")
	}
	return len(violations)
}
