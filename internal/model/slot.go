package model

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotStatusBusy        SlotStatus = "BUSY"         // Занят, не участвует в обменах
	SlotStatusSwappable   SlotStatus = "SWAPPABLE"    // Открыт для предложений обмена
	SlotStatusSwapPending SlotStatus = "SWAP_PENDING" // Заблокирован активной заявкой
)

// Valid проверяет что статус входит в перечисление
func (s SlotStatus) Valid() bool {
	switch s {
	case SlotStatusBusy, SlotStatusSwappable, SlotStatusSwapPending:
		return true
	}
	return false
}

type Slot struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Title     string     `json:"title"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Status    SlotStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Toggled возвращает статус после ручного переключения владельцем.
// Переключение разрешено только между BUSY и SWAPPABLE.
func (s *Slot) Toggled() (SlotStatus, bool) {
	switch s.Status {
	case SlotStatusBusy:
		return SlotStatusSwappable, true
	case SlotStatusSwappable:
		return SlotStatusBusy, true
	default:
		return s.Status, false
	}
}

// IsSwappable проверяет что слот можно предложить к обмену
func (s *Slot) IsSwappable() bool {
	return s.Status == SlotStatusSwappable
}

// IsPending проверяет что слот заблокирован заявкой на обмен
func (s *Slot) IsPending() bool {
	return s.Status == SlotStatusSwapPending
}

// Clone возвращает независимую копию слота
func (s *Slot) Clone() *Slot {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
