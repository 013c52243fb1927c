package model

import (
	"time"

	"github.com/google/uuid"
)

type SwapStatus string

const (
	SwapStatusPending  SwapStatus = "PENDING"
	SwapStatusAccepted SwapStatus = "ACCEPTED"
	SwapStatusRejected SwapStatus = "REJECTED"
)

// IsTerminal проверяет что статус финальный
func (s SwapStatus) IsTerminal() bool {
	return s == SwapStatusAccepted || s == SwapStatusRejected
}

// SwapRole определяет сторону пользователя в заявке
type SwapRole string

const (
	SwapRoleRequester SwapRole = "requester"
	SwapRoleOwner     SwapRole = "owner"
)

// SwapRequest заявка на обмен двумя слотами между двумя пользователями
type SwapRequest struct {
	ID          uuid.UUID  `json:"id"`
	MySlotID    uuid.UUID  `json:"my_slot_id"`    // слот инициатора
	TheirSlotID uuid.UUID  `json:"their_slot_id"` // запрошенный слот
	RequesterID string     `json:"requester_id"`
	OwnerID     string     `json:"owner_id"` // владелец TheirSlotID на момент создания
	Status      SwapStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// IsPending checks if request is still awaiting a response
func (r *SwapRequest) IsPending() bool {
	return r.Status == SwapStatusPending
}

// References проверяет участвует ли слот в заявке
func (r *SwapRequest) References(slotID uuid.UUID) bool {
	return r.MySlotID == slotID || r.TheirSlotID == slotID
}

// Involves проверяет является ли пользователь стороной заявки
func (r *SwapRequest) Involves(userID string) bool {
	return r.RequesterID == userID || r.OwnerID == userID
}

// Clone возвращает независимую копию заявки
func (r *SwapRequest) Clone() *SwapRequest {
	if r == nil {
		return nil
	}
	c := *r
	if r.RespondedAt != nil {
		t := *r.RespondedAt
		c.RespondedAt = &t
	}
	return &c
}

// Decision ответ владельца на заявку
type Decision string

const (
	DecisionAccept  Decision = "ACCEPT"
	DecisionDecline Decision = "DECLINE"
)
