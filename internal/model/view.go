package model

import (
	"time"

	"github.com/google/uuid"
)

// RequestDirection направление заявки относительно пользователя
type RequestDirection string

const (
	DirectionIncoming RequestDirection = "incoming"
	DirectionOutgoing RequestDirection = "outgoing"
)

// Counterpart вторая сторона заявки
type Counterpart struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RequestView заявка с данными слотов и собеседника для списков
type RequestView struct {
	ID           uuid.UUID        `json:"id"`
	Type         RequestDirection `json:"type"`
	Counterpart  Counterpart      `json:"counterpart"`
	EventTitle   string           `json:"event_title"`
	MyEventTitle string           `json:"my_event_title"`
	Status       SwapStatus       `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
}

// HistoryEntry завершённая заявка в истории пользователя
type HistoryEntry struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Status    SwapStatus `json:"status"`
	Role      SwapRole   `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}
