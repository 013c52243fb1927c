package model

import "time"

type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TelegramID *int64    `json:"telegram_id,omitempty"` // nil для пользователей API
	CreatedAt  time.Time `json:"created_at"`
}

// DisplayName возвращает имя для показа собеседнику
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}
