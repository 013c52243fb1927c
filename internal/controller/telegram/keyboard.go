package telegram

import (
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

func button(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: callbackData}
}

// decisionKeyboard кнопки ответа на входящую заявку
func decisionKeyboard(requestID uuid.UUID) *models.InlineKeyboardMarkup {
	id := requestID.String()
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{
			button("✅ Принять", callbackAccept+id),
			button("❌ Отклонить", callbackDecline+id),
		}},
	}
}
