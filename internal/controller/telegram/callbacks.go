package telegram

import (
	"context"

	"github.com/Freeeeeet/slotswap/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleCallback обрабатывает нажатия "Принять"/"Отклонить"
func (h *Handlers) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	decision, requestID, err := parseDecisionCallback(callback.Data)
	if err != nil {
		h.answerCallback(ctx, b, callback.ID, "❌ Неверный формат данных", true)
		return
	}

	userID, err := h.ensureUser(ctx, &callback.From)
	if err != nil {
		h.logger.Error("Failed to resolve user", zap.Int64("telegram_id", callback.From.ID), zap.Error(err))
		h.answerCallback(ctx, b, callback.ID, ErrorMessage(err), true)
		return
	}

	req, err := h.swapService.RespondToRequest(ctx, userID, requestID, decision)
	if err != nil {
		h.answerCallback(ctx, b, callback.ID, ErrorMessage(err), true)
		return
	}

	result := "❌ Обмен отклонён"
	if req.Status == model.SwapStatusAccepted {
		result = "✅ Обмен принят"
	}
	h.answerCallback(ctx, b, callback.ID, result, false)

	// Убираем кнопки у исходного сообщения
	if callback.Message.Message != nil {
		orig := callback.Message.Message
		_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    orig.Chat.ID,
			MessageID: orig.ID,
			Text:      orig.Text + "\n\n" + result,
		})
		if err != nil {
			h.logger.Warn("Failed to edit request message", zap.Error(err))
		}
	}

	h.notifyResponse(ctx, b, req)
}

func (h *Handlers) answerCallback(ctx context.Context, b *bot.Bot, callbackID, text string, alert bool) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		h.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}
