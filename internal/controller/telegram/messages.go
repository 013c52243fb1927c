package telegram

import (
	"context"
	"errors"

	"github.com/Freeeeeet/slotswap/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const helpText = "📚 Команды:\n\n" +
	"/myslots - Мои слоты\n" +
	"/addslot Название; 2025-01-02 10:00; 2025-01-02 12:00 - Добавить слот\n" +
	"/toggle <id> - Переключить BUSY/SWAPPABLE\n" +
	"/delete <id> - Удалить слот\n" +
	"/swappable - Чужие слоты, доступные для обмена\n" +
	"/swap <мой id> <чужой id> - Предложить обмен\n" +
	"/requests - Входящие и исходящие заявки\n" +
	"/history - История обменов\n" +
	"/cancel - Отменить текущую операцию\n\n" +
	"Время указывается в UTC."

const addSlotPrompt = "✏️ Отправьте слот в формате:\n" +
	"Название; 2025-01-02 10:00; 2025-01-02 12:00"

// ErrorMessage возвращает пользовательское сообщение для ошибки сервиса
func ErrorMessage(err error) string {
	var se *service.Error
	if !errors.As(err, &se) {
		return "❌ Произошла ошибка. Попробуйте позже."
	}

	switch se.Code {
	case service.ErrSlotNotFound.Code:
		return "❌ Слот не найден"
	case service.ErrRequestNotFound.Code:
		return "❌ Заявка не найдена"
	case service.ErrNotOwner.Code:
		return "❌ Этот слот вам не принадлежит"
	case service.ErrNotRequestOwner.Code:
		return "❌ Ответить на заявку может только владелец слота"
	case service.ErrSlotNotSwappable.Code:
		return "❌ Оба слота должны быть доступны для обмена"
	case service.ErrRequestNotPending.Code:
		return "❌ Заявка уже обработана"
	case service.ErrInvalidTransition.Code:
		return "❌ Нельзя менять статус, пока идёт обмен"
	case service.ErrSlotSwapPending.Code:
		return "❌ Нельзя удалить слот, пока идёт обмен"
	case service.ErrDuplicatePendingRequest.Code:
		return "❌ Такая заявка уже существует"
	case service.ErrInvalidDecision.Code:
		return "❌ Неверное решение"
	case service.ErrSelfSwap.Code:
		return "❌ Нельзя обменять слот на свой же"
	case service.ErrValidation.Code:
		return "❌ Некорректные данные: " + se.Message
	default:
		return "❌ Произошла ошибка. Попробуйте позже."
	}
}

// send отправляет сообщение и логирует, если не удалось
func (h *Handlers) send(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Handlers) sendFailure(ctx context.Context, b *bot.Bot, chatID int64, err error) {
	if service.KindOf(err) == service.KindStoreUnavailable {
		h.logger.Error("Service call failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	h.send(ctx, b, chatID, ErrorMessage(err), nil)
}

// requireUser возвращает id пользователя, регистрируя его при необходимости
func (h *Handlers) requireUser(ctx context.Context, b *bot.Bot, msg *models.Message) (string, bool) {
	userID, err := h.ensureUser(ctx, msg.From)
	if err != nil {
		h.logger.Error("Failed to resolve user", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		h.sendFailure(ctx, b, msg.Chat.ID, err)
		return "", false
	}
	return userID, true
}

func (h *Handlers) parseIDs(ctx context.Context, b *bot.Bot, chatID int64, args string, n int, usage string) ([]uuid.UUID, bool) {
	ids, err := parseUUIDs(args, n)
	if err != nil {
		h.send(ctx, b, chatID, "❌ Использование: "+usage, nil)
		return nil, false
	}
	return ids, true
}
