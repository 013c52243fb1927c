package telegram

import (
	"context"

	"github.com/Freeeeeet/slotswap/internal/model"
	"github.com/go-telegram/bot"
)

// notifyNewRequest сообщает владельцу слота о новой заявке, если он пользуется ботом
func (h *Handlers) notifyNewRequest(ctx context.Context, b *bot.Bot, req *model.SwapRequest, requesterName string) {
	chatID, ok := TelegramID(req.OwnerID)
	if !ok {
		return
	}

	views, err := h.swapService.ListRequests(ctx, req.OwnerID)
	if err != nil {
		return
	}
	for _, v := range views {
		if v.ID == req.ID {
			if v.Counterpart.Name == "" {
				v.Counterpart.Name = requesterName
			}
			h.send(ctx, b, chatID, "🔔 Новая заявка на обмен!\n\n"+formatRequest(v), decisionKeyboard(v.ID))
			return
		}
	}
}

// notifyResponse сообщает автору заявки о решении владельца
func (h *Handlers) notifyResponse(ctx context.Context, b *bot.Bot, req *model.SwapRequest) {
	chatID, ok := TelegramID(req.RequesterID)
	if !ok {
		return
	}

	text := "😔 Вашу заявку на обмен отклонили."
	if req.Status == model.SwapStatusAccepted {
		text = "🎉 Вашу заявку на обмен приняли! Слоты поменялись владельцами: /myslots"
	}
	h.send(ctx, b, chatID, text, nil)
}
