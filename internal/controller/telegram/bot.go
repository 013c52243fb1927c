// Package telegram Telegram-интерфейс сервиса обмена слотами.
package telegram

import (
	"context"

	"github.com/Freeeeeet/slotswap/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	userService *service.UserService,
	slotService *service.SlotService,
	swapService *service.SwapService,
	logger *zap.Logger,
) *BotController {
	return &BotController{
		bot:      botInstance,
		handlers: NewHandlers(userService, slotService, swapService, newDialogs(), logger),
		logger:   logger,
	}
}

// RegisterHandlers регистрирует обработчики сообщений и inline-кнопок
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	// Команды разбираются в HandleMessage: префикс "/swap" иначе перехватил бы "/swappable"
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleMessage)
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackPrefix, bot.MatchTypePrefix, c.handlers.HandleCallback)

	return c.setCommands(ctx)
}

// setCommands устанавливает меню команд бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := make([]models.BotCommand, 0, len(commandMenu))
	for _, cmd := range commandMenu {
		commands = append(commands, models.BotCommand{Command: cmd.name, Description: cmd.description})
	}

	if _, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: commands}); err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start запускает long polling до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot")
	c.bot.Start(ctx)
	c.logger.Info("Bot stopped")
}
