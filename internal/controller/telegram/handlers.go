package telegram

import (
	"context"
	"strconv"
	"strings"

	"github.com/Freeeeeet/slotswap/internal/model"
	"github.com/Freeeeeet/slotswap/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const userIDPrefix = "tg:"

type command struct {
	name        string
	description string
}

var commandMenu = []command{
	{"start", "🚀 Начать работу с ботом"},
	{"help", "❓ Справка по командам"},
	{"myslots", "📅 Мои слоты"},
	{"addslot", "➕ Добавить слот"},
	{"swappable", "🔄 Слоты, доступные для обмена"},
	{"requests", "📨 Мои заявки"},
	{"history", "🗂 История обменов"},
}

// Handlers обработчики команд бота
type Handlers struct {
	userService *service.UserService
	slotService *service.SlotService
	swapService *service.SwapService
	dialogs     *dialogs
	logger      *zap.Logger
}

func NewHandlers(
	userService *service.UserService,
	slotService *service.SlotService,
	swapService *service.SwapService,
	dialogs *dialogs,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService: userService,
		slotService: slotService,
		swapService: swapService,
		dialogs:     dialogs,
		logger:      logger,
	}
}

// UserID идентификатор пользователя Telegram в сервисе
func UserID(telegramID int64) string {
	return userIDPrefix + strconv.FormatInt(telegramID, 10)
}

// TelegramID обратное преобразование; false для пользователей не из Telegram
func TelegramID(userID string) (int64, bool) {
	raw, ok := strings.CutPrefix(userID, userIDPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

func displayName(u *models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" && u.Username != "" {
		name = "@" + u.Username
	}
	return name
}

// HandleMessage разбирает команду или продолжает начатый диалог
func (h *Handlers) HandleMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}

	name, args, isCommand := parseCommand(msg.Text)
	if !isCommand {
		if h.dialogs.take(msg.From.ID) {
			h.addSlot(ctx, b, msg, msg.Text)
		}
		return
	}

	// Любая команда прерывает незаконченный диалог
	h.dialogs.clear(msg.From.ID)

	switch name {
	case "start":
		h.handleStart(ctx, b, msg)
	case "help":
		h.send(ctx, b, msg.Chat.ID, helpText, nil)
	case "myslots":
		h.handleMySlots(ctx, b, msg)
	case "addslot":
		h.handleAddSlot(ctx, b, msg, args)
	case "toggle":
		h.handleToggle(ctx, b, msg, args)
	case "delete":
		h.handleDelete(ctx, b, msg, args)
	case "swappable":
		h.handleSwappable(ctx, b, msg)
	case "swap":
		h.handleSwap(ctx, b, msg, args)
	case "requests":
		h.handleRequests(ctx, b, msg)
	case "history":
		h.handleHistory(ctx, b, msg)
	case "cancel":
		h.send(ctx, b, msg.Chat.ID, "✅ Операция отменена.", nil)
	default:
		h.send(ctx, b, msg.Chat.ID, "❓ Неизвестная команда. Список команд: /help", nil)
	}
}

// ensureUser регистрирует автора сообщения при первом обращении
func (h *Handlers) ensureUser(ctx context.Context, from *models.User) (string, error) {
	userID := UserID(from.ID)

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		tgID := from.ID
		if _, err := h.userService.RegisterUser(ctx, userID, displayName(from), &tgID); err != nil {
			return "", err
		}
	}
	return userID, nil
}

func (h *Handlers) handleStart(ctx context.Context, b *bot.Bot, msg *models.Message) {
	tgID := msg.From.ID
	user, err := h.userService.RegisterUser(ctx, UserID(tgID), displayName(msg.From), &tgID)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Int64("telegram_id", tgID), zap.Error(err))
		h.sendFailure(ctx, b, msg.Chat.ID, err)
		return
	}

	h.send(ctx, b, msg.Chat.ID, "👋 Привет, "+user.DisplayName()+"!\n\n"+
		"Здесь можно обмениваться слотами в расписании с другими пользователями.\n\n"+helpText, nil)
}

func (h *Handlers) handleMySlots(ctx context.Context, b *bot.Bot, msg *models.Message) {
	userID, ok := h.requireUser(ctx, b, msg)
	if !ok {
		return
	}

	slots, err := h.slotService.ListOwnSlots(ctx, userID)
	if err != nil {
		h.sendFailure(ctx, b, msg.Chat.ID, err)
		return
	}
	if len(slots) == 0 {
		h.send(ctx, b, msg.Chat.ID, "📭 У вас пока нет слотов.\n\nДобавить: /addslot", nil)
		return
	}

	h.send(ctx, b, msg.Chat.ID, "📅 Ваши слоты:\n\n"+formatSlots(slots), nil)
}

func (h *Handlers) handleAddSlot(ctx context.Context, b *bot.Bot, msg *models.Message, args string) {
	if strings.TrimSpace(args) == "" {
		h.dialogs.start(msg.From.ID)
		h.send(ctx, b, msg.Chat.ID, addSlotPrompt, nil)
		return
	}
	h.addSlot(ctx, b, msg, args)
}

func (h *Handlers) addSlot(ctx context.Context, b *bot.Bot, msg *models.Message, input string) {
	userID, ok := h.requireUser(ctx, b, msg)
	if !ok {
		return
	}

	title, start, end, err := parseSlotInput(input)
	if err != nil {
		h.dialogs.start(msg.From.ID)
		h.send(ctx, b, msg.Chat.ID, "❌ "+err.Error()+"\n\n"+addSlotPrompt, nil)
		return
	}

	slot, err := h.slotService.CreateSlot(ctx, userID, title, start, end)
	if err != nil {
		h.sendFailure(ctx, b, msg.Chat.ID, err)
		return
	}

	h.send(ctx, b, msg.Chat.ID, "✅ Слот создан:\n\n"+formatSlot(slot), nil)
}

func (h *Handlers) handleToggle(ctx context.Context, b *bot.Bot, msg *models.Message, args string) {
	userID, ok := h.requireUser(ctx, b, msg)
	if !ok {
		return
	}
	ids, ok := h.parseIDs(ctx, b, msg.Chat.ID, args, 1, "/toggle <id слота>")
	if !ok {
		return
	}

	slot, err := h.slotService.ToggleStatus(ctx, userID, ids[0])
	if err != nil {
		h.sendFailure(ctx, b, msg.Chat.ID, err)
		return
	}

	h.send(ctx, b, msg.Chat.ID, "✅ Статус изменён:\n\n"+formatSlot(slot), nil)
}

func (h *Handlers) handleDelete(ctx context.Context, b *bot.Bot, msg *models.Message, args string) {
	userID, ok := h.requireUser(ctx, b, msg)
	if !ok {
		return
	}
	ids, ok := h.parseIDs(ctx, b, msg.Chat.ID, args, 1, "/delete <id слота>")
	if !ok {
		return
	}

	if err := h.slotService.DeleteSlot(ctx, userID, ids[0]); err != nil {
		h.sendFailure(ctx, b, msg.Chat.ID, err)
		return
	}

	h.send(ctx, b, msg.Chat.ID, "🗑 Слот удалён.", nil)
}

func (h *Handlers) handleSwappable(ctx context.Context, b *bot.Bot, msg *models.Message) {
	userID, ok := h.requireUser(ctx, b, msg)
	if !ok {
		return
	}

	slots, err := h.swapService.ListSwappableSlots(ctx, userID)
	if err != nil {
		h.sendFailure(ctx, b, msg.Chat.ID, err)
		return
	}
	if len(slots) == 0 {
		h.send(ctx, b, msg.Chat.ID, "📭 Сейчас нет слотов, доступных для обмена.", nil)
		return
	}

	h.send(ctx, b, msg.Chat.ID, "🔄 Доступны для обмена:\n\n"+formatSlots(slots)+
		"\nПредложить обмен: /swap <id вашего слота> <id чужого слота>", nil)
}

func (h *Handlers) handleSwap(ctx context.Context, b *bot.Bot, msg *models.Message, args string) {
	userID, ok := h.requireUser(ctx, b, msg)
	if !ok {
		return
	}
	ids, ok := h.parseIDs(ctx, b, msg.Chat.ID, args, 2, "/swap <id вашего слота> <id чужого слота>")
	if !ok {
		return
	}

	req, err := h.swapService.CreateRequest(ctx, userID, ids[0], ids[1])
	if err != nil {
		h.sendFailure(ctx, b, msg.Chat.ID, err)
		return
	}

	h.send(ctx, b, msg.Chat.ID, "📨 Заявка на обмен отправлена. Ждём ответа владельца.", nil)
	h.notifyNewRequest(ctx, b, req, displayName(msg.From))
}

func (h *Handlers) handleRequests(ctx context.Context, b *bot.Bot, msg *models.Message) {
	userID, ok := h.requireUser(ctx, b, msg)
	if !ok {
		return
	}

	views, err := h.swapService.ListRequests(ctx, userID)
	if err != nil {
		h.sendFailure(ctx, b, msg.Chat.ID, err)
		return
	}
	if len(views) == 0 {
		h.send(ctx, b, msg.Chat.ID, "📭 Заявок нет.", nil)
		return
	}

	// Ожидающие ответа входящие заявки отправляем отдельными сообщениями с кнопками
	var rest []model.RequestView
	for _, v := range views {
		if v.Type == model.DirectionIncoming && v.Status == model.SwapStatusPending {
			h.send(ctx, b, msg.Chat.ID, formatRequest(v), decisionKeyboard(v.ID))
			continue
		}
		rest = append(rest, v)
	}

	if len(rest) > 0 {
		lines := make([]string, 0, len(rest))
		for _, v := range rest {
			lines = append(lines, formatRequest(v))
		}
		h.send(ctx, b, msg.Chat.ID, "📨 Заявки:\n\n"+strings.Join(lines, "\n\n"), nil)
	}
}

func (h *Handlers) handleHistory(ctx context.Context, b *bot.Bot, msg *models.Message) {
	userID, ok := h.requireUser(ctx, b, msg)
	if !ok {
		return
	}

	history, err := h.swapService.ListHistory(ctx, userID)
	if err != nil {
		h.sendFailure(ctx, b, msg.Chat.ID, err)
		return
	}
	if len(history) == 0 {
		h.send(ctx, b, msg.Chat.ID, "📭 История обменов пуста.", nil)
		return
	}

	h.send(ctx, b, msg.Chat.ID, "🗂 История обменов:\n\n"+formatHistory(history), nil)
}
