package telegram

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/slotswap/internal/model"
	"github.com/google/uuid"
)

const (
	inputLayout = "2006-01-02 15:04"

	callbackPrefix  = "swap_"
	callbackAccept  = "swap_accept:"  // swap_accept:<request id>
	callbackDecline = "swap_decline:" // swap_decline:<request id>
)

var errInvalidCallback = errors.New("invalid callback format")

// parseCommand отделяет имя команды от аргументов: "/swap@bot a b" -> "swap", "a b"
func parseCommand(text string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, rest, _ := strings.Cut(text, " ")
	name = strings.TrimPrefix(head, "/")
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name), strings.TrimSpace(rest), name != ""
}

// parseSlotInput разбирает "Название; 2025-01-02 10:00; 2025-01-02 12:00" (время в UTC)
func parseSlotInput(input string) (title string, start, end time.Time, err error) {
	parts := strings.Split(input, ";")
	if len(parts) != 3 {
		return "", time.Time{}, time.Time{}, errors.New("нужно три части через \";\"")
	}

	title = strings.TrimSpace(parts[0])
	if title == "" {
		return "", time.Time{}, time.Time{}, errors.New("название не может быть пустым")
	}

	start, err = time.ParseInLocation(inputLayout, strings.TrimSpace(parts[1]), time.UTC)
	if err != nil {
		return "", time.Time{}, time.Time{}, fmt.Errorf("не удалось разобрать начало %q", strings.TrimSpace(parts[1]))
	}
	end, err = time.ParseInLocation(inputLayout, strings.TrimSpace(parts[2]), time.UTC)
	if err != nil {
		return "", time.Time{}, time.Time{}, fmt.Errorf("не удалось разобрать окончание %q", strings.TrimSpace(parts[2]))
	}

	return title, start, end, nil
}

func parseUUIDs(args string, n int) ([]uuid.UUID, error) {
	fields := strings.Fields(args)
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d ids, got %d", n, len(fields))
	}

	ids := make([]uuid.UUID, 0, n)
	for _, f := range fields {
		id, err := uuid.Parse(f)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseDecisionCallback(data string) (model.Decision, uuid.UUID, error) {
	var decision model.Decision
	var raw string
	switch {
	case strings.HasPrefix(data, callbackAccept):
		decision, raw = model.DecisionAccept, strings.TrimPrefix(data, callbackAccept)
	case strings.HasPrefix(data, callbackDecline):
		decision, raw = model.DecisionDecline, strings.TrimPrefix(data, callbackDecline)
	default:
		return "", uuid.Nil, errInvalidCallback
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return "", uuid.Nil, errInvalidCallback
	}
	return decision, id, nil
}
