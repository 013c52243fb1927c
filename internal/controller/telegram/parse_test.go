package telegram

import (
	"testing"
	"time"

	"github.com/Freeeeeet/slotswap/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text, name, args string
		ok               bool
	}{
		{"/start", "start", "", true},
		{"/swap@SlotSwapBot a b", "swap", "a b", true},
		{"  /ADDSLOT  Title; x; y ", "addslot", "Title; x; y", true},
		{"hello", "", "", false},
		{"/", "", "", false},
	}

	for _, tt := range tests {
		name, args, ok := parseCommand(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.name, name, tt.text)
		assert.Equal(t, tt.args, args, tt.text)
	}
}

func TestParseSlotInput(t *testing.T) {
	title, start, end, err := parseSlotInput("Standup; 2025-01-02 10:00; 2025-01-02 12:30")
	require.NoError(t, err)
	assert.Equal(t, "Standup", title)
	assert.Equal(t, time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 2, 12, 30, 0, 0, time.UTC), end)

	for _, bad := range []string{
		"Standup",
		" ; 2025-01-02 10:00; 2025-01-02 12:00",
		"Standup; tomorrow; 2025-01-02 12:00",
		"Standup; 2025-01-02 10:00; later",
	} {
		_, _, _, err := parseSlotInput(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseUUIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	ids, err := parseUUIDs(a.String()+"  "+b.String(), 2)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	_, err = parseUUIDs(a.String(), 2)
	assert.Error(t, err)
	_, err = parseUUIDs("nope", 1)
	assert.Error(t, err)
}

func TestDecisionCallbackRoundTrip(t *testing.T) {
	id := uuid.New()
	kb := decisionKeyboard(id)
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 2)

	decision, got, err := parseDecisionCallback(kb.InlineKeyboard[0][0].CallbackData)
	require.NoError(t, err)
	assert.Equal(t, model.DecisionAccept, decision)
	assert.Equal(t, id, got)

	decision, _, err = parseDecisionCallback(kb.InlineKeyboard[0][1].CallbackData)
	require.NoError(t, err)
	assert.Equal(t, model.DecisionDecline, decision)

	_, _, err = parseDecisionCallback("swap_accept:123")
	assert.ErrorIs(t, err, errInvalidCallback)
	_, _, err = parseDecisionCallback("book_lesson:" + id.String())
	assert.ErrorIs(t, err, errInvalidCallback)
}

func TestUserIDMapping(t *testing.T) {
	assert.Equal(t, "tg:42", UserID(42))

	id, ok := TelegramID("tg:42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = TelegramID("alice")
	assert.False(t, ok)
	_, ok = TelegramID("tg:abc")
	assert.False(t, ok)
}

func TestDialogs(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	d := newDialogs()
	d.now = func() time.Time { return now }

	assert.False(t, d.take(1))

	d.start(1)
	assert.True(t, d.take(1))
	assert.False(t, d.take(1), "dialog is consumed")

	d.start(2)
	now = now.Add(dialogTTL)
	assert.False(t, d.take(2), "expired dialog")

	d.start(3)
	d.clear(3)
	assert.False(t, d.take(3))
}
