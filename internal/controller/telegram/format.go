package telegram

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/slotswap/internal/model"
)

const displayLayout = "02.01.2006 15:04"

var slotStatusLabel = map[model.SlotStatus]string{
	model.SlotStatusBusy:        "🔴 Занят",
	model.SlotStatusSwappable:   "🟢 Доступен для обмена",
	model.SlotStatusSwapPending: "🟡 Ожидает ответа",
}

var swapStatusLabel = map[model.SwapStatus]string{
	model.SwapStatusPending:  "⏳ ожидает ответа",
	model.SwapStatusAccepted: "✅ принята",
	model.SwapStatusRejected: "❌ отклонена",
}

func formatSlot(s *model.Slot) string {
	return fmt.Sprintf("%s\n%s – %s UTC\n%s\nID: %s",
		s.Title,
		s.StartTime.UTC().Format(displayLayout),
		s.EndTime.UTC().Format(displayLayout),
		slotStatusLabel[s.Status],
		s.ID,
	)
}

func formatSlots(slots []*model.Slot) string {
	var sb strings.Builder
	for _, s := range slots {
		sb.WriteString(formatSlot(s))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// formatRequest заявка глазами пользователя. В заявке "my" слот автора, "their" слот владельца.
func formatRequest(v model.RequestView) string {
	name := v.Counterpart.Name
	if name == "" {
		name = v.Counterpart.ID
	}

	var text string
	if v.Type == model.DirectionIncoming {
		text = fmt.Sprintf("📥 %s предлагает «%s» в обмен на ваш «%s»", name, v.MyEventTitle, v.EventTitle)
	} else {
		text = fmt.Sprintf("📤 Вы предлагаете «%s» в обмен на «%s» (%s)", v.MyEventTitle, v.EventTitle, name)
	}
	return text + "\nСтатус: " + swapStatusLabel[v.Status]
}

func formatHistory(entries []model.HistoryEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		role := "вы предлагали"
		if e.Role == model.SwapRoleOwner {
			role = "предлагали вам"
		}

		title := e.Title
		if title == "" {
			title = "слот удалён"
		}

		line := fmt.Sprintf("%s (%s), %s", title, role, swapStatusLabel[e.Status])
		if !e.StartTime.IsZero() {
			line += "\n" + e.StartTime.UTC().Format(displayLayout) + " – " + e.EndTime.UTC().Format(displayLayout) + " UTC"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n\n")
}
