package model

import "testing"

func TestSlotToggled(t *testing.T) {
	tests := []struct {
		from   SlotStatus
		want   SlotStatus
		wantOK bool
	}{
		{SlotStatusBusy, SlotStatusSwappable, true},
		{SlotStatusSwappable, SlotStatusBusy, true},
		{SlotStatusSwapPending, SlotStatusSwapPending, false},
	}

	for _, tt := range tests {
		slot := &Slot{Status: tt.from}
		got, ok := slot.Toggled()
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("Toggled(%s) = %s, %v; want %s, %v", tt.from, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSwapStatusIsTerminal(t *testing.T) {
	if SwapStatusPending.IsTerminal() {
		t.Fatalf("PENDING must not be terminal")
	}
	if !SwapStatusAccepted.IsTerminal() || !SwapStatusRejected.IsTerminal() {
		t.Fatalf("ACCEPTED and REJECTED must be terminal")
	}
}
