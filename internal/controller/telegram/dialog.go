package telegram

import (
	"sync"
	"time"
)

const dialogTTL = 10 * time.Minute

// dialogs помнит пользователей, от которых ждём описание слота после /addslot
type dialogs struct {
	mu      sync.Mutex
	pending map[int64]time.Time // telegramID -> когда начат диалог
	now     func() time.Time
}

func newDialogs() *dialogs {
	return &dialogs{
		pending: make(map[int64]time.Time),
		now:     time.Now,
	}
}

func (d *dialogs) start(telegramID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[telegramID] = d.now()
}

// take завершает диалог и сообщает, был ли он активен
func (d *dialogs) take(telegramID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	started, ok := d.pending[telegramID]
	delete(d.pending, telegramID)
	return ok && d.now().Sub(started) < dialogTTL
}

func (d *dialogs) clear(telegramID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.pending, telegramID)
}
