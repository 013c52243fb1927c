package httpapi

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/slotswap/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createEventRequest struct {
	Title    string `json:"title"`
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
}

// GET /api/events
func (h *handler) listEvents(c *gin.Context) {
	slots, err := h.slots.ListOwnSlots(c.Request.Context(), currentUser(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(slots))
}

// POST /api/events
func (h *handler) createEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	var start, end time.Time
	if req.FromDate != "" && req.ToDate != "" {
		var err error
		if start, err = parseTime(req.FromDate); err != nil {
			badRequest(c, "fromDate must be RFC3339")
			return
		}
		if end, err = parseTime(req.ToDate); err != nil {
			badRequest(c, "toDate must be RFC3339")
			return
		}
	}

	slot, err := h.slots.CreateSlot(c.Request.Context(), currentUser(c).UserID, req.Title, start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

// DELETE /api/events/:id
func (h *handler) deleteEvent(c *gin.Context) {
	id, ok := pathID(c, service.ErrSlotNotFound)
	if !ok {
		return
	}
	if err := h.slots.DeleteSlot(c.Request.Context(), currentUser(c).UserID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PATCH /api/events/:id/status
func (h *handler) toggleEvent(c *gin.Context) {
	id, ok := pathID(c, service.ErrSlotNotFound)
	if !ok {
		return
	}
	slot, err := h.slots.ToggleStatus(c.Request.Context(), currentUser(c).UserID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}

// pathID разбирает :id; некорректный id отвечает notFound, как и несуществующий
func pathID(c *gin.Context, notFound error) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, notFound)
		return uuid.Nil, false
	}
	return id, true
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
