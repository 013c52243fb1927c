package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/slotswap/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type swapRequestBody struct {
	MySlotID    string `json:"mySlotId"`
	TheirSlotID string `json:"theirSlotId"`
}

type swapResponseBody struct {
	Status string `json:"status"`
}

// GET /api/swaps/swappable-slots
func (h *handler) swappableSlots(c *gin.Context) {
	slots, err := h.swaps.ListSwappableSlots(c.Request.Context(), currentUser(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(slots))
}

// POST /api/swaps/request
func (h *handler) createSwapRequest(c *gin.Context) {
	var body swapRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	if body.MySlotID == "" || body.TheirSlotID == "" {
		badRequest(c, "Both mySlotId and theirSlotId are required")
		return
	}

	mySlot, err1 := uuid.Parse(body.MySlotID)
	theirSlot, err2 := uuid.Parse(body.TheirSlotID)
	if err1 != nil || err2 != nil {
		writeError(c, service.ErrSlotNotFound)
		return
	}

	req, err := h.swaps.CreateRequest(c.Request.Context(), currentUser(c).UserID, mySlot, theirSlot)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// POST /api/swaps/response/:id
func (h *handler) respondSwapRequest(c *gin.Context) {
	var body swapResponseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	decision, err := service.ParseDecision(body.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	id, ok := pathID(c, service.ErrRequestNotFound)
	if !ok {
		return
	}

	req, err := h.swaps.RespondToRequest(c.Request.Context(), currentUser(c).UserID, id, decision)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// GET /api/swaps/requests
func (h *handler) listSwapRequests(c *gin.Context) {
	views, err := h.swaps.ListRequests(c.Request.Context(), currentUser(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(views))
}

// GET /api/swaps/history
func (h *handler) swapHistory(c *gin.Context) {
	entries, err := h.swaps.ListHistory(c.Request.Context(), currentUser(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(entries))
}
