package httpapi

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/slotswap/internal/service"
	"github.com/gin-gonic/gin"
)

var kindStatus = map[service.Kind]int{
	service.KindNotFound:                http.StatusNotFound,
	service.KindForbidden:               http.StatusForbidden,
	service.KindInvalidStateTransition:  http.StatusConflict,
	service.KindDuplicatePendingRequest: http.StatusConflict,
	service.KindValidation:              http.StatusBadRequest,
	service.KindStoreUnavailable:        http.StatusServiceUnavailable,
}

// writeError отвечает {"error","code"} со статусом по категории ошибки
func writeError(c *gin.Context, err error) {
	code := service.ErrStoreUnavailable.Code
	var se *service.Error
	if errors.As(err, &se) {
		code = se.Code
	}

	status, ok := kindStatus[service.KindOf(err)]
	if !ok {
		status = http.StatusInternalServerError
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": service.Message(err), "code": code})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message, "code": service.ErrValidation.Code})
}
