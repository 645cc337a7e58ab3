package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"padcontrol/internal/handlers/business"
)

// Handler exposes the pad engine over HTTP. One instance per server.
type Handler struct {
	Engine *business.Engine
}

func NewHandler(engine *business.Engine) *Handler {
	return &Handler{Engine: engine}
}

// respondError maps engine errors onto HTTP statuses. Unknown errors are
// logged and surfaced as 500 without the internal detail.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, business.ErrInvalidParams) || errors.Is(err, business.ErrInvalidBuyIndex):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, business.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, business.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, business.ErrDuplicateReceipt),
		errors.Is(err, business.ErrAlreadyClaimed),
		errors.Is(err, business.ErrInvalidLifecycleState),
		errors.Is(err, business.ErrBuyLimitExceeded),
		errors.Is(err, business.ErrSupplyExhausted),
		errors.Is(err, business.ErrRoundWindowViolation),
		errors.Is(err, business.ErrClockNotElapsed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, business.ErrProgramHalted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("pad operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
