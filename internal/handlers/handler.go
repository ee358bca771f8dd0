package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/clinic-api/internal/apperr"
	"github.com/harentsoaR/clinic-api/internal/events"
	"github.com/harentsoaR/clinic-api/internal/middleware"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/services"
	"go.uber.org/zap"
)

type Handler struct {
	Services *services.Services
	Hub      *events.Hub
	Log      *zap.Logger
}

func NewHandler(svc *services.Services, hub *events.Hub, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Services: svc, Hub: hub, Log: log}
}

var statusByKind = map[apperr.Kind]int{
	apperr.KindUnauthorized:        http.StatusUnauthorized,
	apperr.KindNotFound:            http.StatusNotFound,
	apperr.KindValidation:          http.StatusBadRequest,
	apperr.KindInvalidTransition:   http.StatusConflict,
	apperr.KindFutureAppointment:   http.StatusBadRequest,
	apperr.KindConflict:            http.StatusConflict,
	apperr.KindGenerationExhausted: http.StatusInternalServerError,
	apperr.KindInternal:            http.StatusInternalServerError,
}

// respondError is the single place where service errors become HTTP
// responses.
func (h *Handler) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	body := gin.H{"error": apperr.MessageOf(err), "kind": string(kind)}
	if status >= http.StatusInternalServerError {
		h.Log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("kind", string(kind)),
			zap.Error(err))
		body["details"] = err.Error()
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func (h *Handler) badRequest(c *gin.Context, msg string) {
	h.respondError(c, apperr.Validation(msg))
}

func principal(c *gin.Context) *models.Principal {
	return middleware.Principal(c)
}

// idParam parses the :id path parameter.
func (h *Handler) idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		h.badRequest(c, "Invalid id")
		return 0, false
	}
	return uint(id), true
}
