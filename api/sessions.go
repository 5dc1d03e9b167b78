package api

import (
	"net/http"
	"time"

	"github.com/coverwing/membership/internal/service/quote"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	service quote.QuoteUseCase
}

type sessionResponse struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
}

func NewSessionHandler(service quote.QuoteUseCase) *SessionHandler {
	return &SessionHandler{service: service}
}

func (h *SessionHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
}

func (h *SessionHandler) create(c *gin.Context) {
	session, err := h.service.CreateSession(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse{
		ID:        session.ID,
		CreatedAt: session.CreatedAt.Format(time.RFC3339),
	})
}

// get fails closed: any stale, consumed or unknown session comes back 404
// with a restart flag so the client resets its wizard state.
func (h *SessionHandler) get(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{
		ID:        session.ID,
		CreatedAt: session.CreatedAt.Format(time.RFC3339),
	})
}
