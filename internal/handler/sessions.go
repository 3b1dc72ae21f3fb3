package handler

import (
	"fmt"
	"net/http"
	"time"

	"movie-finder-service/internal/events"
	"movie-finder-service/internal/model"
	"movie-finder-service/internal/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const defaultKeepAlive = 15 * time.Second

// SessionHandler exposes browsing sessions over HTTP
type SessionHandler struct {
	manager   *pipeline.Manager
	broker    *events.Broker
	keepAlive time.Duration
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(manager *pipeline.Manager, broker *events.Broker) *SessionHandler {
	return &SessionHandler{
		manager:   manager,
		broker:    broker,
		keepAlive: defaultKeepAlive,
	}
}

// SessionCreated is returned when a session opens
type SessionCreated struct {
	ID    string         `json:"id"`
	State pipeline.State `json:"state"`
}

type inputRequest struct {
	Text *string `json:"text"`
}

func (h *SessionHandler) lookup(c *gin.Context) (*pipeline.Controller, bool) {
	ctrl, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, model.APIResponse{
			Code:  404,
			Error: "session not found",
		})
		return nil, false
	}
	return ctrl, true
}

// Create opens a session and starts its initial discover fetch
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	ctrl := h.manager.Create()
	c.JSON(http.StatusCreated, model.APIResponse{
		Code: 201,
		Data: SessionCreated{ID: ctrl.ID(), State: ctrl.Snapshot()},
	})
}

// Get returns the current state
// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, model.APIResponse{Code: 200, Data: ctrl.Snapshot()})
}

// SetInput records raw search text
// PUT /api/v1/sessions/:id/input
func (h *SessionHandler) SetInput(c *gin.Context) {
	var body inputRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Text == nil {
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Code:  400,
			Error: `request body must be {"text": "..."}`,
		})
		return
	}

	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}
	ctrl.SetInput(*body.Text)
	c.JSON(http.StatusAccepted, model.APIResponse{Code: 202, Data: ctrl.Snapshot()})
}

// NextPage moves to the next page
// POST /api/v1/sessions/:id/next
func (h *SessionHandler) NextPage(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}
	ctrl.NextPage()
	c.JSON(http.StatusOK, model.APIResponse{Code: 200, Data: ctrl.Snapshot()})
}

// PrevPage moves to the previous page
// POST /api/v1/sessions/:id/prev
func (h *SessionHandler) PrevPage(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}
	ctrl.PrevPage()
	c.JSON(http.StatusOK, model.APIResponse{Code: 200, Data: ctrl.Snapshot()})
}

// Delete closes the session
// DELETE /api/v1/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	if !h.manager.Close(c.Param("id")) {
		c.JSON(http.StatusNotFound, model.APIResponse{
			Code:  404,
			Error: "session not found",
		})
		return
	}
	c.JSON(http.StatusOK, model.APIResponse{Code: 200, Message: "session closed"})
}

// Events streams state snapshots as server-sent events until the client leaves or the session closes
// GET /api/v1/sessions/:id/events
func (h *SessionHandler) Events(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}
	h.stream(c, ctrl)
}

// stream 在 session 关闭或客户端断开前持续推送状态
func (h *SessionHandler) stream(c *gin.Context, ctrl *pipeline.Controller) {
	sub := h.broker.Subscribe(ctrl.ID())
	defer h.broker.Unsubscribe(ctrl.ID(), sub)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// lookup 与 Subscribe 之间 session 可能已关闭，CloseTopic 不会再关闭这个订阅
	if _, alive := h.manager.Get(ctrl.ID()); !alive {
		c.SSEvent("closed", gin.H{"id": ctrl.ID()})
		c.Writer.Flush()
		return
	}

	c.SSEvent("state", ctrl.Snapshot())
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return

		case ev, open := <-sub:
			if !open {
				c.SSEvent("closed", gin.H{"id": ctrl.ID()})
				c.Writer.Flush()
				log.Debug().Str("session", ctrl.ID()).Msg("Event stream ended")
				return
			}
			c.SSEvent("state", ev.Data)
			c.Writer.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprint(c.Writer, ": heartbeat\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
