// Package gateway exposes the conversation controller over HTTP. It is a
// thin presentation adapter: every mutation goes through the session and
// every read comes from the chat store, so the gateway holds no
// conversation state of its own.
package gateway

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/neurocura/neurocura/pkg/chat"
	"github.com/neurocura/neurocura/session"
)

// Gateway serves the conversation API.
type Gateway struct {
	config  Config
	session *session.Session
	logger  *zap.Logger
	server  *fiber.App
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a Gateway and registers its routes.
func New(config Config, sess *session.Session, logger *zap.Logger) *Gateway {
	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	g := &Gateway{
		config:  config,
		session: sess,
		logger:  logger,
		server:  app,
	}

	app.Post("/api/messages", g.handleSend)
	app.Patch("/api/messages/:id", g.handleEdit)
	app.Get("/api/messages/:id/history", g.handleHistory)
	app.Get("/api/conversation", g.handleConversation)
	app.Post("/api/reset", g.handleReset)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	return g
}

// Run starts the gateway on the configured listening address.
func (g *Gateway) Run() error {
	g.logger.Info("starting gateway", zap.String("listen", g.config.ListenAddr))
	return g.server.Listen(g.config.ListenAddr)
}

// Shutdown stops the server gracefully.
func (g *Gateway) Shutdown() error {
	return g.server.Shutdown()
}

type sendRequest struct {
	Text string `json:"text"`
}

type sendResponse struct {
	UserTurnID      string `json:"user_turn_id"`
	AssistantTurnID string `json:"assistant_turn_id"`
}

// handleSend appends a user message and kicks off a completion request. The
// response is generated asynchronously; clients poll the conversation or
// the assistant turn for its status.
func (g *Gateway) handleSend(c *fiber.Ctx) error {
	var req sendRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	userID, assistantID, err := g.session.Send(req.Text)
	if err != nil {
		return g.mapError(c, err)
	}

	g.logger.Debug("message accepted",
		zap.String("user_turn", userID),
		zap.String("assistant_turn", assistantID),
	)

	return c.Status(fiber.StatusAccepted).JSON(sendResponse{
		UserTurnID:      userID,
		AssistantTurnID: assistantID,
	})
}

type editResponse struct {
	AssistantTurnID string `json:"assistant_turn_id"`
}

// handleEdit rewrites a user turn and regenerates its response.
func (g *Gateway) handleEdit(c *fiber.Ctx) error {
	var req sendRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	assistantID, err := g.session.Edit(c.Params("id"), req.Text)
	if err != nil {
		return g.mapError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(editResponse{AssistantTurnID: assistantID})
}

type historyResponse struct {
	Current  string   `json:"current"`
	Versions []string `json:"versions"`
}

// handleHistory returns the prior texts of a turn, oldest first.
func (g *Gateway) handleHistory(c *fiber.Ctx) error {
	id := c.Params("id")

	versions, err := g.session.History(id)
	if err != nil {
		return g.mapError(c, err)
	}

	current, _ := g.session.Store().Get(id)
	return c.JSON(historyResponse{
		Current:  current.Text,
		Versions: versions,
	})
}

// handleConversation returns the whole conversation in chronological order.
func (g *Gateway) handleConversation(c *fiber.Ctx) error {
	turns := g.session.Store().Turns()

	return c.JSON(map[string]any{
		"count": len(turns),
		"turns": turns,
	})
}

// handleReset empties the conversation and cancels any in-flight request.
func (g *Gateway) handleReset(c *fiber.Ctx) error {
	g.session.Reset()
	return c.SendStatus(fiber.StatusNoContent)
}

func (g *Gateway) mapError(c *fiber.Ctx, err error) error {
	var target chat.ErrInvalidTarget
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	case errors.As(err, &target):
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: err.Error()})
	default:
		g.logger.Error("request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "internal error"})
	}
}
