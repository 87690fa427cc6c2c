package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/queuejw/messenger/internal/api/metrics"
	"github.com/queuejw/messenger/internal/core/ports"
)

// MessageHandler handles HTTP requests for sending and listing messages.
type MessageHandler struct {
	messages ports.MessageService
}

func NewMessageHandler(messages ports.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Send stores a message for a recipient.
//
// @Summary      Send a message
// @Tags         messages
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      sendMessageRequest  true  "Message"
// @Success      201   {object}  domain.Message
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/messages/send [post]
func (h *MessageHandler) Send(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	msg, err := h.messages.SendMessage(c.Request().Context(), req.SenderID, req.RecipientID, req.Content)
	if err != nil {
		return err
	}

	metrics.MessagesSentTotal.Inc()
	return c.JSON(http.StatusCreated, msg)
}

// Receive lists every message addressed to a user.
//
// @Summary      Receive messages
// @Tags         messages
// @Produce      json
// @Param        userId  query     string  true  "Recipient user id"
// @Success      200     {array}   domain.Message
// @Failure      400     {object}  errorResponse
// @Failure      500     {object}  errorResponse
// @Router       /api/messages/receive [get]
func (h *MessageHandler) Receive(c echo.Context) error {
	var req receiveMessagesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid query"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	msgs, err := h.messages.GetMessagesForUser(c.Request().Context(), req.UserID)
	if err != nil {
		return err
	}

	metrics.MessagesDeliveredTotal.Add(float64(len(msgs)))
	return c.JSON(http.StatusOK, msgs)
}
