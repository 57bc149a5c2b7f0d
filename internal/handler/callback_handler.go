package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stkrelay/internal/logger"
	"stkrelay/internal/middleware"
	"stkrelay/internal/ws"
	"stkrelay/pkg/mpesa"
)

// CallbackEvent is what feed clients receive for each callback.
type CallbackEvent struct {
	Type       string      `json:"type"`
	ReceivedAt time.Time   `json:"received_at"`
	Payload    interface{} `json:"payload"`
}

type CallbackHandler struct {
	hub *ws.Hub
}

func NewCallbackHandler(hub *ws.Hub) *CallbackHandler {
	return &CallbackHandler{hub: hub}
}

// Receive accepts Daraja's result notification. The body is logged and
// relayed to the live feed as-is; nothing is validated, stored or matched to
// an earlier push, and the answer is always 200.
func (h *CallbackHandler) Receive(c *gin.Context) {
	rid := logger.LoggerOptions{Key: "request_id", Data: middleware.GetRequestID(c)}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.Warning("M-Pesa Callback: read body", rid, logger.LoggerOptions{Key: "error", Data: err.Error()})
	}
	logger.Info("M-Pesa Callback", rid, logger.LoggerOptions{Key: "body", Data: string(body)})

	if cb, ok := mpesa.ParseCallback(body); ok {
		logger.Info("M-Pesa Callback: stk result", rid,
			logger.LoggerOptions{Key: "merchant_request_id", Data: cb.MerchantRequestID},
			logger.LoggerOptions{Key: "checkout_request_id", Data: cb.CheckoutRequestID},
			logger.LoggerOptions{Key: "result_code", Data: cb.ResultCode},
			logger.LoggerOptions{Key: "result_desc", Data: cb.ResultDesc},
		)
	}

	if h.hub != nil {
		var payload interface{} = string(body)
		if json.Valid(body) {
			payload = json.RawMessage(body)
		}
		err := h.hub.Broadcast(CallbackEvent{Type: "callback", ReceivedAt: time.Now().UTC(), Payload: payload})
		if err != nil {
			logger.Warning("M-Pesa Callback: broadcast", rid, logger.LoggerOptions{Key: "error", Data: err.Error()})
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Callback received"})
}
