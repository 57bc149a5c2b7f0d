package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"stkrelay/internal/logger"
	"stkrelay/internal/middleware"
	"stkrelay/pkg/mpesa"
)

// stkPushFailed is the only failure detail a client ever sees.
const stkPushFailed = "STK Push failed"

// PaymentInitiator sends an STK push and returns Daraja's raw response.
type PaymentInitiator interface {
	InitiatePayment(ctx context.Context, phone string, amount decimal.Decimal) (json.RawMessage, error)
}

type MpesaHandler struct {
	initiator PaymentInitiator
}

func NewMpesaHandler(initiator PaymentInitiator) *MpesaHandler {
	return &MpesaHandler{initiator: initiator}
}

type stkPushRequest struct {
	Phone  string          `json:"phone" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required,gt=0"`
}

// PaymentResult is the /stkpush response body.
type PaymentResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// STKPush prompts the payer's phone. Any failure past input validation is
// logged with its kind and answered with a generic 500.
func (h *MpesaHandler) STKPush(c *gin.Context) {
	rid := logger.LoggerOptions{Key: "request_id", Data: middleware.GetRequestID(c)}
	var req stkPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warning("stk push: invalid body", rid, logger.LoggerOptions{Key: "error", Data: err.Error()})
		c.JSON(http.StatusBadRequest, PaymentResult{Error: "phone and a positive amount are required"})
		return
	}
	phone := normalizePhone(req.Phone)
	if phone == "" {
		c.JSON(http.StatusBadRequest, PaymentResult{Error: "invalid phone number"})
		return
	}

	data, err := h.initiator.InitiatePayment(c.Request.Context(), phone, req.Amount)
	if err != nil {
		logger.Error("STK Push Error", rid,
			logger.LoggerOptions{Key: "kind", Data: mpesa.KindOf(err).String()},
			logger.LoggerOptions{Key: "error", Data: err.Error()},
		)
		c.JSON(http.StatusInternalServerError, PaymentResult{Error: stkPushFailed})
		return
	}
	logger.Info("stk push sent", rid,
		logger.LoggerOptions{Key: "phone", Data: phone},
		logger.LoggerOptions{Key: "amount", Data: req.Amount.String()},
	)
	if len(data) > 0 && !json.Valid(data) {
		data, _ = json.Marshal(string(data))
	}
	c.JSON(http.StatusOK, PaymentResult{Success: true, Data: data})
}

var nonDigits = regexp.MustCompile(`\D`)

// normalizePhone turns 07XXXXXXXX, +2547XXXXXXXX or 7XXXXXXXX into the
// 254XXXXXXXXX form Daraja expects. It returns "" unless that is 12 digits.
func normalizePhone(s string) string {
	s = nonDigits.ReplaceAllString(s, "")
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "0") {
		s = "254" + s[1:]
	} else if !strings.HasPrefix(s, "254") {
		s = "254" + s
	}
	if len(s) != 12 {
		return ""
	}
	return s
}
