package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/pkg/money"
	"github.com/polkiloo/homecare/internal/server/http/dto"
)

const (
	// SignatureHeader carries the hex HMAC of the webhook body.
	SignatureHeader = "X-Signature"
	maxWebhookBody  = 64 << 10
)

// PaymentHandler drives the additional-medicine payment.
type PaymentHandler struct {
	facade PaymentFacade
}

func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// View handles GET /api/medicine-orders/:id/payment.
func (h *PaymentHandler) View(c *gin.Context) {
	view, err := h.facade.PaymentView(c.Request.Context(), CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentViewResponse(view))
}

// Start handles POST /api/medicine-orders/:id/payment.
func (h *PaymentHandler) Start(c *gin.Context) {
	var req dto.StartPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed selection")
		return
	}

	view, err := h.facade.StartPayment(c.Request.Context(), model.StartPaymentInput{
		PatientID:       CurrentUserID(c),
		MedicineOrderID: c.Param("id"),
		LineIDs:         req.LineIDs,
		SelectAll:       req.SelectAll,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPaymentViewResponse(view))
}

// Skip handles POST /api/medicine-orders/:id/skip.
func (h *PaymentHandler) Skip(c *gin.Context) {
	if err := h.facade.SkipPayment(c.Request.Context(), CurrentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Session handles GET /api/payments/:id.
func (h *PaymentHandler) Session(c *gin.Context) {
	view, err := h.facade.PaymentSession(c.Request.Context(), CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentViewResponse(view))
}

// Acknowledge handles POST /api/payments/:id/acknowledge.
func (h *PaymentHandler) Acknowledge(c *gin.Context) {
	view, err := h.facade.AcknowledgePayment(c.Request.Context(), CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentViewResponse(view))
}

// Finalize handles POST /api/payments/:id/finalize.
func (h *PaymentHandler) Finalize(c *gin.Context) {
	view, err := h.facade.FinalizePayment(c.Request.Context(), CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentViewResponse(view))
}

// Webhook handles POST /api/payments/webhook. The signature covers the raw body.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if err := h.facade.HandlePaymentNotification(c.Request.Context(), body, c.GetHeader(SignatureHeader)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func toPaymentViewResponse(view *model.PaymentView) dto.PaymentViewResponse {
	resp := dto.PaymentViewResponse{
		State:         string(view.State),
		MedicineOrder: toMedicineOrderResponse(view.MedicineOrder),
	}
	if s := view.Session; s != nil {
		resp.Session = &dto.PaymentSessionResponse{
			ID:               s.ID,
			LineIDs:          s.LineIDs,
			Amount:           s.Amount,
			AmountDisplay:    money.FormatRupiah(s.Amount),
			VirtualAccount:   s.VirtualAccount,
			ExpiresAt:        s.ExpiresAt,
			RemainingSeconds: view.RemainingSeconds,
			Expired:          view.Expired,
			ConfirmedAt:      s.ConfirmedAt,
			FinalizedAt:      s.FinalizedAt,
		}
	}
	return resp
}
