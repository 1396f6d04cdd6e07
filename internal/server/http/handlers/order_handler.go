package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/pkg/money"
	"github.com/polkiloo/homecare/internal/server/http/dto"
)

const maxEvidenceSize = 10 << 20

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Book handles POST /api/orders.
func (h *OrderHandler) Book(c *gin.Context) {
	var req dto.BookOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "caregiver_id and appointment_id are required")
		return
	}

	order, err := h.facade.BookOrder(c.Request.Context(), CurrentUserID(c), req.CaregiverID, req.AppointmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Rate handles POST /api/orders/:id/rate.
func (h *OrderHandler) Rate(c *gin.Context) {
	var req dto.RateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "rate is required")
		return
	}

	order, err := h.facade.RateOrder(c.Request.Context(), CurrentUserID(c), c.Param("id"), req.Rate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	order, err := h.facade.CancelOrder(c.Request.Context(), CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Finish handles POST /api/orders/:id/finish.
// The multipart form carries the "evidence" image and an optional "medicines" JSON array.
func (h *OrderHandler) Finish(c *gin.Context) {
	in := model.FinishOrderInput{OrderID: c.Param("id"), CaregiverID: CurrentUserID(c)}

	if raw := strings.TrimSpace(c.PostForm("medicines")); raw != "" {
		var selections []dto.SelectionRequest
		if err := json.Unmarshal([]byte(raw), &selections); err != nil {
			badRequest(c, "medicines must be a JSON array")
			return
		}
		for _, s := range selections {
			in.Selections = append(in.Selections, model.SelectionInput{MedicineID: s.MedicineID, Quantity: s.Quantity})
		}
	}

	if header, err := c.FormFile("evidence"); err == nil {
		if header.Size > maxEvidenceSize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "proof of service image is too large"})
			return
		}
		file, err := header.Open()
		if err != nil {
			badRequest(c, "cannot read evidence")
			return
		}
		in.Evidence, err = io.ReadAll(io.LimitReader(file, maxEvidenceSize))
		_ = file.Close()
		if err != nil {
			badRequest(c, "cannot read evidence")
			return
		}
	}

	res, err := h.facade.FinishOrder(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.FinishOrderResponse{
		Success:        res.Success,
		Message:        res.Message,
		HadMedicine:    res.HadMedicine,
		ProofOfService: res.ProofOfService,
		CompletedAt:    res.CompletedAt,
	}
	if res.MedicineOrder != nil {
		mo := toMedicineOrderResponse(res.MedicineOrder)
		resp.MedicineOrder = &mo
	}
	c.JSON(http.StatusOK, resp)
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:              order.ID,
		PatientID:       order.PatientID,
		CaregiverID:     order.CaregiverID,
		AppointmentID:   order.AppointmentID,
		Status:          string(order.Status),
		Rate:            order.Rate,
		ProofOfService:  order.ProofOfService,
		MedicineOrderID: order.MedicineOrderID,
		CreatedAt:       order.CreatedAt,
		CompletedAt:     order.CompletedAt,
	}
}

func toMedicineOrderResponse(mo *model.MedicineOrder) dto.MedicineOrderResponse {
	lines := make([]dto.MedicineOrderLineResponse, 0, len(mo.Lines))
	for _, l := range mo.Lines {
		lines = append(lines, dto.MedicineOrderLineResponse{
			ID:           l.ID,
			MedicineID:   l.MedicineID,
			MedicineName: l.MedicineName,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			TotalPrice:   l.TotalPrice,
		})
	}
	return dto.MedicineOrderResponse{
		ID:                mo.ID,
		OrderID:           mo.OrderID,
		TotalQty:          mo.TotalQty,
		SubTotal:          mo.SubTotal,
		DeliveryFee:       mo.DeliveryFee,
		TotalPrice:        mo.TotalPrice,
		TotalPriceDisplay: money.FormatRupiah(mo.TotalPrice),
		IsPaid:            string(mo.IsPaid),
		Lines:             lines,
	}
}
