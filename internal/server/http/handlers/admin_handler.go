package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/pkg/money"
	"github.com/polkiloo/homecare/internal/server/http/dto"
)

// AdminHandler serves the administrator console.
type AdminHandler struct {
	facade AdminFacade
}

func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// Users handles GET /api/admin/users?role=&approval=.
func (h *AdminHandler) Users(c *gin.Context) {
	filter := model.UserFilter{
		Role:     model.Role(c.Query("role")),
		Approval: model.ApprovalStatus(c.Query("approval")),
	}
	users, err := h.facade.AdminUsers(c.Request.Context(), CurrentUserID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		response = append(response, *toUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, response)
}

// Review handles POST /api/admin/users/:id/approval.
func (h *AdminHandler) Review(c *gin.Context) {
	var req dto.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	usr, err := h.facade.ReviewCaregiver(c.Request.Context(), CurrentUserID(c), c.Param("id"), model.ApprovalStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(usr))
}

// Update handles PATCH /api/admin/users/:id.
func (h *AdminHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid user payload")
		return
	}
	update := model.UserUpdate{Login: req.Login, Role: model.Role(req.Role)}
	usr, err := h.facade.UpdateUser(c.Request.Context(), CurrentUserID(c), c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(usr))
}

// Orders handles GET /api/admin/orders.
func (h *AdminHandler) Orders(c *gin.Context) {
	orders, err := h.facade.AdminOrders(c.Request.Context(), CurrentUserID(c))
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

// Order handles GET /api/admin/orders/:id.
func (h *AdminHandler) Order(c *gin.Context) {
	detail, err := h.facade.AdminOrder(c.Request.Context(), CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.AdminOrderResponse{
		Order:     toOrderResponse(detail.Order),
		Patient:   toUserResponse(detail.Patient),
		Caregiver: toUserResponse(detail.Caregiver),
	}
	if detail.MedicineOrder != nil {
		mo := toMedicineOrderResponse(detail.MedicineOrder)
		resp.MedicineOrder = &mo
		resp.PaymentState = string(detail.PaymentState)
	}
	if s := detail.Payment; s != nil {
		resp.Payment = &dto.PaymentSessionResponse{
			ID:             s.ID,
			LineIDs:        s.LineIDs,
			Amount:         s.Amount,
			AmountDisplay:  money.FormatRupiah(s.Amount),
			VirtualAccount: s.VirtualAccount,
			ExpiresAt:      s.ExpiresAt,
			ConfirmedAt:    s.ConfirmedAt,
			FinalizedAt:    s.FinalizedAt,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Evidence handles GET /api/admin/orders/:id/evidence and streams the stored proof of service.
func (h *AdminHandler) Evidence(c *gin.Context) {
	file, err := h.facade.OrderEvidence(c.Request.Context(), CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func toUserResponse(usr *model.User) *dto.UserResponse {
	if usr == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        usr.ID,
		Login:     usr.Login,
		Role:      string(usr.Role),
		Approval:  string(usr.Approval),
		CreatedAt: usr.CreatedAt,
	}
}
