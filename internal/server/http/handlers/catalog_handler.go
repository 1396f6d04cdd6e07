package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/homecare/internal/domain/model"
	"github.com/polkiloo/homecare/internal/pkg/money"
	"github.com/polkiloo/homecare/internal/server/http/dto"
)

// CatalogHandler serves the medicine catalog.
type CatalogHandler struct {
	facade CatalogFacade
}

func NewCatalogHandler(facade CatalogFacade) *CatalogHandler {
	return &CatalogHandler{facade: facade}
}

// List handles GET /api/medicines?q=.
func (h *CatalogHandler) List(c *gin.Context) {
	medicines, err := h.facade.Medicines(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.MedicineResponse, 0, len(medicines))
	for _, m := range medicines {
		resp = append(resp, toMedicineResponse(m))
	}
	c.JSON(http.StatusOK, resp)
}

// Create handles POST /api/medicines.
func (h *CatalogHandler) Create(c *gin.Context) {
	var req dto.MedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed medicine form")
		return
	}

	medicine, err := h.facade.CreateMedicine(c.Request.Context(), CurrentUserID(c), req.OrderID, model.MedicineInput{
		Name:     req.Name,
		Type:     req.Type,
		Price:    req.Price,
		ExpDate:  req.ExpDate,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMedicineResponse(*medicine))
}

func toMedicineResponse(m model.Medicine) dto.MedicineResponse {
	resp := dto.MedicineResponse{
		ID:           m.ID,
		Name:         m.Name,
		Type:         string(m.Type),
		Price:        m.Price,
		PriceDisplay: money.FormatRupiah(m.Price),
		PhotoURL:     m.PhotoURL,
	}
	if m.ExpDate != nil {
		exp := m.ExpDate.Format("2006-01-02")
		resp.ExpDate = &exp
	}
	return resp
}
