package dto

// MedicineRequest is the "add new medicine" form.
type MedicineRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Price    string `json:"price"`
	ExpDate  string `json:"exp_date"`
	PhotoURL string `json:"photo_url,omitempty"`
	OrderID  string `json:"order_id,omitempty"`
}

// MedicineResponse describes a catalog item.
type MedicineResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Price        int64   `json:"price"`
	PriceDisplay string  `json:"price_display"`
	PhotoURL     *string `json:"photo_url,omitempty"`
	ExpDate      *string `json:"exp_date,omitempty"`
}

// MedicineOrderLineResponse is one line of a medicine order.
type MedicineOrderLineResponse struct {
	ID           string `json:"id"`
	MedicineID   string `json:"medicine_id"`
	MedicineName string `json:"medicine_name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unit_price"`
	TotalPrice   int64  `json:"total_price"`
}

// MedicineOrderResponse describes a medicine order with its lines.
type MedicineOrderResponse struct {
	ID                string                      `json:"id"`
	OrderID           string                      `json:"order_id"`
	TotalQty          int                         `json:"total_qty"`
	SubTotal          int64                       `json:"sub_total"`
	DeliveryFee       int64                       `json:"delivery_fee"`
	TotalPrice        int64                       `json:"total_price"`
	TotalPriceDisplay string                      `json:"total_price_display"`
	IsPaid            string                      `json:"is_paid"`
	Lines             []MedicineOrderLineResponse `json:"lines"`
}
