package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
	"github.com/3FinityAI/fogandleaf-sub000/internal/service/placement"
	"github.com/3FinityAI/fogandleaf-sub000/internal/service/stock"
)

// Handlers — HTTP-обработчики ядра: размещение заказов, корректировки
// стока и чтение. Разбор и маппинг закрытых вариантов позиций происходит
// здесь, на границе, а не в глубине логики размещения.
type Handlers struct {
	placement *placement.Service
	adjuster  *stock.Adjuster
	orders    domain.OrderReader
	movements domain.MovementReader
	logger    *log.Entry
}

// NewHandlers создаёт набор обработчиков.
func NewHandlers(
	placementSvc *placement.Service,
	adjuster *stock.Adjuster,
	orders domain.OrderReader,
	movements domain.MovementReader,
	logger *log.Entry,
) *Handlers {
	if logger == nil {
		logger = log.New().WithField("component", "api")
	}
	return &Handlers{
		placement: placementSvc,
		adjuster:  adjuster,
		orders:    orders,
		movements: movements,
		logger:    logger,
	}
}

type addressPayload struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type linePayload struct {
	ProductID      string `json:"product_id,omitempty"`
	Qty            int32  `json:"qty"`
	Name           string `json:"name,omitempty"`
	UnitPriceMinor int64  `json:"unit_price_minor,omitempty"`
	Category       string `json:"category,omitempty"`
	WeightGrams    int32  `json:"weight_grams,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
}

type placeOrderPayload struct {
	CustomerID    string         `json:"customer_id"`
	Lines         []linePayload  `json:"lines"`
	Address       addressPayload `json:"address"`
	ContactEmail  string         `json:"contact_email"`
	ContactPhone  string         `json:"contact_phone"`
	PaymentMethod string         `json:"payment_method"`
	ShippingMinor int64          `json:"shipping_minor"`
	TaxMinor      int64          `json:"tax_minor"`
	Notes         string         `json:"notes,omitempty"`
}

type placeOrderResponse struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	TotalMinor  int64  `json:"total_minor"`
}

// PlaceOrder обрабатывает POST /orders.
func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var payload placeOrderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "validation", "invalid JSON body")
		return
	}

	req := placement.PlaceOrderRequest{
		CustomerID: payload.CustomerID,
		Address: domain.ShippingAddress{
			Name:       payload.Address.Name,
			Line1:      payload.Address.Line1,
			Line2:      payload.Address.Line2,
			City:       payload.Address.City,
			State:      payload.Address.State,
			PostalCode: payload.Address.PostalCode,
			Country:    payload.Address.Country,
		},
		Contact: domain.Contact{
			Email: payload.ContactEmail,
			Phone: payload.ContactPhone,
		},
		PaymentMethod: domain.PaymentMethod(payload.PaymentMethod),
		ShippingMinor: payload.ShippingMinor,
		TaxMinor:      payload.TaxMinor,
		Notes:         payload.Notes,
	}
	// Позиция с product_id — каталожная; без него — ad-hoc со своим снимком.
	for _, line := range payload.Lines {
		in := placement.LineInput{
			Qty:            line.Qty,
			Name:           line.Name,
			UnitPriceMinor: line.UnitPriceMinor,
			Category:       line.Category,
			WeightGrams:    line.WeightGrams,
			ImageURL:       line.ImageURL,
		}
		if line.ProductID != "" {
			in.Kind = domain.LineKindCatalog
			in.ProductID = line.ProductID
		} else {
			in.Kind = domain.LineKindAdHoc
		}
		req.Lines = append(req.Lines, in)
	}

	result, err := h.placement.PlaceOrder(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeOrderResponse{
		OrderID:     result.OrderID,
		OrderNumber: result.OrderNumber,
		Status:      string(result.Status),
		TotalMinor:  result.TotalMinor,
	})
}

type adjustmentPayload struct {
	ProductID   string `json:"product_id"`
	Op          string `json:"op"`
	Quantity    int32  `json:"quantity"`
	Reason      string `json:"reason,omitempty"`
	ActorUserID string `json:"actor_user_id,omitempty"`
	ActorName   string `json:"actor_name,omitempty"`
}

func (p adjustmentPayload) toAdjustment() stock.Adjustment {
	return stock.Adjustment{
		ProductID: p.ProductID,
		Op:        stock.AdjustmentOp(p.Op),
		Quantity:  p.Quantity,
		Reason:    p.Reason,
		Actor:     domain.Actor{UserID: p.ActorUserID, Name: p.ActorName},
	}
}

type adjustmentResponse struct {
	ProductID     string `json:"product_id"`
	PreviousStock int32  `json:"previous_stock"`
	NewStock      int32  `json:"new_stock"`
}

// AdjustStock обрабатывает POST /inventory/adjustments.
func (h *Handlers) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var payload adjustmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "validation", "invalid JSON body")
		return
	}

	level, err := h.adjuster.Adjust(r.Context(), payload.toAdjustment())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, adjustmentResponse{
		ProductID:     payload.ProductID,
		PreviousStock: level.Previous,
		NewStock:      level.New,
	})
}

type bulkAdjustPayload struct {
	Items []adjustmentPayload `json:"items"`
}

type bulkItemResponse struct {
	ProductID     string `json:"product_id"`
	Op            string `json:"op"`
	OK            bool   `json:"ok"`
	PreviousStock int32  `json:"previous_stock,omitempty"`
	NewStock      int32  `json:"new_stock,omitempty"`
	Error         string `json:"error,omitempty"`
}

type bulkAdjustResponse struct {
	Items        []bulkItemResponse `json:"items"`
	SuccessCount int                `json:"success_count"`
	FailureCount int                `json:"failure_count"`
}

// BulkAdjustStock обрабатывает POST /inventory/adjustments/bulk.
// Намеренно не all-or-nothing: отказ одной позиции не откатывает остальные.
func (h *Handlers) BulkAdjustStock(w http.ResponseWriter, r *http.Request) {
	var payload bulkAdjustPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "validation", "invalid JSON body")
		return
	}
	if len(payload.Items) == 0 {
		writeErrorMessage(w, http.StatusBadRequest, "validation", "items must not be empty")
		return
	}

	adjustments := make([]stock.Adjustment, 0, len(payload.Items))
	for _, item := range payload.Items {
		adjustments = append(adjustments, item.toAdjustment())
	}

	result := h.adjuster.AdjustBulk(r.Context(), adjustments)

	resp := bulkAdjustResponse{
		Items:        make([]bulkItemResponse, 0, len(result.Items)),
		SuccessCount: result.SuccessCount,
		FailureCount: result.FailureCount,
	}
	for _, item := range result.Items {
		resp.Items = append(resp.Items, bulkItemResponse{
			ProductID:     item.ProductID,
			Op:            string(item.Op),
			OK:            item.OK,
			PreviousStock: item.Level.Previous,
			NewStock:      item.Level.New,
			Error:         item.Error,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetOrder обрабатывает GET /orders/{id}.
func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/orders/")
	if id == "" || strings.Contains(id, "/") {
		writeErrorMessage(w, http.StatusNotFound, "not_found", "order not found")
		return
	}

	order, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orderToPayload(order))
}

// ListCustomerOrders обрабатывает GET /customers/{id}/orders.
func (h *Handlers) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/customers/")
	customerID, ok := strings.CutSuffix(rest, "/orders")
	if !ok || customerID == "" || strings.Contains(customerID, "/") {
		writeErrorMessage(w, http.StatusNotFound, "not_found", "unknown resource")
		return
	}

	limit := parseLimit(r, 50)
	orders, err := h.orders.ListByCustomer(r.Context(), customerID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		payload = append(payload, orderToPayload(order))
	}
	writeJSON(w, http.StatusOK, payload)
}

// ListProductMovements обрабатывает GET /products/{id}/movements.
func (h *Handlers) ListProductMovements(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/products/")
	productID, ok := strings.CutSuffix(rest, "/movements")
	if !ok || productID == "" || strings.Contains(productID, "/") {
		writeErrorMessage(w, http.StatusNotFound, "not_found", "unknown resource")
		return
	}

	limit := parseLimit(r, 100)
	movements, err := h.movements.ListByProduct(r.Context(), productID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, movementsToPayload(movements))
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
