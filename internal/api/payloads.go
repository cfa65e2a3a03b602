package api

import (
	"time"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

type orderLinePayload struct {
	ProductID      string `json:"product_id,omitempty"`
	Kind           string `json:"kind"`
	Name           string `json:"name"`
	Category       string `json:"category,omitempty"`
	Qty            int32  `json:"qty"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
	TotalMinor     int64  `json:"total_minor"`
	WeightGrams    int32  `json:"weight_grams,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
}

type orderPayload struct {
	ID            string             `json:"id"`
	OrderNumber   string             `json:"order_number"`
	CustomerID    string             `json:"customer_id"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"payment_method"`
	PaymentStatus string             `json:"payment_status"`
	Lines         []orderLinePayload `json:"lines"`
	Address       addressPayload     `json:"address"`
	ContactEmail  string             `json:"contact_email,omitempty"`
	ContactPhone  string             `json:"contact_phone,omitempty"`
	SubtotalMinor int64              `json:"subtotal_minor"`
	ShippingMinor int64              `json:"shipping_minor"`
	TaxMinor      int64              `json:"tax_minor"`
	TotalMinor    int64              `json:"total_minor"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

func orderToPayload(order domain.Order) orderPayload {
	payload := orderPayload{
		ID:            order.ID,
		OrderNumber:   order.Number,
		CustomerID:    order.CustomerID,
		Status:        string(order.Status),
		PaymentMethod: string(order.PaymentMethod),
		PaymentStatus: string(order.PaymentStatus),
		Address: addressPayload{
			Name:       order.Address.Name,
			Line1:      order.Address.Line1,
			Line2:      order.Address.Line2,
			City:       order.Address.City,
			State:      order.Address.State,
			PostalCode: order.Address.PostalCode,
			Country:    order.Address.Country,
		},
		ContactEmail:  order.Contact.Email,
		ContactPhone:  order.Contact.Phone,
		SubtotalMinor: order.SubtotalMinor,
		ShippingMinor: order.ShippingMinor,
		TaxMinor:      order.TaxMinor,
		TotalMinor:    order.TotalMinor,
		Notes:         order.Notes,
		CreatedAt:     order.CreatedAt,
	}
	for _, line := range order.Lines {
		payload.Lines = append(payload.Lines, orderLinePayload{
			ProductID:      line.ProductID,
			Kind:           string(line.Kind),
			Name:           line.Name,
			Category:       line.Category,
			Qty:            line.Qty,
			UnitPriceMinor: line.UnitPriceMinor,
			TotalMinor:     line.TotalMinor,
			WeightGrams:    line.WeightGrams,
			ImageURL:       line.ImageURL,
		})
	}
	return payload
}

type movementPayload struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	Type          string    `json:"type"`
	QtyDelta      int32     `json:"qty_delta"`
	PreviousStock int32     `json:"previous_stock"`
	NewStock      int32     `json:"new_stock"`
	Reason        string    `json:"reason,omitempty"`
	ReferenceID   string    `json:"reference_id,omitempty"`
	ActorUserID   string    `json:"actor_user_id,omitempty"`
	ActorName     string    `json:"actor_name,omitempty"`
	Automated     bool      `json:"automated"`
	CreatedAt     time.Time `json:"created_at"`
}

func movementsToPayload(movements []domain.StockMovement) []movementPayload {
	payload := make([]movementPayload, 0, len(movements))
	for _, m := range movements {
		payload = append(payload, movementPayload{
			ID:            m.ID,
			ProductID:     m.ProductID,
			Type:          string(m.Type),
			QtyDelta:      m.QtyDelta,
			PreviousStock: m.PreviousStock,
			NewStock:      m.NewStock,
			Reason:        m.Reason,
			ReferenceID:   m.ReferenceID,
			ActorUserID:   m.Actor.UserID,
			ActorName:     m.Actor.Name,
			Automated:     m.Automated,
			CreatedAt:     m.CreatedAt,
		})
	}
	return payload
}
