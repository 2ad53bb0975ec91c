package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	appsvcs "github.com/ghuser/tablepos/services/order/application/services"
	orderdomain "github.com/ghuser/tablepos/services/order/domain"
	"github.com/ghuser/tablepos/services/order/domain/models"
)

// LineItemResponse is one order line.
type LineItemResponse struct {
	MenuEntryID string          `json:"menu_entry_id" example:"F1"`
	Name        string          `json:"name"          example:"Hamburger"`
	UnitPrice   decimal.Decimal `json:"unit_price"    swaggertype:"string" example:"12.99"`
	Quantity    int             `json:"quantity"      example:"2"`
	Category    string          `json:"category"      example:"food"`
	Subtotal    decimal.Decimal `json:"subtotal"      swaggertype:"string" example:"25.98"`
} // @name LineItemResponse

// SlotResponse identifies a table or takeaway number.
type SlotResponse struct {
	Kind   string `json:"kind"   example:"dine-in"`
	Number int    `json:"number" example:"3"`
} // @name SlotResponse

// SessionResponse is the state of an order being built or edited.
type SessionResponse struct {
	Slot    SlotResponse       `json:"slot"`
	OrderID string             `json:"order_id,omitempty" example:"1718031234567890"`
	Editing bool               `json:"editing"`
	Pending bool               `json:"pending"`
	Items   []LineItemResponse `json:"items"`
	Total   decimal.Decimal    `json:"total" swaggertype:"string" example:"30.97"`
} // @name SessionResponse

// OrderResponse is a saved order.
type OrderResponse struct {
	ID        string             `json:"id"         example:"1718031234567890"`
	Slot      SlotResponse       `json:"slot"`
	Items     []LineItemResponse `json:"items"`
	Total     decimal.Decimal    `json:"total"      swaggertype:"string" example:"30.97"`
	CreatedAt time.Time          `json:"created_at" example:"2024-06-10T14:53:54.56789Z"`
	Paid      bool               `json:"paid"`
} // @name OrderResponse

// OccupancyResponse lists the occupied numbers of one slot kind.
type OccupancyResponse struct {
	Kind     string `json:"kind"     example:"dine-in"`
	Capacity int    `json:"capacity" example:"6"`
	Occupied []int  `json:"occupied" example:"1,3"`
} // @name OccupancyResponse

// ReconcileResponse lists the flags a reconcile pass changed.
type ReconcileResponse struct {
	Raised   []SlotResponse `json:"raised"`
	Released []SlotResponse `json:"released"`
} // @name ReconcileResponse

// ClearResponse lists the ids removed by a bulk clear.
type ClearResponse struct {
	Removed []string `json:"removed"`
} // @name ClearResponse

func toSlotResponse(s models.Slot) SlotResponse {
	return SlotResponse{Kind: s.Kind.String(), Number: s.Number}
}

func toSlotResponses(slots []models.Slot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, toSlotResponse(s))
	}
	return out
}

func toLineItemResponses(items []models.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, 0, len(items))
	for _, li := range items {
		out = append(out, LineItemResponse{
			MenuEntryID: li.MenuEntryID,
			Name:        li.Name,
			UnitPrice:   li.UnitPrice,
			Quantity:    li.Quantity,
			Category:    li.Category,
			Subtotal:    li.Subtotal(),
		})
	}
	return out
}

func toSessionResponse(v appsvcs.SessionView) SessionResponse {
	return SessionResponse{
		Slot:    toSlotResponse(v.Slot),
		OrderID: v.OrderID,
		Editing: v.Editing,
		Pending: v.Pending,
		Items:   toLineItemResponses(v.Items),
		Total:   v.Total,
	}
}

func toOrderResponse(o *models.Order) OrderResponse {
	return OrderResponse{
		ID:        o.ID,
		Slot:      toSlotResponse(o.Slot),
		Items:     toLineItemResponses(o.Items),
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
		Paid:      o.Paid,
	}
}

// slotParams reads {kind} and {slot} from the route.
func slotParams(r *http.Request) (models.Kind, int, error) {
	kind, err := models.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", orderdomain.ErrInvalidSlot, err)
	}
	n, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		return "", 0, fmt.Errorf("%w: slot number %q", orderdomain.ErrInvalidSlot, chi.URLParam(r, "slot"))
	}
	return kind, n, nil
}
