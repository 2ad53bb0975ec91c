package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/tablepos/pkg/errhttp"
	"github.com/ghuser/tablepos/pkg/httpx"
	appsvcs "github.com/ghuser/tablepos/services/order/application/services"
	orderdomain "github.com/ghuser/tablepos/services/order/domain"
	"github.com/ghuser/tablepos/services/order/domain/models"
)

// OrderHandler serves saved orders and occupancy.
type OrderHandler struct {
	svc *appsvcs.Services
}

// NewOrderHandler returns an OrderHandler backed by the given services.
func NewOrderHandler(svc *appsvcs.Services) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// List returns every saved order, most recent first.
//
//	@Summary		List orders
//	@Description	Returns the order history newest first; an unreachable store yields an empty list
//	@Tags			orders
//	@Produce		json
//	@Success		200	{array}	OrderResponse
//	@Router			/api/orders [get]
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders := h.svc.Controller.ListOrders(r.Context())
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Get returns one saved order.
//
//	@Summary	Get order
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"order id"
//	@Success	200	{object}	OrderResponse
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Router		/api/orders/{id} [get]
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Controller.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(o))
}

// Reopen loads a saved order into an edit session at its slot.
//
//	@Summary	Reopen order
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"order id"
//	@Success	200	{object}	SessionResponse
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Failure	409	{object}	httpx.ErrorResponse
//	@Router		/api/orders/{id}/reopen [post]
func (h *OrderHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Controller.Reopen(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSessionResponse(v))
}

// Settle marks an order paid and frees its slot.
//
//	@Summary	Settle order
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"order id"
//	@Success	200	{object}	OrderResponse
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Failure	409	{object}	httpx.ErrorResponse
//	@Failure	503	{object}	httpx.ErrorResponse
//	@Router		/api/orders/{id}/settle [post]
func (h *OrderHandler) Settle(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Controller.Settle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(o))
}

// Discard deletes an order and frees its slot.
//
//	@Summary	Discard order
//	@Tags		orders
//	@Param		id	path	string	true	"order id"
//	@Success	204
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Failure	503	{object}	httpx.ErrorResponse
//	@Router		/api/orders/{id} [delete]
func (h *OrderHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Controller.Discard(r.Context(), chi.URLParam(r, "id")); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear deletes every order and frees every slot.
//
//	@Summary	Clear orders
//	@Tags		orders
//	@Produce	json
//	@Success	200	{object}	ClearResponse
//	@Failure	503	{object}	httpx.ErrorResponse
//	@Router		/api/orders [delete]
func (h *OrderHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.Controller.ClearOrders(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	httpx.JSON(w, http.StatusOK, ClearResponse{Removed: ids})
}

// Occupancy lists the occupied slots of a kind.
//
//	@Summary	List occupied slots
//	@Tags		occupancy
//	@Produce	json
//	@Param		kind	path		string	true	"dine-in or takeaway"
//	@Success	200		{object}	OccupancyResponse
//	@Failure	422		{object}	httpx.ErrorResponse
//	@Router		/api/occupancy/{kind} [get]
func (h *OrderHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	kind, err := models.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		errhttp.WriteError(w, fmt.Errorf("%w: %w", orderdomain.ErrInvalidSlot, err))
		return
	}
	occupied, err := h.svc.Controller.ListOccupiedSlots(kind)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, OccupancyResponse{
		Kind:     kind.String(),
		Capacity: h.svc.Controller.SlotLimit(kind),
		Occupied: occupied,
	})
}

// Reconcile aligns every occupancy flag with the unpaid orders.
//
//	@Summary	Reconcile occupancy
//	@Tags		occupancy
//	@Produce	json
//	@Success	200	{object}	ReconcileResponse
//	@Failure	503	{object}	httpx.ErrorResponse
//	@Router		/api/occupancy/reconcile [post]
func (h *OrderHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Controller.Reconcile(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ReconcileResponse{
		Raised:   toSlotResponses(res.Raised),
		Released: toSlotResponses(res.Released),
	})
}
