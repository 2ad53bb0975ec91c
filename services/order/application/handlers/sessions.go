package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/tablepos/pkg/errhttp"
	"github.com/ghuser/tablepos/pkg/httpx"
	pkgvalidator "github.com/ghuser/tablepos/pkg/validator"
	appsvcs "github.com/ghuser/tablepos/services/order/application/services"
)

// AddItemRequest is the request body for POST /api/sessions/{kind}/{slot}/items.
type AddItemRequest struct {
	MenuEntryID string `json:"menu_entry_id" validate:"required,max=32" example:"F1"`
} // @name AddItemRequest

// ChangeQuantityRequest is the request body for PATCH /api/sessions/{kind}/{slot}/items/{entryID}.
type ChangeQuantityRequest struct {
	Delta int `json:"delta" validate:"min=-1000,max=1000" example:"-1"`
} // @name ChangeQuantityRequest

// SessionHandler serves the order-building endpoints, one session per slot.
type SessionHandler struct {
	svc *appsvcs.Services
}

// NewSessionHandler returns a SessionHandler backed by the given services.
func NewSessionHandler(svc *appsvcs.Services) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// Open starts or resumes the session for a slot.
//
//	@Summary		Open session
//	@Description	Starts building a new order at a free slot, or resumes the session already open there
//	@Tags			sessions
//	@Produce		json
//	@Param			kind	path		string	true	"dine-in or takeaway"
//	@Param			slot	path		int		true	"slot number"
//	@Success		200		{object}	SessionResponse
//	@Failure		409		{object}	httpx.ErrorResponse
//	@Failure		422		{object}	httpx.ErrorResponse
//	@Failure		503		{object}	httpx.ErrorResponse
//	@Router			/api/sessions/{kind}/{slot} [post]
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	kind, n, err := slotParams(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	v, err := h.svc.Controller.OpenSession(r.Context(), kind, n)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSessionResponse(v))
}

// Get returns the open session for a slot.
//
//	@Summary	Get session
//	@Tags		sessions
//	@Produce	json
//	@Param		kind	path		string	true	"dine-in or takeaway"
//	@Param		slot	path		int		true	"slot number"
//	@Success	200		{object}	SessionResponse
//	@Failure	404		{object}	httpx.ErrorResponse
//	@Router		/api/sessions/{kind}/{slot} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, n, err := slotParams(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	v, err := h.svc.Controller.GetSession(kind, n)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSessionResponse(v))
}

// Abandon drops the session without saving.
//
//	@Summary	Abandon session
//	@Tags		sessions
//	@Param		kind	path	string	true	"dine-in or takeaway"
//	@Param		slot	path	int		true	"slot number"
//	@Success	204
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Failure	423	{object}	httpx.ErrorResponse
//	@Router		/api/sessions/{kind}/{slot} [delete]
func (h *SessionHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	kind, n, err := slotParams(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if err := h.svc.Controller.Abandon(r.Context(), kind, n); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem adds one unit of a menu entry.
//
//	@Summary	Add item
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Param		kind	path		string			true	"dine-in or takeaway"
//	@Param		slot	path		int				true	"slot number"
//	@Param		request	body		AddItemRequest	true	"menu entry to add"
//	@Success	200		{object}	SessionResponse
//	@Failure	400		{object}	httpx.ErrorResponse
//	@Failure	404		{object}	httpx.ErrorResponse
//	@Failure	422		{object}	httpx.ErrorResponse
//	@Failure	423		{object}	httpx.ErrorResponse
//	@Router		/api/sessions/{kind}/{slot}/items [post]
func (h *SessionHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	kind, n, err := slotParams(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[AddItemRequest](w, r)
	if !ok {
		return
	}
	v, err := h.svc.Controller.AddItem(r.Context(), kind, n, req.MenuEntryID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSessionResponse(v))
}

// ChangeQuantity adjusts a line's quantity; reaching zero removes it.
//
//	@Summary	Change quantity
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Param		kind	path		string					true	"dine-in or takeaway"
//	@Param		slot	path		int						true	"slot number"
//	@Param		entryID	path		string					true	"menu entry id"
//	@Param		request	body		ChangeQuantityRequest	true	"quantity delta"
//	@Success	200		{object}	SessionResponse
//	@Failure	404		{object}	httpx.ErrorResponse
//	@Failure	423		{object}	httpx.ErrorResponse
//	@Router		/api/sessions/{kind}/{slot}/items/{entryID} [patch]
func (h *SessionHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	kind, n, err := slotParams(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[ChangeQuantityRequest](w, r)
	if !ok {
		return
	}
	v, err := h.svc.Controller.ChangeQuantity(kind, n, chi.URLParam(r, "entryID"), req.Delta)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSessionResponse(v))
}

// RemoveItem drops a line.
//
//	@Summary	Remove item
//	@Tags		sessions
//	@Produce	json
//	@Param		kind	path		string	true	"dine-in or takeaway"
//	@Param		slot	path		int		true	"slot number"
//	@Param		entryID	path		string	true	"menu entry id"
//	@Success	200		{object}	SessionResponse
//	@Failure	404		{object}	httpx.ErrorResponse
//	@Failure	423		{object}	httpx.ErrorResponse
//	@Router		/api/sessions/{kind}/{slot}/items/{entryID} [delete]
func (h *SessionHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	kind, n, err := slotParams(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	v, err := h.svc.Controller.RemoveItem(kind, n, chi.URLParam(r, "entryID"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSessionResponse(v))
}

// Commit saves the session's order.
//
//	@Summary		Commit order
//	@Description	Saves a new order and marks the slot occupied, or saves an edited order in place
//	@Tags			sessions
//	@Produce		json
//	@Param			kind	path		string	true	"dine-in or takeaway"
//	@Param			slot	path		int		true	"slot number"
//	@Success		201		{object}	OrderResponse
//	@Failure		404		{object}	httpx.ErrorResponse
//	@Failure		422		{object}	httpx.ErrorResponse
//	@Failure		423		{object}	httpx.ErrorResponse
//	@Failure		503		{object}	httpx.ErrorResponse
//	@Router			/api/sessions/{kind}/{slot}/commit [post]
func (h *SessionHandler) Commit(w http.ResponseWriter, r *http.Request) {
	kind, n, err := slotParams(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	o, err := h.svc.Controller.Commit(r.Context(), kind, n)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toOrderResponse(o))
}
