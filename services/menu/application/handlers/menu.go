package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ghuser/tablepos/pkg/errhttp"
	"github.com/ghuser/tablepos/pkg/httpx"
	pkgvalidator "github.com/ghuser/tablepos/pkg/validator"
	appsvcs "github.com/ghuser/tablepos/services/menu/application/services"
	"github.com/ghuser/tablepos/services/menu/domain/models"
)

// MenuEntryResponse is the wire form of a catalog entry.
type MenuEntryResponse struct {
	ID        string          `json:"id"         example:"F1"`
	Name      string          `json:"name"       example:"Hamburger"`
	UnitPrice decimal.Decimal `json:"unit_price" swaggertype:"string" example:"12.99"`
	Category  string          `json:"category"   example:"food"`
} // @name MenuEntryResponse

// CreateMenuEntryRequest is the request body for POST /api/menu.
type CreateMenuEntryRequest struct {
	ID        string          `json:"id"         validate:"required,max=32" example:"F5"`
	Name      string          `json:"name"       validate:"required,min=1,max=255" example:"Veggie Wrap"`
	UnitPrice decimal.Decimal `json:"unit_price" swaggertype:"string" example:"8.50"`
	Category  string          `json:"category"   validate:"required,oneof=drinks food cocktails indian" example:"food"`
} // @name CreateMenuEntryRequest

func toMenuEntryResponse(e models.MenuEntry) MenuEntryResponse {
	return MenuEntryResponse{
		ID:        e.ID,
		Name:      e.Name,
		UnitPrice: e.UnitPrice,
		Category:  e.Category.String(),
	}
}

// MenuHandler serves the catalog endpoints.
type MenuHandler struct {
	svc *appsvcs.Services
}

// NewMenuHandler returns a MenuHandler backed by the given services.
func NewMenuHandler(svc *appsvcs.Services) *MenuHandler {
	return &MenuHandler{svc: svc}
}

// List returns catalog entries filtered by category and search text.
//
//	@Summary		List menu
//	@Description	Lists menu entries, optionally filtered by category and a case-insensitive id/name substring
//	@Tags			menu
//	@Produce		json
//	@Param			category	query		string	false	"drinks, food, cocktails, indian or all"
//	@Param			q			query		string	false	"search text"
//	@Success		200			{array}		MenuEntryResponse
//	@Failure		422			{object}	httpx.ErrorResponse
//	@Router			/api/menu [get]
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Catalog.Search(r.Context(), r.URL.Query().Get("q"), r.URL.Query().Get("category"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]MenuEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toMenuEntryResponse(e))
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Get returns one catalog entry.
//
//	@Summary	Get menu entry
//	@Tags		menu
//	@Produce	json
//	@Param		id	path		string	true	"menu entry id"
//	@Success	200	{object}	MenuEntryResponse
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Router		/api/menu/{id} [get]
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Catalog.Lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toMenuEntryResponse(e))
}

// Create adds a catalog entry.
//
//	@Summary	Create menu entry
//	@Tags		menu
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateMenuEntryRequest	true	"menu entry"
//	@Success	201		{object}	MenuEntryResponse
//	@Failure	400		{object}	httpx.ErrorResponse
//	@Failure	409		{object}	httpx.ErrorResponse
//	@Failure	422		{object}	httpx.ErrorResponse
//	@Router		/api/menu [post]
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateMenuEntryRequest](w, r)
	if !ok {
		return
	}
	e, err := h.svc.Catalog.Add(r.Context(), req.ID, req.Name, req.UnitPrice, req.Category)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toMenuEntryResponse(e))
}

// Delete removes a catalog entry.
//
//	@Summary	Delete menu entry
//	@Tags		menu
//	@Param		id	path	string	true	"menu entry id"
//	@Success	204
//	@Failure	404	{object}	httpx.ErrorResponse
//	@Router		/api/menu/{id} [delete]
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Catalog.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
