package balance

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rwaseem/divvy/internal/ledger"
	"github.com/rwaseem/divvy/pkg/middleware"
	"github.com/rwaseem/divvy/pkg/response"
)

// BalancesResponse wraps the balance entries for one scope.
type BalancesResponse struct {
	Scope   string         `json:"scope"` // "group" or "personal"
	GroupID *int64         `json:"group_id,omitempty"`
	Entries []ledger.Entry `json:"entries"`
}

// Handler handles HTTP requests for balance reads
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/group/{groupId}", h.GroupBalances)
	r.Get("/personal", h.PersonalBalances)

	return r
}

// GroupBalances handles GET /balances/group/{groupId}
// @Summary      Group balances
// @Description  Net pairwise debts (debtor, creditor, amount) across all of a group's expenses
// @Tags         balances
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=BalancesResponse}
// @Router       /balances/group/{groupId} [get]
func (h *Handler) GroupBalances(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	entries, err := h.service.GroupBalances(r.Context(), groupID)
	if err != nil {
		response.InternalError(w, "Failed to compute balances")
		return
	}

	response.JSON(w, http.StatusOK, &BalancesResponse{
		Scope:   "group",
		GroupID: &groupID,
		Entries: entries,
	})
}

// PersonalBalances handles GET /balances/personal
// @Summary      Personal balances
// @Description  Net pairwise debts across the requesting user's non-group expenses
// @Tags         balances
// @Produce      json
// @Success      200 {object} response.APIResponse{data=BalancesResponse}
// @Router       /balances/personal [get]
func (h *Handler) PersonalBalances(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User identity required")
		return
	}

	entries, err := h.service.PersonalBalances(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to compute balances")
		return
	}

	response.JSON(w, http.StatusOK, &BalancesResponse{
		Scope:   "personal",
		Entries: entries,
	})
}
