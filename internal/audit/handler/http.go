// Package handler exposes the audit log endpoints.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"orghub/backend/internal/audit/repository"
	"orghub/backend/internal/server/httputil"
)

// Handler serves the audit routes. Reading the trail is an admin operation.
type Handler struct {
	repo repository.Repository
}

func NewHandler(repo repository.Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(router *mux.Router, admin func(http.Handler) http.Handler) {
	router.Handle("/orgs/{orgID}/audit", admin(http.HandlerFunc(h.list))).Methods(http.MethodGet)
}

type auditResponse struct {
	ID        string    `json:"id"`
	OrgID     int64     `json:"org_id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	orgID, _ := strconv.ParseInt(mux.Vars(r)["orgID"], 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.repo.ListByOrg(r.Context(), orgID, limit)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	out := make([]auditResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditResponse{
			ID:        e.ID,
			OrgID:     e.OrgID,
			UserID:    e.UserID,
			Action:    e.Action,
			Resource:  e.Resource,
			IP:        e.IP,
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt,
		})
	}
	httputil.RespondJSON(w, http.StatusOK, out)
}
