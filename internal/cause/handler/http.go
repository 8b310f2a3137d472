// Package handler exposes the cause endpoints.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"orghub/backend/internal/cause/domain"
	"orghub/backend/internal/cause/repository"
	"orghub/backend/internal/server/guard"
	"orghub/backend/internal/server/httputil"
)

// Handler serves the cause routes. Reading needs membership, creating needs
// moderator, deleting is a high-risk admin operation.
type Handler struct {
	repo repository.Repository
}

func NewHandler(repo repository.Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(router *mux.Router, member, moderator, admin func(http.Handler) http.Handler) {
	router.Handle("/orgs/{orgID}/causes", member(http.HandlerFunc(h.list))).Methods(http.MethodGet)
	router.Handle("/orgs/{orgID}/causes", moderator(http.HandlerFunc(h.create))).Methods(http.MethodPost)
	router.Handle("/orgs/{orgID}/causes/{id}", admin(http.HandlerFunc(h.delete))).Methods(http.MethodDelete)
}

type causeResponse struct {
	ID        string    `json:"id"`
	OrgID     int64     `json:"org_id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	orgID, _ := strconv.ParseInt(mux.Vars(r)["orgID"], 10, 64)
	causes, err := h.repo.ListByOrg(r.Context(), orgID)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	out := make([]causeResponse, 0, len(causes))
	for _, c := range causes {
		out = append(out, causeResponse{ID: c.ID, OrgID: c.OrgID, Title: c.Title, Summary: c.Summary, CreatedAt: c.CreatedAt})
	}
	httputil.RespondJSON(w, http.StatusOK, out)
}

type createCauseRequest struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	orgID, _ := strconv.ParseInt(mux.Vars(r)["orgID"], 10, 64)
	userID, _ := guard.GetUserID(r.Context())
	var req createCauseRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	c := &domain.Cause{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		Title:     req.Title,
		Summary:   req.Summary,
		CreatedBy: userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.repo.Create(r.Context(), c); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "create failed")
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, causeResponse{ID: c.ID, OrgID: c.OrgID, Title: c.Title, Summary: c.Summary, CreatedAt: c.CreatedAt})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	orgID, _ := strconv.ParseInt(mux.Vars(r)["orgID"], 10, 64)
	id := mux.Vars(r)["id"]
	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if c == nil || c.OrgID != orgID {
		httputil.RespondError(w, http.StatusNotFound, "cause not found")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
