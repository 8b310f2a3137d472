// Package handler exposes the document endpoints.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"orghub/backend/internal/document/domain"
	"orghub/backend/internal/document/repository"
	"orghub/backend/internal/server/guard"
	"orghub/backend/internal/server/httputil"
)

// Handler serves the document routes. Reading needs membership, uploading
// needs moderator, deleting is a high-risk admin operation.
type Handler struct {
	repo repository.Repository
}

func NewHandler(repo repository.Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(router *mux.Router, member, moderator, admin func(http.Handler) http.Handler) {
	router.Handle("/orgs/{orgID}/documents", member(http.HandlerFunc(h.list))).Methods(http.MethodGet)
	router.Handle("/orgs/{orgID}/documents", moderator(http.HandlerFunc(h.create))).Methods(http.MethodPost)
	router.Handle("/orgs/{orgID}/documents/{id}", admin(http.HandlerFunc(h.delete))).Methods(http.MethodDelete)
}

type documentResponse struct {
	ID        string    `json:"id"`
	OrgID     int64     `json:"org_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	orgID, _ := strconv.ParseInt(mux.Vars(r)["orgID"], 10, 64)
	docs, err := h.repo.ListByOrg(r.Context(), orgID)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	out := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentResponse{ID: d.ID, OrgID: d.OrgID, Title: d.Title, URL: d.URL, CreatedAt: d.CreatedAt})
	}
	httputil.RespondJSON(w, http.StatusOK, out)
}

type createDocumentRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	orgID, _ := strconv.ParseInt(mux.Vars(r)["orgID"], 10, 64)
	userID, _ := guard.GetUserID(r.Context())
	var req createDocumentRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	d := &domain.Document{
		ID:         uuid.New().String(),
		OrgID:      orgID,
		Title:      req.Title,
		URL:        req.URL,
		UploadedBy: userID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := d.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.repo.Create(r.Context(), d); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "create failed")
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, documentResponse{ID: d.ID, OrgID: d.OrgID, Title: d.Title, URL: d.URL, CreatedAt: d.CreatedAt})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	orgID, _ := strconv.ParseInt(mux.Vars(r)["orgID"], 10, 64)
	id := mux.Vars(r)["id"]
	d, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if d == nil || d.OrgID != orgID {
		httputil.RespondError(w, http.StatusNotFound, "document not found")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
