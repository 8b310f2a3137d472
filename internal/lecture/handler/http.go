// Package handler exposes the lecture endpoints.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"orghub/backend/internal/lecture/domain"
	"orghub/backend/internal/lecture/repository"
	"orghub/backend/internal/server/guard"
	"orghub/backend/internal/server/httputil"
)

// Handler serves the lecture routes. Reading needs membership, creating
// needs moderator, deleting is a high-risk admin operation.
type Handler struct {
	repo repository.Repository
}

func NewHandler(repo repository.Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(router *mux.Router, member, moderator, admin func(http.Handler) http.Handler) {
	router.Handle("/orgs/{orgID}/lectures", member(http.HandlerFunc(h.list))).Methods(http.MethodGet)
	router.Handle("/orgs/{orgID}/lectures", moderator(http.HandlerFunc(h.create))).Methods(http.MethodPost)
	router.Handle("/orgs/{orgID}/lectures/{id}", admin(http.HandlerFunc(h.delete))).Methods(http.MethodDelete)
}

type lectureResponse struct {
	ID        string     `json:"id"`
	OrgID     int64      `json:"org_id"`
	Title     string     `json:"title"`
	Speaker   string     `json:"speaker"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toResponse(l *domain.Lecture) lectureResponse {
	return lectureResponse{
		ID:        l.ID,
		OrgID:     l.OrgID,
		Title:     l.Title,
		Speaker:   l.Speaker,
		StartsAt:  l.StartsAt,
		CreatedAt: l.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	orgID, _ := strconv.ParseInt(mux.Vars(r)["orgID"], 10, 64)
	lectures, err := h.repo.ListByOrg(r.Context(), orgID)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	out := make([]lectureResponse, 0, len(lectures))
	for i := range lectures {
		out = append(out, toResponse(&lectures[i]))
	}
	httputil.RespondJSON(w, http.StatusOK, out)
}

type createLectureRequest struct {
	Title    string     `json:"title"`
	Speaker  string     `json:"speaker"`
	StartsAt *time.Time `json:"starts_at"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	orgID, _ := strconv.ParseInt(mux.Vars(r)["orgID"], 10, 64)
	userID, _ := guard.GetUserID(r.Context())
	var req createLectureRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	l := &domain.Lecture{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		Title:     req.Title,
		Speaker:   req.Speaker,
		StartsAt:  req.StartsAt,
		CreatedBy: userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.repo.Create(r.Context(), l); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "create failed")
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, toResponse(l))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	orgID, _ := strconv.ParseInt(mux.Vars(r)["orgID"], 10, 64)
	id := mux.Vars(r)["id"]
	l, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if l == nil || l.OrgID != orgID {
		httputil.RespondError(w, http.StatusNotFound, "lecture not found")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
