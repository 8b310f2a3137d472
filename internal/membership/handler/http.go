// Package handler exposes the membership endpoints.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"orghub/backend/internal/authz"
	"orghub/backend/internal/membership/domain"
	"orghub/backend/internal/membership/service"
	"orghub/backend/internal/server/guard"
	"orghub/backend/internal/server/httputil"
)

// Handler serves the membership routes.
type Handler struct {
	memberships *service.MembershipService
}

func NewHandler(memberships *service.MembershipService) *Handler {
	return &Handler{memberships: memberships}
}

// RegisterRoutes mounts the membership routes. Enrollment and listing one's
// own memberships need only authentication; everything else is scoped to an
// organization with the required role.
func (h *Handler) RegisterRoutes(router *mux.Router, authenticated, moderator, admin, adminHighRisk func(http.Handler) http.Handler) {
	router.Handle("/me/memberships", authenticated(http.HandlerFunc(h.listOwn))).Methods(http.MethodGet)
	router.Handle("/orgs/{orgID}/memberships", authenticated(http.HandlerFunc(h.enroll))).Methods(http.MethodPost)
	router.Handle("/orgs/{orgID}/memberships", moderator(http.HandlerFunc(h.listForOrg))).Methods(http.MethodGet)
	router.Handle("/orgs/{orgID}/memberships/{userID}/verify", moderator(http.HandlerFunc(h.verify))).Methods(http.MethodPost)
	router.Handle("/orgs/{orgID}/memberships/{userID}/role", admin(http.HandlerFunc(h.changeRole))).Methods(http.MethodPut)
	router.Handle("/orgs/{orgID}/memberships/{userID}", adminHighRisk(http.HandlerFunc(h.remove))).Methods(http.MethodDelete)
}

type membershipResponse struct {
	UserID    string    `json:"user_id"`
	OrgID     int64     `json:"org_id"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(m *domain.Membership) membershipResponse {
	return membershipResponse{
		UserID:    m.UserID,
		OrgID:     m.OrgID,
		Role:      m.Role.String(),
		Verified:  m.Verified,
		CreatedAt: m.CreatedAt,
	}
}

func (h *Handler) listOwn(w http.ResponseWriter, r *http.Request) {
	userID, ok := guard.GetUserID(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	ms, err := h.memberships.ListForUser(r.Context(), userID)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	out := make([]membershipResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toResponse(m))
	}
	httputil.RespondJSON(w, http.StatusOK, out)
}

// enroll is self-service: the caller joins the organization as an unverified
// member. Requires authentication but no existing standing in the
// organization.
func (h *Handler) enroll(w http.ResponseWriter, r *http.Request) {
	userID, ok := guard.GetUserID(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	orgID, err := orgIDVar(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.memberships.Enroll(r.Context(), userID, orgID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, toResponse(m))
}

func (h *Handler) listForOrg(w http.ResponseWriter, r *http.Request) {
	orgID, err := orgIDVar(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ms, err := h.memberships.ListForOrg(r.Context(), orgID)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	out := make([]membershipResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toResponse(m))
	}
	httputil.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	actorID, _ := guard.GetUserID(r.Context())
	orgID, err := orgIDVar(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.memberships.Verify(r.Context(), actorID, mux.Vars(r)["userID"], orgID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, toResponse(m))
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	actorID, _ := guard.GetUserID(r.Context())
	orgID, err := orgIDVar(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req changeRoleRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	role, err := authz.ParseRole(req.Role)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.memberships.ChangeRole(r.Context(), actorID, mux.Vars(r)["userID"], orgID, role)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, toResponse(m))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actorID, _ := guard.GetUserID(r.Context())
	orgID, err := orgIDVar(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.memberships.Remove(r.Context(), actorID, mux.Vars(r)["userID"], orgID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrOrgNotFound), errors.Is(err, service.ErrMembershipNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyMember):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrLastPresident):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}

func orgIDVar(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["orgID"], 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid organization id")
	}
	return id, nil
}
