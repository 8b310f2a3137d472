// Package handler exposes the organization endpoints.
package handler

import (
	"context"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"orghub/backend/internal/authz"
	"orghub/backend/internal/events"
	membershipdomain "orghub/backend/internal/membership/domain"
	"orghub/backend/internal/organization/domain"
	"orghub/backend/internal/organization/repository"
	"orghub/backend/internal/server/guard"
	"orghub/backend/internal/server/httputil"
)

// MembershipCreator is the membership repository surface the handler needs
// to seat the creator as first president.
type MembershipCreator interface {
	Create(ctx context.Context, m *membershipdomain.Membership) error
}

// Handler serves the /orgs routes.
type Handler struct {
	orgRepo        repository.Repository
	membershipRepo MembershipCreator
	producer       events.Producer
}

func NewHandler(orgRepo repository.Repository, membershipRepo MembershipCreator, producer events.Producer) *Handler {
	if producer == nil {
		producer = events.NoopProducer{}
	}
	return &Handler{orgRepo: orgRepo, membershipRepo: membershipRepo, producer: producer}
}

// RegisterRoutes mounts the organization routes. Creating an organization
// needs only authentication; reading one needs membership; changing its
// settings needs the president.
func (h *Handler) RegisterRoutes(router *mux.Router, authenticated, member, president func(http.Handler) http.Handler) {
	router.Handle("/orgs", authenticated(http.HandlerFunc(h.create))).Methods(http.MethodPost)
	router.Handle("/me/orgs", authenticated(http.HandlerFunc(h.listMine))).Methods(http.MethodGet)
	router.Handle("/orgs/{orgID}", member(http.HandlerFunc(h.get))).Methods(http.MethodGet)
	router.Handle("/orgs/{orgID}", president(http.HandlerFunc(h.update))).Methods(http.MethodPut)
}

type createOrgRequest struct {
	Name string `json:"name"`
}

type orgResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// create makes a new organization. The creator becomes its first verified
// president; an organization without a president could never be
// administered.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := guard.GetUserID(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req createOrgRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	org := &domain.Org{
		Name:      req.Name,
		Status:    domain.OrgStatusActive,
		CreatedAt: time.Now().UTC(),
	}
	if err := org.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.orgRepo.Create(r.Context(), org)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "create failed")
		return
	}
	org.ID = id

	now := time.Now().UTC()
	m := &membershipdomain.Membership{
		ID:        uuid.New().String(),
		UserID:    userID,
		OrgID:     id,
		Role:      authz.RolePresident,
		Verified:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.membershipRepo.Create(r.Context(), m); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "create failed")
		return
	}
	if err := h.producer.Emit(r.Context(), &events.MembershipChanged{
		EventID:    uuid.New().String(),
		Kind:       string(membershipdomain.ChangeEnrolled),
		UserID:     userID,
		OrgID:      id,
		Role:       authz.RolePresident.String(),
		Verified:   true,
		ActorID:    userID,
		OccurredAt: now,
	}); err != nil {
		log.Printf("organization: event emit failed: %v", err)
	}

	httputil.RespondJSON(w, http.StatusCreated, orgResponse{ID: id, Name: org.Name, Status: string(org.Status)})
}

// listMine returns the organizations named in the caller's claims. Global
// administrators hold no per-org claims, so they get an empty list here.
func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	cred, ok := guard.GetCredential(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	byOrg, err := authz.DecodeClaims(cred.Claims)
	if err != nil {
		httputil.RespondError(w, http.StatusUnauthorized, "malformed credential")
		return
	}
	ids := make([]int64, 0, len(byOrg))
	for orgID := range byOrg {
		ids = append(ids, orgID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	orgs, err := h.orgRepo.ListByIDs(r.Context(), ids)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	out := make([]orgResponse, 0, len(orgs))
	for _, org := range orgs {
		out = append(out, orgResponse{ID: org.ID, Name: org.Name, Status: string(org.Status)})
	}
	httputil.RespondJSON(w, http.StatusOK, out)
}

type updateOrgRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// update changes an organization's name or status. The guard chain already
// required the caller to be the organization's president.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["orgID"], 10, 64)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid organization id")
		return
	}
	var req updateOrgRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	org, err := h.orgRepo.GetByID(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if org == nil {
		httputil.RespondError(w, http.StatusNotFound, "organization not found")
		return
	}
	if req.Name != "" {
		org.Name = req.Name
	}
	if req.Status != "" {
		switch domain.OrgStatus(req.Status) {
		case domain.OrgStatusActive, domain.OrgStatusSuspended:
			org.Status = domain.OrgStatus(req.Status)
		default:
			httputil.RespondError(w, http.StatusBadRequest, "invalid status")
			return
		}
	}
	if err := org.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.orgRepo.Update(r.Context(), org); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "update failed")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, orgResponse{ID: org.ID, Name: org.Name, Status: string(org.Status)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["orgID"], 10, 64)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid organization id")
		return
	}
	org, err := h.orgRepo.GetByID(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if org == nil {
		httputil.RespondError(w, http.StatusNotFound, "organization not found")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, orgResponse{ID: org.ID, Name: org.Name, Status: string(org.Status)})
}
