package server

import (
	"net/http"

	"github.com/gorilla/mux"

	audithandler "orghub/backend/internal/audit/handler"
	auditrepo "orghub/backend/internal/audit/repository"
	"orghub/backend/internal/authz"
	causehandler "orghub/backend/internal/cause/handler"
	causerepo "orghub/backend/internal/cause/repository"
	documenthandler "orghub/backend/internal/document/handler"
	documentrepo "orghub/backend/internal/document/repository"
	"orghub/backend/internal/events"
	identityhandler "orghub/backend/internal/identity/handler"
	identityservice "orghub/backend/internal/identity/service"
	lecturehandler "orghub/backend/internal/lecture/handler"
	lecturerepo "orghub/backend/internal/lecture/repository"
	membershiphandler "orghub/backend/internal/membership/handler"
	membershiprepo "orghub/backend/internal/membership/repository"
	membershipservice "orghub/backend/internal/membership/service"
	organizationhandler "orghub/backend/internal/organization/handler"
	organizationrepo "orghub/backend/internal/organization/repository"
	"orghub/backend/internal/server/guard"
	"orghub/backend/internal/telemetry"
)

// Deps holds the dependencies the router wires into handlers.
type Deps struct {
	// Pipeline builds the guard chains. Required.
	Pipeline *guard.Pipeline
	// Auth is the auth service for register/login/refresh/logout. Required.
	Auth *identityservice.AuthService
	// Memberships is the membership mutation service. Required.
	Memberships *membershipservice.MembershipService
	// OrgRepo, MembershipRepo back the organization handler.
	OrgRepo        organizationrepo.Repository
	MembershipRepo membershiprepo.Repository
	// CauseRepo, LectureRepo, DocumentRepo back the content handlers.
	CauseRepo    causerepo.Repository
	LectureRepo  lecturerepo.Repository
	DocumentRepo documentrepo.Repository
	// AuditRepo backs both the audit middleware and the audit read endpoint.
	// If nil, nothing is audited.
	AuditRepo auditrepo.Repository
	// Producer emits membership change events. May be nil.
	Producer events.Producer
	// Emitter ships denial events to the telemetry collector. May be nil.
	Emitter telemetry.EventEmitter
	// HealthPinger and HealthPolicyChecker feed /healthz. May be nil.
	HealthPinger        Pinger
	HealthPolicyChecker PolicyChecker
}

// NewRouter builds the full route table. Route roles:
//
//	/auth/*                              public (rate limited by IP)
//	/me/memberships                      authenticated
//	/orgs (create)                       authenticated
//	/orgs/{orgID} (read), causes/lectures/documents reads   MEMBER
//	content creation, membership verify/list                MODERATOR
//	content deletion, role change, removal, audit           ADMIN (deletes and removals are high risk)
//	/orgs/{orgID} settings (PUT)                            PRESIDENT
func NewRouter(deps Deps) http.Handler {
	p := deps.Pipeline

	public := p.Public()
	authenticated := p.Authenticated()
	member := p.Protect(authz.RoleMember, false)
	moderator := p.Protect(authz.RoleModerator, false)
	admin := p.Protect(authz.RoleAdmin, false)
	adminHighRisk := p.Protect(authz.RoleAdmin, true)
	president := p.Protect(authz.RolePresident, false)

	router := mux.NewRouter()
	router.Handle("/healthz", HealthHandler(deps.HealthPinger, deps.HealthPolicyChecker)).Methods(http.MethodGet)

	identityhandler.NewHandler(deps.Auth).RegisterRoutes(router, public, authenticated)
	organizationhandler.NewHandler(deps.OrgRepo, deps.MembershipRepo, deps.Producer).RegisterRoutes(router, authenticated, member, president)

	membershiphandler.NewHandler(deps.Memberships).RegisterRoutes(router, authenticated, moderator, admin, adminHighRisk)

	causehandler.NewHandler(deps.CauseRepo).RegisterRoutes(router, member, moderator, adminHighRisk)
	lecturehandler.NewHandler(deps.LectureRepo).RegisterRoutes(router, member, moderator, adminHighRisk)
	documenthandler.NewHandler(deps.DocumentRepo).RegisterRoutes(router, member, moderator, adminHighRisk)

	if deps.AuditRepo != nil {
		audithandler.NewHandler(deps.AuditRepo).RegisterRoutes(router, admin)
	}

	return AuditMiddleware(deps.AuditRepo, deps.Emitter)(router)
}
