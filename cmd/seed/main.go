// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"orghub/backend/internal/authz"
	"orghub/backend/internal/config"
	"orghub/backend/internal/db"
	identitydomain "orghub/backend/internal/identity/domain"
	identityrepo "orghub/backend/internal/identity/repository"
	membershipdomain "orghub/backend/internal/membership/domain"
	membershiprepo "orghub/backend/internal/membership/repository"
	orgdomain "orghub/backend/internal/organization/domain"
	organizationrepo "orghub/backend/internal/organization/repository"
	"orghub/backend/internal/security"
	userdomain "orghub/backend/internal/user/domain"
	userrepo "orghub/backend/internal/user/repository"
)

const (
	devUserEmail  = "dev@example.com"
	devAdminEmail = "root@example.com"
	devPassword   = "Password-123!"
	devOrgName    = "Chess Club"
	devSecondOrg  = "Debate Society"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set")
		os.Exit(1)
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(database)
	identities := identityrepo.NewPostgresRepository(database)
	orgs := organizationrepo.NewPostgresRepository(database)
	memberships := membershiprepo.NewPostgresRepository(database)
	hasher := security.NewHasher(cfg.BcryptCost)

	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if existing != nil {
		log.Println("seed: dev user already exists, nothing to do")
		return
	}

	now := time.Now().UTC()
	hash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("seed: hash: %v", err)
	}

	devUser := &userdomain.User{
		ID:        uuid.New().String(),
		Email:     devUserEmail,
		Name:      "Dev User",
		Status:    userdomain.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	rootUser := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        devAdminEmail,
		Name:         "Platform Admin",
		Status:       userdomain.UserStatusActive,
		GlobalAccess: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, u := range []*userdomain.User{devUser, rootUser} {
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("seed: user %s: %v", u.Email, err)
		}
		if err := identities.Create(ctx, &identitydomain.Identity{
			ID:           uuid.New().String(),
			UserID:       u.ID,
			Provider:     identitydomain.IdentityProviderLocal,
			ProviderID:   u.Email,
			PasswordHash: hash,
			CreatedAt:    now,
		}); err != nil {
			log.Fatalf("seed: identity %s: %v", u.Email, err)
		}
	}

	orgID, err := orgs.Create(ctx, &orgdomain.Org{Name: devOrgName, Status: orgdomain.OrgStatusActive, CreatedAt: now})
	if err != nil {
		log.Fatalf("seed: org: %v", err)
	}
	secondOrgID, err := orgs.Create(ctx, &orgdomain.Org{Name: devSecondOrg, Status: orgdomain.OrgStatusActive, CreatedAt: now})
	if err != nil {
		log.Fatalf("seed: org: %v", err)
	}

	seedMemberships := []*membershipdomain.Membership{
		{ID: uuid.New().String(), UserID: devUser.ID, OrgID: orgID, Role: authz.RolePresident, Verified: true, CreatedAt: now, UpdatedAt: now},
		// Second membership stays unverified so the enrollment flow can be
		// exercised end to end.
		{ID: uuid.New().String(), UserID: devUser.ID, OrgID: secondOrgID, Role: authz.RoleMember, Verified: false, CreatedAt: now, UpdatedAt: now},
	}
	for _, m := range seedMemberships {
		if err := memberships.Create(ctx, m); err != nil {
			log.Fatalf("seed: membership: %v", err)
		}
	}

	log.Printf("seed: done (orgs %d and %d, users %s and %s, password %q)",
		orgID, secondOrgID, devUserEmail, devAdminEmail, devPassword)
}
