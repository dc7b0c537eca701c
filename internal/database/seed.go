package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/JudeSurin/SpaceLink-Complete/pkg/models"
)

// SeedDemoData populates the demo accounts and device keys used by the
// simulators and the quickstart docs. Seeding is explicit and opt-in: it runs
// only when the operator sets the seed flag, and it is a no-op when the user
// table already has rows. Nothing in the request path ever materializes
// fixtures lazily.
func (db *BunDB) SeedDemoData(ctx context.Context) error {
	count, err := db.Users.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	if count > 0 {
		log.Info().Int("users", count).Msg("Skipping demo seed, user table is not empty")
		return nil
	}

	log.Info().Msg("Seeding demo users and device keys")

	type demoUser struct {
		username     string
		email        string
		password     string
		role         models.Role
		organization string
	}

	demoUsers := []demoUser{
		{"enterprise_admin", "admin@enterprise.example.com", "admin123", models.RoleAdmin, "SpaceLink Internal"},
		{"acme_partner", "tech@acme.example.com", "partner123", models.RolePartner, "ACME Corporation"},
		{"customer_user", "ops@customer.example.com", "customer123", models.RoleCustomer, "Customer Inc"},
	}

	for _, u := range demoUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash demo password: %w", err)
		}
		user := &models.User{
			Username:       u.username,
			Email:          u.email,
			HashedPassword: string(hash),
			Role:           u.role,
			Organization:   u.organization,
			CreatedAt:      time.Now().UTC(),
		}
		if err := db.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.username, err)
		}
	}

	demoKeys := []models.DeviceKey{
		{Key: "ok_device-001_abc123xyz", DeviceID: "device-001", Organization: "ACME Corporation"},
		{Key: "ok_mobile-001_def456uvw", DeviceID: "mobile-001", Organization: "Customer Inc"},
		{Key: "ok_sat-001_abc123xyz", DeviceID: "sat-001", Organization: "ACME Corporation"},
	}

	for i := range demoKeys {
		key := demoKeys[i]
		key.CreatedAt = time.Now().UTC()
		key.Active = true
		if err := db.DeviceKeys.Create(ctx, &key); err != nil {
			return fmt.Errorf("failed to seed device key for %s: %w", key.DeviceID, err)
		}
	}

	log.Info().
		Int("users", len(demoUsers)).
		Int("device_keys", len(demoKeys)).
		Msg("Demo data seeded")
	return nil
}
