// seed bootstraps the admin credential and, with -demo, inserts a demo
// route, event and participation so the reminder dispatcher has something
// to fire on locally. Run: go run ./cmd/seed [-demo]
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/clubciclismoepn/backend/config"
	"github.com/clubciclismoepn/backend/internal/crypto"
	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/clubciclismoepn/backend/internal/infrastructure/postgres"
)

func main() {
	demo := flag.Bool("demo", false, "also insert a demo route, event and participation")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := postgres.NewUserRepository(pool)

	admin, err := users.FindByEmail(ctx, cfg.AdminEmail)
	switch {
	case err == nil:
		log.Printf("admin %s already exists", admin.Email)
	case errors.Is(err, domain.ErrUserNotFound):
		hash, err := crypto.HashPassword(cfg.AdminPassword)
		if err != nil {
			log.Fatalf("hash admin password: %v", err)
		}
		admin, err = users.Create(ctx, &domain.User{
			Email:        cfg.AdminEmail,
			PasswordHash: hash,
			Role:         domain.RoleAdmin,
		})
		if err != nil {
			log.Fatalf("create admin: %v", err)
		}
		log.Printf("admin created: %s", admin.Email)
	default:
		log.Fatalf("find admin: %v", err)
	}

	if !*demo {
		return
	}

	var routeID string
	err = pool.QueryRow(ctx,
		`INSERT INTO routes (name) VALUES ($1) RETURNING id`,
		"Ruta de las Cascadas").Scan(&routeID)
	if err != nil {
		log.Fatalf("insert route: %v", err)
	}

	// Just past the reminder lead so the dispatcher picks it up within the
	// first couple of ticks.
	startsAt := time.Now().Add(cfg.ReminderLead() + 2*time.Minute).UTC()

	var eventID string
	err = pool.QueryRow(ctx, `
		INSERT INTO events (event_type, event_level, route_id, meeting_point, starts_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		domain.EventRide, "Intermedio", routeID, "Plaza Grande", startsAt).Scan(&eventID)
	if err != nil {
		log.Fatalf("insert event: %v", err)
	}

	if _, err := pool.Exec(ctx,
		`INSERT INTO event_participants (event_id, user_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`, eventID, admin.ID); err != nil {
		log.Fatalf("insert participation: %v", err)
	}

	log.Printf("demo event %s starts at %s with participant %s", eventID, startsAt, admin.Email)
}
