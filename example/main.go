package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/merfrei/pgconnect"
)

func main() {
	uri := os.Getenv("DATABASE_URL")
	ctx := context.Background()

	err := pgconnect.WithSession(ctx, uri, func(s *pgconnect.Session) error {
		// 1) Find-or-create a user by its natural attributes
		id, user, err := s.FindOrCreate(ctx, "users", pgconnect.Row{
			{Column: "name", Value: "Nano"},
			{Column: "age", Value: 33},
		}, "id")
		if err != nil {
			return fmt.Errorf("find or create user: %w", err)
		}
		fmt.Printf("user %v: %v\n", id, user)

		// 2) Insert a single event with an explicit id
		eventID, err := s.InsertOne(ctx, "events", pgconnect.Row{
			{Column: "id", Value: uuid.New()},
			{Column: "user_id", Value: id},
			{Column: "kind", Value: "login"},
			{Column: "at", Value: time.Now()},
		}, pgconnect.DefaultKeyField)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		fmt.Printf("event %v created\n", eventID)

		// 3) Bulk-insert tags, skipping rows that already exist
		tags := pgconnect.NewBulkInserter(s, "tags", []string{"user_id", "tag"}, 500)
		for _, tag := range []string{"early-adopter", "beta"} {
			if err := tags.Add(ctx, id, tag); err != nil {
				return fmt.Errorf("buffer tag: %w", err)
			}
		}
		if err := tags.Flush(ctx); err != nil {
			return fmt.Errorf("flush tags: %w", err)
		}

		// 4) Skip repeated existence checks for reference data
		cache := pgconnect.NewIntegrityCache()
		for _, country := range []string{"AR", "ES", "AR"} {
			row := pgconnect.Row{{Column: "code", Value: country}}
			if err := cache.Create(ctx, s, "countries", row, "code"); err != nil {
				return fmt.Errorf("ensure country %s: %w", country, err)
			}
		}
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
