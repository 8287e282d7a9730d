package cli

import (
	"github.com/spf13/cobra"

	"github.com/merfrei/pgconnect"
	"github.com/merfrei/pgconnect/pkg/config"
)

// NewCheckCmd builds the `check` command: open a session against the
// configured database, ping it, and close.
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(cfg.Log.Level)

			err = pgconnect.WithSession(cmd.Context(), cfg.Database.URI(),
				func(s *pgconnect.Session) error {
					return s.Ping(cmd.Context())
				},
				pgconnect.WithLogger(log),
			)
			if err != nil {
				return err
			}
			log.Info().
				Str("host", cfg.Database.Host).
				Str("database", cfg.Database.Name).
				Msg("database reachable")
			return nil
		},
	}
}
