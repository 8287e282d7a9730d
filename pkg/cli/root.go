// Package cli wires the pgconnect library into a small command line tool.
package cli

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func version() string {
	return "v0.1.1"
}

// NewVersionCmd builds the `version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version())
		},
	}
}

// NewRootCmd builds the top-level `pgconnect` command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pgconnect",
		Short: "pgconnect — session utilities for PostgreSQL",
	}
	root.AddCommand(NewCheckCmd())
	root.AddCommand(NewLoadCmd())
	root.AddCommand(NewVersionCmd())
	return root
}

// newLogger builds the console logger used by all commands.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(lvl)
}
