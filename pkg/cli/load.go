package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/merfrei/pgconnect"
	"github.com/merfrei/pgconnect/pkg/config"
)

type logEvent func() *zerolog.Event

// NewLoadCmd builds the `load` command: stream a CSV file into a table.
// The CSV header row supplies the column list. Without --key, rows go
// through a BulkInserter in batches; with --key, each row is routed
// through an IntegrityCache keyed on that column instead.
func NewLoadCmd() *cobra.Command {
	var (
		table     string
		batchSize int
		keyField  string
	)

	cmd := &cobra.Command{
		Use:   "load <file.csv>",
		Short: "Bulk-load a CSV file into a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(cfg.Log.Level)

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open csv: %w", err)
			}
			defer f.Close()

			reader := csv.NewReader(f)
			header, err := reader.Read()
			if err != nil {
				return fmt.Errorf("read csv header: %w", err)
			}

			return pgconnect.WithSession(cmd.Context(), cfg.Database.URI(),
				func(s *pgconnect.Session) error {
					if keyField != "" {
						return loadKeyed(cmd, s, reader, table, header, keyField, log.Info)
					}
					return loadBatched(cmd, s, reader, table, header, batchSize, log.Info)
				},
				pgconnect.WithLogger(log),
			)
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "Target table (required)")
	cmd.Flags().IntVar(&batchSize, "batch", pgconnect.DefaultBatchSize, "Rows per insert statement")
	cmd.Flags().StringVar(&keyField, "key", "", "De-duplicate on this column via find-or-create")
	cmd.MarkFlagRequired("table")
	return cmd
}

func loadBatched(cmd *cobra.Command, s *pgconnect.Session, reader *csv.Reader, table string, columns []string, batchSize int, info logEvent) error {
	ins := pgconnect.NewBulkInserter(s, table, columns, batchSize)
	total := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}
		if err := ins.Add(cmd.Context(), toValues(record)...); err != nil {
			return err
		}
		total++
	}
	if err := ins.Flush(cmd.Context()); err != nil {
		return err
	}
	info().Int("rows", total).Str("table", table).Msg("load complete")
	return nil
}

func loadKeyed(cmd *cobra.Command, s *pgconnect.Session, reader *csv.Reader, table string, columns []string, keyField string, info logEvent) error {
	cache := pgconnect.NewIntegrityCache()
	total := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}
		row := make(pgconnect.Row, len(columns))
		for i, col := range columns {
			row[i] = pgconnect.Field{Column: col, Value: record[i]}
		}
		if err := cache.Create(cmd.Context(), s, table, row, keyField); err != nil {
			return err
		}
		total++
	}
	info().Int("rows", total).Str("table", table).Str("key", keyField).Msg("load complete")
	return nil
}

func toValues(record []string) []any {
	vals := make([]any, len(record))
	for i, v := range record {
		vals[i] = v
	}
	return vals
}
