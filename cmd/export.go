package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gridsentry/upswatch/config"
	"github.com/gridsentry/upswatch/core/monitor/logging"
	"github.com/gridsentry/upswatch/pkg/export"
)

var (
	exportFormat string
	exportUnit   string
	exportKind   string
	exportSince  string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export audit log records as JSON or CSV",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json or csv")
	exportCmd.Flags().StringVar(&exportUnit, "unit", "", "restrict to one unit")
	exportCmd.Flags().StringVar(&exportKind, "kind", "", "restrict to prediction or alert records")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only records after this RFC3339 timestamp")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file, stdout when empty")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	var store logging.LogStore
	switch cfg.Logging.Backend {
	case "sqlite":
		store, err = logging.NewSQLiteStore(cfg.Logging.Path)
	default:
		store, err = logging.NewJSONLStore(cfg.Logging.Path)
	}
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer func() { _ = store.Close() }()

	q := logging.Query{UnitID: exportUnit, Kind: logging.Kind(exportKind)}
	if exportSince != "" {
		start, err := time.Parse(time.RFC3339, exportSince)
		if err != nil {
			return fmt.Errorf("parse since: %w", err)
		}
		q.Start = start
	}
	records, err := store.Query(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("query audit log: %w", err)
	}

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	switch exportFormat {
	case "json":
		return export.WriteJSON(out, records)
	case "csv":
		return export.WriteCSV(out, records)
	default:
		return fmt.Errorf("unknown format %q", exportFormat)
	}
}
