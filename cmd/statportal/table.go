package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vyrodovalexey/statportal/internal/export"
	"github.com/vyrodovalexey/statportal/internal/table"
	"github.com/vyrodovalexey/statportal/internal/util"
)

// Output formats of the table command besides the export formats.
const (
	formatText = "text"
	formatJSON = "json"
)

// structureFetcher is the part of the API the table command needs.
type structureFetcher interface {
	TableStructure(ctx context.Context, id int) ([]byte, error)
}

func newTableCmd(flags *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "table <id>",
		Short: "Fetch a table and print it",
		Long: `Fetches a table structure from the statistics API, renders it and
prints it as aligned text, JSON, or any export format (csv, xlsx, pdf, html).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := util.ParseID(args[0])
			if err != nil {
				return err
			}
			cfg, _, err := loadConfig(flags, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			logger, err := initLogger(cfg, stderrOutput)
			if err != nil {
				return err
			}
			client, err := newClient(cfg, logger)
			if err != nil {
				return err
			}
			return runTable(cmd.Context(), client, id, format, cfg.Table.RenderOptions(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json, csv, xlsx, pdf or html")
	return cmd
}

func runTable(
	ctx context.Context, api structureFetcher, id int, format string, opts table.Options, out io.Writer,
) error {
	data, err := api.TableStructure(ctx, id)
	if err != nil {
		return fmt.Errorf("fetching table %d: %w", id, err)
	}
	t, err := table.Decode(data)
	if err != nil {
		return err
	}
	v := table.Build(t, opts)

	switch strings.ToLower(format) {
	case formatText:
		return printText(out, v)
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	return export.NewRegistry().Write(ctx, out, f, v)
}

// printText lays the CSV grid out in aligned columns.
func printText(out io.Writer, v *table.View) error {
	if v.Meta.Title != "" {
		fmt.Fprintln(out, v.Meta.Title)
		fmt.Fprintln(out)
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if err := export.NewCSVExporter(export.WithComma('\t'), export.WithoutBOM()).Export(tw, v); err != nil {
		return err
	}
	return tw.Flush()
}
