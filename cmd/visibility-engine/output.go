package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/visibility-engine/internal/report"
	"github.com/pdiddy/visibility-engine/pkg/types"
)

// storeSaver is the part of the report store a command saves runs with.
type storeSaver interface {
	SaveDiscovery(ctx context.Context, run *types.DiscoveryRun) error
	SaveCitations(ctx context.Context, run *types.CitationRun) error
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "output results as JSON")
	cmd.Flags().String("output", "", "also write the run to this file (.yaml, .yml or .json)")
	cmd.Flags().Bool("no-save", false, "do not store the run in the report database")
}

// saveAndWrite stores the run unless --no-save is set and writes it to
// --output when given.
func saveAndWrite(cmd *cobra.Command, cfg types.StoreConfig, save func(context.Context, storeSaver) error, id string, v any) error {
	noSave, _ := cmd.Flags().GetBool("no-save")
	if !noSave {
		ctx := context.Background()
		store, err := report.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := save(ctx, store); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved run %s\n", id)
	}

	output, _ := cmd.Flags().GetString("output")
	if output != "" {
		if err := report.WriteResultFile(output, v); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", output)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
