package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/gridwatch/internal/grid"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run a single grid ingestion pass and print the result",
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	comps, err := buildComponents()
	if err != nil {
		return err
	}
	defer comps.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), comps.cfg.HTTPTimeout+15*time.Second)
	defer cancel()

	res, err := comps.grids.Ingest(ctx)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	var upstreamErr *grid.UpstreamError
	if errors.As(err, &upstreamErr) {
		_ = enc.Encode(map[string]any{"error": upstreamErr.Message(), "status": upstreamErr.Status})
		return fmt.Errorf("ingestion failed with upstream status %d", upstreamErr.Status)
	}
	if err != nil {
		return err
	}
	return enc.Encode(res)
}
