package main

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/spf13/cobra"

	nvstore "github.com/mboros1/native-vector-store"
	"github.com/mboros1/native-vector-store/loader"
)

func newLoadCommand() *cobra.Command {
	var (
		dim     int
		workers int
		k       int
	)

	cmd := &cobra.Command{
		Use:   "load [dir]",
		Short: "Load a directory of JSON documents and spot-check search",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "test/"
			if len(args) == 1 {
				dir = args[0]
			}
			return runLoad(cmd, dir, dim, workers, k)
		},
	}
	cmd.Flags().IntVar(&dim, "dim", 1536, "embedding dimension")
	cmd.Flags().IntVar(&workers, "workers", 0, "parsing workers (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&k, "k", 5, "neighbors to fetch in the spot check")

	return cmd
}

func runLoad(cmd *cobra.Command, dir string, dim, workers, k int) error {
	store, err := nvstore.New(dim)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := []loader.Option{
		loader.WithLogger(nvstore.NewTextLogger(slog.LevelInfo)),
	}
	if workers > 0 {
		opts = append(opts, loader.WithWorkers(workers))
	}

	stats, err := loader.LoadDirectory(cmd.Context(), store, dir, opts...)
	if err != nil {
		return err
	}

	fmt.Printf("loaded %d documents from %d files (%d files failed, %d documents rejected, %d bytes)\n",
		stats.DocumentsAdded, stats.FilesLoaded, stats.FilesFailed, stats.DocumentsFailed, stats.BytesRead)

	if !store.IsFinalized() {
		return fmt.Errorf("store not finalized after load")
	}
	if int64(store.Size()) != stats.DocumentsAdded {
		return fmt.Errorf("size = %d, loader added %d", store.Size(), stats.DocumentsAdded)
	}
	if store.Size() == 0 {
		fmt.Println("ok: empty store")
		return nil
	}

	// Spot check: the first entry's own embedding must rank itself first.
	entry, _ := store.GetEntry(0)
	query := append([]float32(nil), entry.Embedding...)

	results, err := store.Search(query, k)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("search returned no results")
	}
	if results[0].Index != 0 {
		return fmt.Errorf("top hit index = %d, want 0", results[0].Index)
	}
	if math.Abs(float64(results[0].Score)-1) > 1e-4 {
		return fmt.Errorf("top hit score = %v, want ~1", results[0].Score)
	}

	fmt.Printf("ok: %d entries, top hit %q score=%.6f\n",
		store.Size(), results[0].Doc.ID, results[0].Score)
	return nil
}
