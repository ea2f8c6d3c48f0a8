package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	nvstore "github.com/mboros1/native-vector-store"
	"github.com/mboros1/native-vector-store/testutil"
)

func newSmokeCommand() *cobra.Command {
	var dim int

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Insert one document, finalize, and search it back",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmoke(dim)
		},
	}
	cmd.Flags().IntVar(&dim, "dim", 8, "embedding dimension")

	return cmd
}

func runSmoke(dim int) error {
	store, err := nvstore.New(dim)
	if err != nil {
		return err
	}
	defer store.Close()

	rng := testutil.NewRNG(1)
	emb := rng.RandomUnitVector(dim)

	if err := store.AddDocument(testutil.DocumentJSON("smoke-doc", emb)); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	if store.Size() != 1 {
		return fmt.Errorf("size = %d, want 1", store.Size())
	}

	store.Finalize()
	if !store.IsFinalized() {
		return fmt.Errorf("store not finalized")
	}

	results, err := store.Search(emb, 1)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(results) != 1 {
		return fmt.Errorf("got %d results, want 1", len(results))
	}
	top := results[0]
	if string(top.Doc.ID) != "smoke-doc" {
		return fmt.Errorf("top hit id = %q, want smoke-doc", top.Doc.ID)
	}
	if math.Abs(float64(top.Score)-1) > 1e-5 {
		return fmt.Errorf("top hit score = %v, want ~1", top.Score)
	}

	fmt.Printf("ok: dim=%d score=%.6f id=%s\n", dim, top.Score, top.Doc.ID)
	return nil
}
