package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/scsb/scsb"
)

var batchSize int

// availabilityCmd represents the availability command
var availabilityCmd = &cobra.Command{
	Use:   "availability BARCODE...",
	Short: "Check the availability of items by barcode",
	Long: `Report the availability status of one or more items.

With --batch-size the barcodes are split into batches that are sent
concurrently, bounded by the configured concurrency. The reports are
merged in the order the barcodes were given.`,
	Example: `  scsb availability 33433118106339
  scsb availability --batch-size 50 $(cat barcodes.txt) --filter 'itemAvailabilityStatus != "Available"'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAvailability,
}

func init() {
	rootCmd.AddCommand(availabilityCmd)

	availabilityCmd.Flags().IntVar(&batchSize, "batch-size", 0, "barcodes per request (0 sends all in one request)")
}

func runAvailability(cmd *cobra.Command, args []string) error {
	if batchSize < 0 {
		return fmt.Errorf("invalid batch size: %d", batchSize)
	}

	batches := splitBatches(args, batchSize)

	logger.Info().
		Int("barcodes", len(args)).
		Int("batches", len(batches)).
		Msg("Checking item availability")

	if len(batches) == 1 {
		raw, err := client.ItemsAvailability(cmd.Context(), batches[0])
		if err != nil {
			return err
		}
		return printResult(cmd, raw, "")
	}

	// Each goroutine owns its slot in results
	results := make([][]json.RawMessage, len(batches))

	g, ctx := errgroup.WithContext(cmd.Context())
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			raw, err := client.ItemsAvailability(ctx, batch)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i+1, err)
			}

			rows, err := scsb.Decode[[]json.RawMessage](raw)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i+1, err)
			}
			results[i] = rows

			logger.Debug().Int("batch", i+1).Int("rows", len(rows)).Msg("Batch complete")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	merged := make([]json.RawMessage, 0, len(args))
	for _, rows := range results {
		merged = append(merged, rows...)
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to merge availability reports: %w", err)
	}

	return printResult(cmd, raw, "")
}

// splitBatches splits barcodes into batches of at most size; size 0 keeps
// them together
func splitBatches(barcodes []string, size int) [][]string {
	if size <= 0 || size >= len(barcodes) {
		return [][]string{barcodes}
	}

	batches := make([][]string, 0, (len(barcodes)+size-1)/size)
	for start := 0; start < len(barcodes); start += size {
		end := min(start+size, len(barcodes))
		batches = append(batches, barcodes[start:end])
	}
	return batches
}
