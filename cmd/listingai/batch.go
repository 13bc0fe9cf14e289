package main

import (
	"fmt"
	"os"

	"github.com/harunnryd/listingai/internal/batch"

	"github.com/spf13/cobra"
)

var batchOut string

var batchCmd = &cobra.Command{
	Use:   "batch <jobs-file>",
	Short: "Run a list of text and structured jobs concurrently",
	Long: `Run every job in a YAML or JSON jobs file. Jobs run independently:
a failed job is reported in its result and never stops the others.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read jobs file: %w", err)
		}
		jobs, err := batch.ParseJobs(data)
		if err != nil {
			return err
		}

		router, err := newRouter()
		if err != nil {
			return err
		}

		results := batch.Run(cmd.Context(), router, jobs, cfg.Batch.Concurrency)

		out, err := encodeJSON(results)
		if err != nil {
			return err
		}
		if err := writeOutput(batchOut, out, cmd.OutOrStdout()); err != nil {
			return err
		}

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d jobs failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().Int("batch.concurrency", batch.DefaultConcurrency, "maximum jobs in flight")
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "write results to this file instead of stdout")
	rootCmd.AddCommand(batchCmd)
}
