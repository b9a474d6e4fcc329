package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Int("batch-size", DefaultBatchSize, "Initial jobs per chunk")
	cmd.PersistentFlags().Int("concurrency", DefaultConcurrency, "Initial worker concurrency")
	cmd.PersistentFlags().String("cache-ttl", "1h", "TTL for cached job results")
	cmd.PersistentFlags().Float64("rate-limit", 0, "Per-kind dispatch rate limit in jobs/sec (0 disables)")
}
