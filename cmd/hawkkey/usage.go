package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hawkkey/hawkkey-go/domain/usage"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Record usage against the account",
	Long: `Record usage events and AI token usage reports.

Examples:
  hawkkey usage track --key-id=key_123 --resource=api-calls --units=5
  hawkkey usage report --key=hk_live_abc... --input-tokens=100 --output-tokens=50 --model=gpt-4o`,
}

var usageTrackCmd = &cobra.Command{
	Use:   "track",
	Short: "Record a usage event for a key",
	RunE:  runUsageTrack,
}

var usageReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report AI token usage for a credential",
	RunE:  runUsageReport,
}

var (
	trackKeyID       string
	trackResource    string
	trackUnits       int64
	trackIdempotency string

	reportKey          string
	reportInputTokens  int64
	reportOutputTokens int64
	reportTotalTokens  int64
	reportCost         float64
	reportModel        string
	reportRequestID    string
)

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.AddCommand(usageTrackCmd)
	usageCmd.AddCommand(usageReportCmd)

	usageTrackCmd.Flags().StringVar(&trackKeyID, "key-id", "", "key ID the event belongs to (required)")
	usageTrackCmd.Flags().StringVar(&trackResource, "resource", "", "resource consumed (required)")
	usageTrackCmd.Flags().Int64Var(&trackUnits, "units", 0, "units consumed (default: 1)")
	usageTrackCmd.Flags().StringVar(&trackIdempotency, "idempotency-key", "", "idempotency key for safe retries (default: generated)")
	usageTrackCmd.MarkFlagRequired("key-id")
	usageTrackCmd.MarkFlagRequired("resource")

	usageReportCmd.Flags().StringVar(&reportKey, "key", "", "credential the usage is billed against (required)")
	usageReportCmd.Flags().Int64Var(&reportInputTokens, "input-tokens", 0, "input/prompt tokens")
	usageReportCmd.Flags().Int64Var(&reportOutputTokens, "output-tokens", 0, "output/completion tokens")
	usageReportCmd.Flags().Int64Var(&reportTotalTokens, "total-tokens", 0, "total tokens (default: input + output)")
	usageReportCmd.Flags().Float64Var(&reportCost, "cost", 0, "cost in USD")
	usageReportCmd.Flags().StringVar(&reportModel, "model", "", "model name")
	usageReportCmd.Flags().StringVar(&reportRequestID, "request-id", "", "provider request ID")
	usageReportCmd.MarkFlagRequired("key")
}

func runUsageTrack(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	event := usage.Event{
		KeyID:    trackKeyID,
		Resource: trackResource,
		Units:    trackUnits,
	}
	if err := c.TrackUsage(context.Background(), event, trackIdempotency); err != nil {
		return fmt.Errorf("failed to track usage: %w", err)
	}

	fmt.Printf("Recorded %d unit(s) of %s for %s\n", max(trackUnits, 1), trackResource, trackKeyID)
	return nil
}

func runUsageReport(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	report := usage.Report{
		Key:          reportKey,
		InputTokens:  reportInputTokens,
		OutputTokens: reportOutputTokens,
		TotalTokens:  reportTotalTokens,
		Cost:         reportCost,
		Model:        reportModel,
		RequestID:    reportRequestID,
	}
	result, err := c.ReportUsage(context.Background(), report)
	if err != nil {
		return fmt.Errorf("failed to report usage: %w", err)
	}

	fmt.Printf("Reported %d token(s)\n", report.Total())
	if b := result.Budget; b != nil {
		fmt.Printf("Budget: %d of %d spent (%.1f%%)\n", b.Spent, b.Limit, b.PercentUsed())
	}
	return nil
}
