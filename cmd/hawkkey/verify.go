package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hawkkey/hawkkey-go/client"
	"github.com/hawkkey/hawkkey-go/domain/key"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <api-key>",
	Short: "Verify a credential and show its limit state",
	Long: `Verify checks a credential against the service and prints its
validity, plan, rate limit, quota and budget state.

The verify call consumes units like any other: pass --units=0 for a
dry look at a key's state only if your plan meters verifies separately.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

var (
	verifyResource string
	verifyUnits    int64
	verifyTokens   int64
)

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyResource, "resource", "", "resource to meter against (default: api-calls)")
	verifyCmd.Flags().Int64Var(&verifyUnits, "units", 0, "units to consume (default: 1)")
	verifyCmd.Flags().Int64Var(&verifyTokens, "tokens", 0, "estimated tokens to reserve")
}

func runVerify(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	res, err := c.Verify(context.Background(), args[0], &client.VerifyOptions{
		Resource: verifyResource,
		Units:    verifyUnits,
		Tokens:   verifyTokens,
	})
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	fmt.Printf("Key %s is valid\n", key.Mask(args[0]))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Plan:\t%s\n", res.Plan)
	fmt.Fprintf(w, "Rate limit:\t%d/%d remaining (resets %s)\n",
		res.RateLimit.Remaining, res.RateLimit.Limit,
		time.Unix(res.RateLimit.Reset, 0).Format(time.RFC3339))
	if q := res.Quota; q != nil {
		fmt.Fprintf(w, "Quota:\t%d/%d remaining (resets %s)\n",
			q.Remaining, q.Limit, q.ResetAt.Format(time.RFC3339))
	}
	if b := res.Budget; b != nil {
		fmt.Fprintf(w, "Budget:\t%d of %d spent (%.1f%%)\n", b.Spent, b.Limit, b.PercentUsed())
		if b.WarningExceeded {
			fmt.Fprintf(w, "\tWARNING: budget warning threshold exceeded\n")
		}
	}
	if tu := res.TokenUsage; tu != nil {
		if tu.Limit != nil {
			fmt.Fprintf(w, "Tokens:\t%d used of %d\n", tu.Used, *tu.Limit)
		} else {
			fmt.Fprintf(w, "Tokens:\t%d used\n", tu.Used)
		}
	}
	if len(res.Entitlements) > 0 {
		fmt.Fprintf(w, "Entitlements:\t%v\n", res.Entitlements)
	}
	w.Flush()

	return nil
}
