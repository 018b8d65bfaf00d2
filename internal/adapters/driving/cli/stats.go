package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

var (
	statsSession  string
	statsEndpoint string
	statsWindow   time.Duration
	statsJSON     bool
	statsCleanup  int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show API usage statistics",
	Long: `Summarises recorded API calls for a session or an endpoint.

Examples:
  bookrag stats --endpoint /query
  bookrag stats --session sess_0123456789abcdef --window 1h
  bookrag stats --cleanup 30`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsSession, "session", "", "summarise one session's calls")
	statsCmd.Flags().StringVar(&statsEndpoint, "endpoint", "", "summarise one endpoint's calls, e.g. /query")
	statsCmd.Flags().DurationVar(&statsWindow, "window", 24*time.Hour, "how far back to look")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	statsCmd.Flags().IntVar(&statsCleanup, "cleanup", 0, "delete metrics older than this many days")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if usageService == nil {
		return errUsageNotConfigured
	}
	ctx := cmd.Context()

	if statsCleanup > 0 {
		n, err := usageService.CleanupOld(ctx, statsCleanup)
		if err != nil {
			return fmt.Errorf("failed to clean up metrics: %w", err)
		}
		cmd.Printf("Removed %d metrics older than %d days\n", n, statsCleanup)
		return nil
	}

	var (
		summary domain.MetricsSummary
		label   string
		err     error
	)
	switch {
	case statsSession != "" && statsEndpoint != "":
		return errors.New("give either --session or --endpoint, not both")
	case statsSession != "":
		label = "session " + statsSession
		summary, err = usageService.SessionMetrics(ctx, statsSession, statsWindow)
	case statsEndpoint != "":
		label = "endpoint " + statsEndpoint
		summary, err = usageService.EndpointMetrics(ctx, statsEndpoint, statsWindow)
	default:
		return errors.New("--session, --endpoint or --cleanup is required")
	}
	if err != nil {
		return fmt.Errorf("failed to get metrics: %w", err)
	}

	if statsJSON {
		return printJSON(cmd, summary)
	}
	cmd.Printf("Usage for %s over the last %s\n", label, statsWindow)
	cmd.Printf("  Calls:          %d\n", summary.TotalCalls)
	cmd.Printf("  Errors:         %d\n", summary.ErrorCalls)
	cmd.Printf("  Rate limited:   %d\n", summary.RateLimitedCalls)
	cmd.Printf("  Avg response:   %.1fms\n", summary.AverageResponseTime)
	return nil
}
