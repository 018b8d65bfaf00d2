// Package cli provides the bookrag command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/httpapi"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driven"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/ports/driving"
	"github.com/Muhammadasif1986/ai-diven-book/internal/logger"
	"github.com/Muhammadasif1986/ai-diven-book/internal/metrics"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	errAnswerNotConfigured    = errors.New("answer service not configured")
	errIngestionNotConfigured = errors.New("ingestion service not configured")
	errSessionsNotConfigured  = errors.New("session service not configured")
	errUsageNotConfigured     = errors.New("metrics service not configured")
	errSettingsNotConfigured  = errors.New("settings service not configured")
)

// Services holds everything the commands drive. Fields may be nil; a
// command that needs a missing service fails with a clear error.
type Services struct {
	Answer      driving.AnswerService
	Ingestion   driving.IngestionService
	Sessions    driving.SessionService
	Usage       driving.MetricsService
	Settings    driving.SettingsService
	Normalisers driven.NormaliserRegistry
	Metrics     *metrics.Metrics

	// HealthChecks are pinged by the HTTP /health endpoint.
	HealthChecks map[string]httpapi.PingFunc
}

// Injected services, set by SetServices.
var (
	answerService    driving.AnswerService
	ingestionService driving.IngestionService
	sessionService   driving.SessionService
	usageService     driving.MetricsService
	settingsService  driving.SettingsService
	normalisers      driven.NormaliserRegistry
	promMetrics      *metrics.Metrics
	healthChecks     map[string]httpapi.PingFunc
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "bookrag",
	Short: "Ask questions about a book and get cited answers",
	Long: `bookrag indexes a book into a vector store and answers questions about it.

Answers are grounded in retrieved passages and every answer carries citations
back to the chapter, section and page it came from. Ask about the whole book
or about a passage you have selected.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the services used by all commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	answerService = s.Answer
	ingestionService = s.Ingestion
	sessionService = s.Sessions
	usageService = s.Usage
	settingsService = s.Settings
	normalisers = s.Normalisers
	promMetrics = s.Metrics
	healthChecks = s.HealthChecks
}

// SetVersion sets the version reported by the version command and /health.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. Long-running commands stop when ctx is cancelled.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
