package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
)

var (
	sessionUserID       string
	sessionHistoryLimit int
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage chat sessions",
	Long: `Sessions group questions so their history can be reviewed. Pass a
session token to 'bookrag ask --session' to record questions under it.`,
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Start a new session",
	Args:  cobra.NoArgs,
	RunE:  runSessionCreate,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [token]",
	Short: "Show a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

var sessionExtendCmd = &cobra.Command{
	Use:   "extend [token]",
	Short: "Extend a session by a full lifetime",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionExtend,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete [token]",
	Short: "End a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionDelete,
}

var sessionHistoryCmd = &cobra.Command{
	Use:   "history [token]",
	Short: "Show recent questions asked in a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionHistory,
}

var sessionCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionCleanup,
}

func init() {
	sessionCreateCmd.Flags().StringVar(&sessionUserID, "user", "", "user id for an authenticated session")
	sessionHistoryCmd.Flags().IntVarP(&sessionHistoryLimit, "limit", "n", 10, "maximum questions to show")

	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionExtendCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
	sessionCmd.AddCommand(sessionHistoryCmd)
	sessionCmd.AddCommand(sessionCleanupCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionCreate(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errSessionsNotConfigured
	}

	session, err := sessionService.Create(cmd.Context(), sessionUserID != "", sessionUserID)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	cmd.Printf("Created session: %s\n", session.Token)
	cmd.Printf("Expires: %s\n", session.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errSessionsNotConfigured
	}

	session, err := sessionService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	printSession(cmd, session)
	return nil
}

func runSessionExtend(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errSessionsNotConfigured
	}

	session, err := sessionService.Extend(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to extend session: %w", err)
	}
	cmd.Printf("Extended session until %s\n", session.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errSessionsNotConfigured
	}

	if err := sessionService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	cmd.Printf("Deleted session: %s\n", args[0])
	return nil
}

func runSessionHistory(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errSessionsNotConfigured
	}

	history, err := sessionService.History(cmd.Context(), args[0], sessionHistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}
	if len(history) == 0 {
		cmd.Println("No questions recorded for this session.")
		return nil
	}

	for i := range history {
		q := &history[i]
		mode := ""
		if q.ContextType == domain.ContextSelection {
			mode = " [selection]"
		}
		cmd.Printf("%s  %s%s\n", q.CreatedAt.Local().Format(time.DateTime), q.Question, mode)
		cmd.Printf("    %s (%d citations, %dms)\n", truncate(q.Answer, 100), len(q.Citations), q.ResponseTimeMS)
	}
	return nil
}

func runSessionCleanup(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errSessionsNotConfigured
	}

	n, err := sessionService.CleanupExpired(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to clean up sessions: %w", err)
	}
	cmd.Printf("Removed %d expired sessions\n", n)
	return nil
}

func printSession(cmd *cobra.Command, s *domain.UserSession) {
	cmd.Printf("Token:          %s\n", s.Token)
	if s.IsAuthenticated {
		cmd.Printf("User:           %s\n", s.UserID)
	}
	cmd.Printf("Created:        %s\n", s.CreatedAt.Local().Format(time.DateTime))
	cmd.Printf("Last activity:  %s\n", s.LastActivityAt.Local().Format(time.DateTime))
	cmd.Printf("Expires:        %s\n", s.ExpiresAt.Local().Format(time.DateTime))
}

// truncate shortens s to n runes, marking the cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
