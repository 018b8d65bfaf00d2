package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/Muhammadasif1986/ai-diven-book/internal/adapters/driving/tui"
)

var tuiBookID string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

Ask questions about a book and browse the cited passages. Switch to
selection mode to paste a passage and ask about it alone.

Controls:
  Enter    - Ask
  Ctrl+S   - Toggle selection mode
  Tab      - Switch between selection and question
  ↑/k, ↓/j - Browse citations
  n        - New question
  Esc      - Back
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiBookID, "book", "b", "", "book to ask about")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(&tui.Ports{
		Answer:    answerService,
		Ingestion: ingestionService,
		Sessions:  sessionService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())
	if tuiBookID != "" {
		app.WithBook(tuiBookID)
	}

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
