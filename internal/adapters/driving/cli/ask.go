package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Muhammadasif1986/ai-diven-book/internal/core/domain"
	"github.com/Muhammadasif1986/ai-diven-book/internal/core/services"
)

var (
	askBookID        string
	askSelection     string
	askSelectionFile string
	askSession       string
	askLimit         int
	askJSON          bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about a book",
	Long: `Answers a question from the indexed book and lists the passages it used.

With --selection (or --selection-file) the answer is limited to the given
passage: only chunks of the book that contain the selection are used.

Examples:
  bookrag ask "What is a humanoid robot?" --book robotics
  bookrag ask "Explain this" --selection "Actuators convert energy into motion."
  pbpaste | bookrag ask "Summarise this" --selection-file -`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askBookID, "book", "b", domain.DefaultBookID, "book to ask about")
	askCmd.Flags().StringVarP(&askSelection, "selection", "s", "", "answer only from this passage")
	askCmd.Flags().StringVar(&askSelectionFile, "selection-file", "", "read the passage from a file (- for stdin)")
	askCmd.Flags().StringVar(&askSession, "session", "", "session token to record the question under")
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 0, "maximum passages to retrieve (0 = default)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the full outcome as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errAnswerNotConfigured
	}

	selection, err := readSelection(cmd.InOrStdin())
	if err != nil {
		return err
	}

	req := domain.QueryRequest{
		Question:     args[0],
		BookID:       askBookID,
		SessionToken: askSession,
		ContextType:  domain.ContextFullBook,
		MaxResults:   askLimit,
	}
	if selection != "" {
		req.ContextType = domain.ContextSelection
		req.SelectedText = selection
	}

	outcome, err := answerService.Query(cmd.Context(), req)
	if err != nil {
		return err
	}

	if askJSON {
		return printJSON(cmd, outcome)
	}
	printOutcome(cmd, outcome)
	return nil
}

// readSelection returns the selected passage from --selection or --selection-file.
func readSelection(stdin io.Reader) (string, error) {
	if askSelection != "" && askSelectionFile != "" {
		return "", errors.New("give either --selection or --selection-file, not both")
	}
	if askSelectionFile == "" {
		return askSelection, nil
	}

	var data []byte
	var err error
	if askSelectionFile == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(askSelectionFile)
	}
	if err != nil {
		return "", fmt.Errorf("reading selection: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func printOutcome(cmd *cobra.Command, outcome *domain.QueryOutcome) {
	cmd.Println(outcome.Answer)
	if sources := services.NewCitationBuilder().Format(outcome.Citations); sources != "" {
		cmd.Println()
		cmd.Println(sources)
	}
	if outcome.Error != "" {
		cmd.Println()
		cmd.Printf("(%s)\n", outcome.Error)
	}
}
