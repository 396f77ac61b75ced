package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/leadboard/internal/assistant"
	"github.com/alfredjeanlab/leadboard/internal/client"
	"github.com/alfredjeanlab/leadboard/internal/llm"
	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/ui"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the assistant about your leads",
	Long: `Ask a question about the current lead sheet. The sheet is summarized
and sent to the model along with the question.

Requires ANTHROPIC_API_KEY. Use --suggest to list canned questions and
--interactive to keep asking against the same snapshot.`,
	GroupID: "views",
	RunE: func(cmd *cobra.Command, args []string) error {
		suggest, _ := cmd.Flags().GetBool("suggest")
		interactive, _ := cmd.Flags().GetBool("interactive")
		modelName, _ := cmd.Flags().GetString("model")
		maxRows, _ := cmd.Flags().GetInt("max-rows")

		if suggest {
			return printSuggestions(os.Stdout)
		}
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" && !interactive {
			return fmt.Errorf("no question given (try --suggest or --interactive)")
		}

		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		var opts []llm.AnthropicOption
		if u := os.Getenv("CRM_ANTHROPIC_URL"); u != "" {
			opts = append(opts, llm.WithBaseURL(u))
		}
		a := assistant.New(llm.NewAnthropic(key, opts...), model.DefaultSchema(),
			assistant.WithModel(modelName),
			assistant.WithBudget(assistant.Budget{MaxRows: maxRows}),
		)

		ctx := context.Background()
		snap, err := sheetClient.FetchSnapshot(ctx)
		if err != nil {
			return fmt.Errorf("fetching leads: %w", err)
		}

		if question != "" {
			if err := askOnce(ctx, a, question, snap); err != nil {
				return err
			}
		}
		if interactive {
			return askLoop(ctx, a, snap, os.Stdin)
		}
		return nil
	},
}

func askOnce(ctx context.Context, a *assistant.Assistant, question string, snap *client.Snapshot) error {
	answer, err := a.Ask(ctx, question, snap)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(map[string]string{"question": question, "answer": answer})
	}
	fmt.Print(renderAnswer(answer))
	return nil
}

// askLoop reads one question per line until EOF or "exit".
func askLoop(ctx context.Context, a *assistant.Assistant, snap *client.Snapshot, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(os.Stderr, ui.RenderAccent("ask> "))
		if !scanner.Scan() {
			fmt.Fprintln(os.Stderr)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if err := askOnce(ctx, a, line, snap); err != nil {
			warnf("%v", err)
		}
	}
}

func printSuggestions(w io.Writer) error {
	if jsonOutput {
		return printJSON(assistant.SuggestedQuestions)
	}
	for _, s := range assistant.SuggestedQuestions {
		fmt.Fprintf(w, "%-13s %s\n", ui.RenderMuted(s.Category), s.Text)
	}
	return nil
}

// renderAnswer formats markdown for the terminal. Non-terminal output is
// left as plain text.
func renderAnswer(answer string) string {
	if !ui.IsTerminal(os.Stdout) {
		return strings.TrimRight(answer, "\n") + "\n"
	}
	width, ok := ui.TerminalWidth(os.Stdout)
	if !ok || width > 100 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return answer + "\n"
	}
	out, err := r.Render(answer)
	if err != nil {
		return answer + "\n"
	}
	return out
}

func init() {
	askCmd.Flags().Bool("suggest", false, "list suggested questions")
	askCmd.Flags().BoolP("interactive", "i", false, "keep asking questions until EOF")
	askCmd.Flags().String("model", "claude-3-5-sonnet-20241022", "model to ask")
	askCmd.Flags().Int("max-rows", 50, "leads listed in full in the context")
}
