package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/abiraja/quizforge/internal/content"
	"github.com/abiraja/quizforge/internal/generate"
	"github.com/abiraja/quizforge/internal/question"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate questions from course content",
	Long: `Generate questions from course content via an AI provider.

Content comes from --file or stdin. A new session is created unless
--session targets an existing one, in which case its questions are
replaced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}

		contentText, err := readContent(cmd)
		if err != nil {
			return err
		}

		qType, _ := cmd.Flags().GetString("type")
		count, _ := cmd.Flags().GetInt("count")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		providerName, _ := cmd.Flags().GetString("provider")
		sessionID, _ := cmd.Flags().GetInt("session")
		sessionVersion, _ := cmd.Flags().GetInt("session-version")
		name, _ := cmd.Flags().GetString("name")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Service.Generate(cmd.Context(), generate.Request{
			Actor:          actor,
			Content:        contentText,
			Type:           question.Type(qType),
			Count:          count,
			Difficulty:     question.Difficulty(difficulty),
			Provider:       providerName,
			SessionID:      sessionID,
			SessionVersion: sessionVersion,
			SessionName:    name,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Session %d: %d/%d questions via %s (%s)\n",
			res.SessionID, res.CountReturned, res.CountRequested, res.Provider, res.Model)
		for _, q := range res.Questions {
			fmt.Printf("  %3d. [%s] %s\n", q.Position, q.Type, truncate(q.Text, 70))
		}
		if res.CountReturned < res.CountRequested {
			fmt.Fprintf(os.Stderr, "note: provider returned %d usable questions of %d requested\n",
				res.CountReturned, res.CountRequested)
		}
		return nil
	},
}

// readContent loads the source text from --file, or stdin when the flag
// is absent. PDF files are converted to text before validation.
func readContent(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read content file: %w", err)
		}
		if content.IsPDF(data) {
			return content.ExtractPDF(path)
		}
		return string(data), nil
	}

	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
		return "", fmt.Errorf("no content: pass --file or pipe text on stdin")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if content.IsPDF(data) {
		return "", fmt.Errorf("PDF on stdin: pass it via --file instead")
	}
	return string(data), nil
}

func init() {
	generateCmd.Flags().StringP("file", "f", "", "Read content from a text or PDF file instead of stdin")
	generateCmd.Flags().StringP("type", "t", "mcq", "Question type: mcq, short_answer, fill_blank, true_false")
	generateCmd.Flags().IntP("count", "n", 5, "Number of questions to generate (1-10)")
	generateCmd.Flags().StringP("difficulty", "d", "medium", "Difficulty: easy, medium, hard")
	generateCmd.Flags().StringP("provider", "p", "", "Provider: anthropic, openai, gemini, deepseek (default from config)")
	generateCmd.Flags().IntP("session", "s", 0, "Regenerate into an existing session instead of creating one")
	generateCmd.Flags().Int("session-version", 0, "Expected session version when regenerating (0 = skip check)")
	generateCmd.Flags().String("name", "", "Name for the new session")
}
