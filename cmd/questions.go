package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/abiraja/quizforge/internal/question"
	"github.com/abiraja/quizforge/internal/store"
	"github.com/spf13/cobra"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Manage individual questions",
}

var questionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a question with its payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid question ID %q", args[0])
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		q, err := a.Store.Questions().Get(cmd.Context(), actor, id)
		if err != nil {
			return err
		}

		fmt.Printf("Question:   %d (session %d, position %d, %s)\n", q.ID, q.SessionID, q.Position, q.Status)
		fmt.Printf("Type:       %s, %s, source %s\n", q.Type, q.Difficulty, q.Source)
		if q.Confidence != nil {
			fmt.Printf("Confidence: %.2f\n", *q.Confidence)
		}
		if len(q.Tags) > 0 {
			fmt.Printf("Tags:       %v\n", q.Tags)
		}
		fmt.Printf("Text:       %s\n", q.Text)

		var pretty map[string]any
		if err := json.Unmarshal(q.Payload, &pretty); err == nil {
			data, _ := json.MarshalIndent(pretty, "", "  ")
			fmt.Printf("Payload:\n%s\n", data)
		}
		return nil
	},
}

var questionsAddCmd = &cobra.Command{
	Use:   "add <session-id>",
	Short: "Add a manual question to a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		sessionID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid session ID %q", args[0])
		}

		qType, _ := cmd.Flags().GetString("type")
		text, _ := cmd.Flags().GetString("text")
		payload, _ := cmd.Flags().GetString("payload")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		tags, _ := cmd.Flags().GetStringSlice("tags")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		q, err := a.Store.Questions().Create(cmd.Context(), actor, sessionID, store.QuestionData{
			Type:       question.Type(qType),
			Text:       text,
			Payload:    json.RawMessage(payload),
			Source:     question.SourceManual,
			Difficulty: question.Difficulty(difficulty),
			Tags:       tags,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Question %d added at position %d.\n", q.ID, q.Position)
		return nil
	},
}

var questionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Soft-delete a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid question ID %q", args[0])
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Store.Questions().Delete(cmd.Context(), actor, id); err != nil {
			return err
		}
		fmt.Printf("Question %d deleted.\n", id)
		return nil
	},
}

var questionsReorderCmd = &cobra.Command{
	Use:   "reorder <session-id> <question-id>...",
	Short: "Rewrite a session's question ordering",
	Long:  "Rewrite a session's question ordering. The ID list must name every active question exactly once, in the desired order.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		sessionID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid session ID %q", args[0])
		}
		ids := make([]int, 0, len(args)-1)
		for _, arg := range args[1:] {
			id, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("invalid question ID %q", arg)
			}
			ids = append(ids, id)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Store.Questions().Reorder(cmd.Context(), actor, sessionID, ids); err != nil {
			return err
		}
		fmt.Printf("Session %d reordered.\n", sessionID)
		return nil
	},
}

func init() {
	questionsAddCmd.Flags().StringP("type", "t", "mcq", "Question type: mcq, short_answer, fill_blank, true_false")
	questionsAddCmd.Flags().String("text", "", "Question text")
	questionsAddCmd.Flags().String("payload", "", "Type-specific payload as JSON")
	questionsAddCmd.Flags().StringP("difficulty", "d", "medium", "Difficulty: easy, medium, hard")
	questionsAddCmd.Flags().StringSlice("tags", nil, "Comma-separated tags")
	questionsAddCmd.MarkFlagRequired("text")
	questionsAddCmd.MarkFlagRequired("payload")

	questionsCmd.AddCommand(questionsShowCmd)
	questionsCmd.AddCommand(questionsAddCmd)
	questionsCmd.AddCommand(questionsDeleteCmd)
	questionsCmd.AddCommand(questionsReorderCmd)
}
