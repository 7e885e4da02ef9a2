package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiraja/quizforge/internal/store"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage question sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		includeDeleted, _ := cmd.Flags().GetBool("all")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sessions, err := a.Store.Sessions().List(cmd.Context(), actor, includeDeleted)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Printf("%-5s  %-30s  %-12s  %-5s  %-10s  %-8s  %s\n",
			"ID", "Name", "Type", "Count", "Provider", "Status", "Created")
		fmt.Println(strings.Repeat("─", 92))
		for _, s := range sessions {
			fmt.Printf("%-5d  %-30s  %-12s  %-5d  %-10s  %-8s  %s\n",
				s.ID,
				truncate(s.Name, 30),
				s.QuestionType,
				s.QuestionCount,
				s.Provider,
				s.Status,
				s.CreatedAt.Local().Format("2006-01-02 15:04"),
			)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session and its questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid session ID %q", args[0])
		}
		includeDeleted, _ := cmd.Flags().GetBool("all")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.Store.Sessions().Get(cmd.Context(), actor, id)
		if err != nil {
			return err
		}
		qs, err := a.Store.Questions().BySession(cmd.Context(), actor, id, includeDeleted)
		if err != nil {
			return err
		}

		fmt.Printf("Session:   %d (v%d, %s)\n", sess.ID, sess.Version, sess.Status)
		fmt.Printf("Name:      %s\n", sess.Name)
		fmt.Printf("Owner:     %s\n", sess.OwnerID)
		fmt.Printf("Type:      %s, count %d\n", sess.QuestionType, sess.QuestionCount)
		if sess.Provider != "" {
			fmt.Printf("Provider:  %s\n", sess.Provider)
		}
		fmt.Printf("Content:   %d chars, sha256 %s\n", len(sess.Content), truncate(sess.ContentHash, 12))
		fmt.Println()

		if len(qs) == 0 {
			fmt.Println("No questions.")
			return nil
		}
		for _, q := range qs {
			marker := ""
			if q.Status != "active" {
				marker = " (deleted)"
			}
			fmt.Printf("%3d. [%s/%s] #%d%s\n     %s\n",
				q.Position, q.Type, q.Difficulty, q.ID, marker, q.Text)
		}
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Soft-delete a session and its questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid session ID %q", args[0])
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Store.Sessions().Delete(cmd.Context(), actor, id); err != nil {
			return err
		}
		fmt.Printf("Session %d deleted.\n", id)
		return nil
	},
}

var sessionsDuplicateCmd = &cobra.Command{
	Use:   "duplicate <id>",
	Short: "Deep-copy a session and its active questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid session ID %q", args[0])
		}
		name, _ := cmd.Flags().GetString("name")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		dup, err := a.Store.Sessions().Duplicate(cmd.Context(), actor, id, name)
		if err != nil {
			return err
		}
		fmt.Printf("Session %d duplicated as %d (%s).\n", id, dup.ID, dup.Name)
		return nil
	},
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid session ID %q", args[0])
		}
		name := args[1]

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.Store.Sessions().Update(cmd.Context(), actor, id, store.SessionPatch{Name: &name})
		if err != nil {
			return err
		}
		fmt.Printf("Session %d renamed to %q (v%d).\n", sess.ID, sess.Name, sess.Version)
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().Bool("all", false, "Include deleted sessions")
	sessionsShowCmd.Flags().Bool("all", false, "Include deleted questions")
	sessionsDuplicateCmd.Flags().String("name", "", "Name for the copy (default: \"<name> (copy)\")")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsDuplicateCmd)
	sessionsCmd.AddCommand(sessionsRenameCmd)
}
