package cmd

import (
	"fmt"
	"os"

	"github.com/abiraja/quizforge/internal/app"
	"github.com/abiraja/quizforge/internal/question"
	"github.com/spf13/cobra"
)

// openApp wires the full application against the resolved database.
func openApp(cmd *cobra.Command) (*app.App, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	return app.New(dbPath)
}

// resolveActor returns the acting user from --actor or QUIZFORGE_ACTOR.
// Every store operation is attributed to an explicit actor, so the CLI
// refuses to run without one.
func resolveActor(cmd *cobra.Command) (question.Actor, error) {
	id, _ := cmd.Flags().GetString("actor")
	if id == "" {
		id = os.Getenv("QUIZFORGE_ACTOR")
	}
	if id == "" {
		return question.Actor{}, fmt.Errorf("no actor: pass --actor or set QUIZFORGE_ACTOR")
	}
	elevated, _ := cmd.Flags().GetBool("elevated")
	return question.Actor{ID: id, Elevated: elevated}, nil
}

// truncate shortens s to at most max runes, never splitting a
// multibyte character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}
