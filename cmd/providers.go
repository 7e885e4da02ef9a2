package cmd

import (
	"fmt"
	"strings"

	"github.com/abiraja/quizforge/internal/provider"
	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show configured AI providers and their availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := provider.ConfigFromEnv()
		dispatcher, err := provider.NewDispatcher(cfg, nil)
		if err != nil {
			return err
		}

		availability := dispatcher.Availability()
		fmt.Printf("%-12s  %-10s  %s\n", "Provider", "Status", "Default")
		fmt.Println(strings.Repeat("─", 36))
		for _, name := range dispatcher.Names() {
			status := "ready"
			if !availability[name] {
				status = "no key"
			}
			marker := ""
			if name == dispatcher.DefaultName() {
				marker = "*"
			}
			fmt.Printf("%-12s  %-10s  %s\n", name, status, marker)
		}
		return nil
	},
}
