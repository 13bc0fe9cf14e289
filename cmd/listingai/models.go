package main

import (
	"fmt"
	"strconv"

	"github.com/harunnryd/listingai/internal/model"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models that initialized from the registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		router, err := newRouter()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatModels(router.ListModels(), cfg.Models.Default))
		return nil
	},
}

func formatModels(models []model.ModelInfo, defaultModel string) string {
	if len(models) == 0 {
		return "No models configured"
	}

	purple := lipgloss.Color("99")
	headerStyle := lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center).Padding(0, 1)
	oddRowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1)
	evenRowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenRowStyle
			default:
				return oddRowStyle
			}
		}).
		Headers("Name", "Provider", "Model", "Endpoint", "Strict")

	for _, m := range models {
		name := m.Name
		if name == defaultModel {
			name += " *"
		}
		t.Row(name, m.Provider, truncateString(m.Model, 28), truncateString(m.BaseURL, 36), strconv.FormatBool(m.Strict))
	}

	return t.String()
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
