package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Amna-05/quadro/pkg/models"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories",
	Long: `List the categories defined on the task service, with their colors
and how many tasks reference each.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkingSet(context.Background())
		if err != nil {
			return err
		}

		if ws.StaleNote != "" {
			fmt.Printf("%s\n\n", ws.StaleNote)
		}
		if len(ws.Categories) == 0 {
			fmt.Println("No categories defined.")
			return nil
		}

		counts := make(map[string]int)
		for _, task := range ws.Tasks {
			if task.CategoryID != "" {
				counts[task.CategoryID]++
			}
		}

		categories := append([]models.Category(nil), ws.Categories...)
		sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })

		fmt.Printf("%-10s %-20s %-9s %s\n", "ID", "NAME", "COLOR", "TASKS")
		for _, c := range categories {
			color := c.Color
			if color == "" {
				color = "-"
			}
			fmt.Printf("%-10s %-20s %-9s %d\n", shortID(c.ID), c.Name, color, counts[c.ID])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
