package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	quadromcp "github.com/Amna-05/quadro/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the quadro MCP server on stdio",
	Long: `Start the quadro MCP (Model Context Protocol) server on stdio.

The server exposes the task matrix as MCP tools that AI assistants can
call: list_tasks, get_board, get_matrix, create_task, complete_task,
reclassify_task, change_status, delete_task.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskSvc == nil || Tasks == nil || Views == nil || Mutations == nil {
			return fmt.Errorf("task service not initialized")
		}

		srv := quadromcp.NewServer(quadromcp.Deps{
			Service:     TaskSvc,
			Collection:  Tasks,
			Engine:      Views,
			Coordinator: Mutations,
			Refresh: func(ctx context.Context) error {
				_, err := loadWorkingSet(ctx)
				return err
			},
			Events: Events,
		}, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
