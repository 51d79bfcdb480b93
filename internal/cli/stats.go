package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Amna-05/quadro/internal/observability"
)

var (
	statsJSON   bool
	statsSince  string
	statsNotify bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show activity metrics and active alerts",
	Long: `Replay the local mutation journal into activity metrics and evaluate
alert conditions against the current snapshot.

Metrics cover creations, completions, reclassifications, status moves,
and rollbacks inside the window. Alerts flag overdue pile-ups, an
overloaded Do First quadrant, and stale in-progress tasks, with
thresholds from config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil || AlertEngine == nil {
			return fmt.Errorf("observability not initialized")
		}

		sinceTime, err := parseSinceDuration(statsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		ws, err := loadWorkingSet(context.Background())
		if err != nil {
			return err
		}
		alerts := AlertEngine.Evaluate(ws.Tasks, time.Now())

		if statsNotify && Notifier != nil {
			if err := Notifier.Notify(alerts); err != nil {
				return fmt.Errorf("notifying webhook: %w", err)
			}
		}

		if statsJSON {
			payload := struct {
				Metrics *observability.Metrics `json:"metrics"`
				Alerts  []observability.Alert  `json:"alerts"`
			}{metrics, alerts}
			data, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting stats as JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if ws.StaleNote != "" {
			fmt.Printf("%s\n\n", ws.StaleNote)
		}

		// Table format.
		fmt.Printf("Activity (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Printf("  %-24s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Printf("  %-24s %d\n", "Tasks created:", metrics.TasksCreated)
		fmt.Printf("  %-24s %d\n", "Tasks completed:", metrics.TasksCompleted)
		fmt.Printf("  %-24s %d\n", "Tasks reopened:", metrics.TasksReopened)
		fmt.Printf("  %-24s %d\n", "Tasks deleted:", metrics.TasksDeleted)
		fmt.Printf("  %-24s %d\n", "Reclassifications:", metrics.Reclassified)
		fmt.Printf("  %-24s %d\n", "Rollbacks:", metrics.Rollbacks)

		if len(metrics.MovesByStatus) > 0 {
			fmt.Println("\n  Status moves:")
			for _, status := range sortedKeys(metrics.MovesByStatus) {
				fmt.Printf("    %-20s %d\n", status+":", metrics.MovesByStatus[status])
			}
		}
		if len(metrics.MovesByQuadrant) > 0 {
			fmt.Println("\n  Quadrant moves:")
			for _, quadrant := range sortedKeys(metrics.MovesByQuadrant) {
				fmt.Printf("    %-20s %d\n", quadrant+":", metrics.MovesByQuadrant[quadrant])
			}
		}
		if metrics.NewestEvent != nil {
			fmt.Printf("\n  %-24s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		if len(alerts) == 0 {
			fmt.Println("\nNo active alerts.")
			return nil
		}
		fmt.Printf("\n%d active alert(s):\n\n", len(alerts))
		for _, alert := range alerts {
			fmt.Printf("  [%s] %s\n", strings.ToUpper(string(alert.Severity)), alert.Message)
		}
		return nil
	},
}

// parseSinceDuration parses a human-friendly duration string like "7d",
// "30d", or "24h" and returns the corresponding time in the past.
func parseSinceDuration(s string) (time.Time, error) {
	now := time.Now().UTC()
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}

	if strings.HasSuffix(s, "h") {
		hours, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid hour duration %q", s)
		}
		return now.Add(-time.Duration(hours) * time.Hour), nil
	}

	return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output stats as JSON")
	statsCmd.Flags().StringVar(&statsSince, "since", "7d", "Time window for metrics (e.g. 7d, 30d, 24h)")
	statsCmd.Flags().BoolVar(&statsNotify, "notify", false, "Send triggered alerts to the configured webhook")
	rootCmd.AddCommand(statsCmd)
}
