package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aide-systems/aide-core/internal/config"
	"github.com/aide-systems/aide-core/internal/models"
	"github.com/aide-systems/aide-core/internal/services"
	"github.com/aide-systems/aide-core/pkg/logger"
)

func newPingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Probe the n8n automation engine",
		Long: `Send the sample chat message to the automation engine and report what
came back. By default the probe runs through the relay's /test/n8n
endpoint; --direct loads the relay configuration and probes n8n itself.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			direct, _ := cmd.Flags().GetBool("direct")
			if direct {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load configuration: %w", err)
				}
				client, err := services.NewAutomationClient(cfg.Automation, logger.NewNop())
				if err != nil {
					return err
				}
				return render(cmd, map[string]any{
					"environment": client.Environment(),
					"test_result": client.Probe(cmd.Context()),
				})
			}

			var out map[string]any
			if err := clientFor(cmd).do(cmd.Context(), http.MethodPost, "/test/n8n", nil, &out); err != nil {
				return fmt.Errorf("probe failed: %w", err)
			}
			return render(cmd, out)
		},
	}
	cmd.Flags().Bool("direct", false, "probe n8n directly instead of through the relay")
	return cmd
}

func newTriggerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger <workflow>",
		Short: "Fire an n8n workflow trigger through the relay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			triggerType, _ := cmd.Flags().GetString("type")
			if _, err := models.ParseTriggerType(triggerType); err != nil {
				return err
			}

			data := map[string]any{}
			if raw, _ := cmd.Flags().GetString("data"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &data); err != nil {
					return fmt.Errorf("--data must be a JSON object: %w", err)
				}
			}

			body := map[string]any{
				"workflow_name": args[0],
				"trigger_type":  triggerType,
				"data":          data,
			}
			var out map[string]any
			if err := clientFor(cmd).do(cmd.Context(), http.MethodPost, "/api/trigger/n8n", body, &out); err != nil {
				return fmt.Errorf("trigger failed: %w", err)
			}
			return render(cmd, out)
		},
	}
	cmd.Flags().String("type", string(models.TriggerManual), "trigger type: manual, scheduled, alert, data_update")
	cmd.Flags().String("data", "", "JSON object sent as the trigger data")
	return cmd
}

func newRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recent",
		Aliases: []string{"ls"},
		Short:   "List the most recent triggers",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			var out map[string]any
			path := "/api/triggers/recent?limit=" + strconv.Itoa(limit)
			if err := clientFor(cmd).do(cmd.Context(), http.MethodGet, path, nil, &out); err != nil {
				return fmt.Errorf("failed to list triggers: %w", err)
			}
			return render(cmd, out)
		},
	}
	cmd.Flags().Int("limit", 20, "number of triggers to return")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show relay statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out map[string]any
			if err := clientFor(cmd).do(cmd.Context(), http.MethodGet, "/api/stats", nil, &out); err != nil {
				return fmt.Errorf("failed to fetch stats: %w", err)
			}
			return render(cmd, out)
		},
	}
}
