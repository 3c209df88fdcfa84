package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aide-systems/aide-core/internal/version"
)

// NewRootCmd builds the aidectl command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "aidectl",
		Short: "AIDE relay CLI",
		Long: `aidectl is the command-line companion of the AIDE relay.

Probe the n8n automation engine, fire workflow triggers and inspect
the state of a running relay from your terminal.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("server", "http://localhost:8000", "base URL of the running relay")
	root.PersistentFlags().Duration("timeout", 70*time.Second, "request timeout")
	root.PersistentFlags().StringP("output", "o", "json", "output format: json, yaml")

	root.AddCommand(newPingCmd(), newTriggerCmd(), newRecentCmd(), newStatsCmd())
	return root
}

// Execute runs the CLI against os.Args
func Execute() error {
	return NewRootCmd().Execute()
}

func clientFor(cmd *cobra.Command) *relayClient {
	server, _ := cmd.Flags().GetString("server")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return newRelayClient(server, timeout)
}

func render(cmd *cobra.Command, v any) error {
	format, _ := cmd.Flags().GetString("output")
	return write(cmd.OutOrStdout(), format, v)
}

func write(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
