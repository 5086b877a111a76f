package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	msginfra "github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/messaging"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/events"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/messaging"
)

var (
	messagingEvents []string
	deadLetterClear bool
)

var messagingCmd = &cobra.Command{
	Use:   "messaging",
	Short: "Manage messaging adapters (webhook, Slack)",
}

var messagingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured messaging adapters",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		config, err := services.Workspace.Repo.LoadMessagingConfig()
		if err != nil {
			return MapError(fmt.Errorf("failed to load messaging config: %w", err))
		}
		if len(config.Adapters) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No messaging adapters configured.")
			return nil
		}

		data, err := json.MarshalIndent(config.Adapters, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var messagingAddCmd = &cobra.Command{
	Use:   "add <name> <type> <url>",
	Short: "Add a messaging adapter (types: webhook, slack)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, adapterType, url := args[0], args[1], args[2]
		if adapterType != messaging.TypeWebhook && adapterType != messaging.TypeSlack {
			return NewCLIError(fmt.Sprintf("unknown adapter type %q", adapterType), "Use webhook or slack", nil)
		}

		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		repo := services.Workspace.Repo
		config, err := repo.LoadMessagingConfig()
		if err != nil {
			return MapError(fmt.Errorf("failed to load messaging config: %w", err))
		}
		for _, a := range config.Adapters {
			if a.Name == name {
				return NewCLIError(fmt.Sprintf("adapter %q already exists", name), "Pick another name or edit .drafty/messaging.yaml", nil)
			}
		}

		config.Adapters = append(config.Adapters, messaging.AdapterConfig{
			Name:         name,
			Type:         adapterType,
			URL:          url,
			EventFilters: messagingEvents,
			Enabled:      true,
		})
		if err := repo.SaveMessagingConfig(config); err != nil {
			return MapError(fmt.Errorf("failed to save messaging config: %w", err))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added %s adapter %q -> %s\n", adapterType, name, url)
		if len(messagingEvents) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Events: %s\n", strings.Join(messagingEvents, ", "))
		}
		return nil
	},
}

var messagingTestCmd = &cobra.Command{
	Use:   "test <name>",
	Short: "Send a test event to a messaging adapter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		config, err := services.Workspace.Repo.LoadMessagingConfig()
		if err != nil {
			return MapError(fmt.Errorf("failed to load messaging config: %w", err))
		}

		var target *messaging.AdapterConfig
		for i, a := range config.Adapters {
			if a.Name == name {
				target = &config.Adapters[i]
				break
			}
		}
		if target == nil {
			return NewCLIError(fmt.Sprintf("adapter %q not found", name), "Run 'drafty messaging list' to see adapters", nil)
		}

		// Filters and the enabled flag are ignored for a test ping.
		ping := *target
		ping.Enabled = true
		ping.EventFilters = nil
		registry, err := msginfra.NewRegistry(&messaging.MessagingConfig{
			Adapters: []messaging.AdapterConfig{ping},
		}, msginfra.WithRetry(1, 0))
		if err != nil {
			return MapError(fmt.Errorf("create adapter: %w", err))
		}

		if err := registry.Dispatch(cmd.Context(), events.New("test.ping", "drafty messaging test")); err != nil {
			return NewCLIError(fmt.Sprintf("test event to %q failed", name), "Check the adapter URL", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Test event sent to adapter %q\n", name)
		return nil
	},
}

var messagingFailedCmd = &cobra.Command{
	Use:   "failed",
	Short: "List deliveries that failed after all retries",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir(cmd)
		if err != nil {
			return err
		}
		defer closeServices(services)

		store := services.Workspace.Messaging.DeadLetters()
		if deadLetterClear {
			if err := store.Clear(); err != nil {
				return MapError(fmt.Errorf("failed to clear dead letters: %w", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared failed deliveries.")
			return nil
		}

		entries, err := store.ReadAll()
		if err != nil {
			return MapError(fmt.Errorf("failed to read dead letters: %w", err))
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No failed deliveries.")
			return nil
		}
		for _, dl := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s %-18s %d attempt(s)  %s\n",
				dl.Timestamp.Local().Format("2006-01-02 15:04"), dl.Adapter, dl.EventType, dl.Attempts, dl.Error)
		}
		return nil
	},
}

func init() {
	messagingAddCmd.Flags().StringSliceVar(&messagingEvents, "events", nil, "Only forward these event types (comma separated)")
	messagingFailedCmd.Flags().BoolVar(&deadLetterClear, "clear", false, "Remove recorded failures")
	messagingCmd.AddCommand(messagingListCmd)
	messagingCmd.AddCommand(messagingAddCmd)
	messagingCmd.AddCommand(messagingTestCmd)
	messagingCmd.AddCommand(messagingFailedCmd)
	RootCmd.AddCommand(messagingCmd)
}
