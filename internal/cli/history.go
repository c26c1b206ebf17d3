package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/config"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/models"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/services"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	EventsPath string
	Type       string
	Limit      int
}

// NewHistoryCommand creates the history command, which prints the activity log
// newest-first as JSON without starting the server.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the activity history as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.EventsPath == "" {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load configuration: %w", err)
				}
				opts.EventsPath = cfg.EventsPath
			}
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.EventsPath, "events", "", "path to the events file (default: EVENTS_PATH)")
	cmd.Flags().StringVar(&opts.Type, "type", "", "only show events of this type (create_account|send|convert)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of events to print (0 = all)")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	filter := services.HistoryFilter{Type: models.EventType(opts.Type), Limit: opts.Limit}
	if filter.Type != "" && !filter.Type.Valid() {
		return fmt.Errorf("unknown event type %q", opts.Type)
	}
	if filter.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}

	eventStore, err := store.New(opts.EventsPath)
	if err != nil {
		return err
	}
	events, err := services.NewEventService(eventStore, nil, nil).History(cmd.Context(), filter)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(events)
}
