package client

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	transports "github.com/rzbill/httpmq/internal/cmd/client/transports"
)

// NewQueueCommand constructs the `queue` command group and subcommands.
func NewQueueCommand() *cobra.Command {
	queueCmd := &cobra.Command{Use: "queue", Short: "Queue operations"}

	queueCmd.AddCommand(
		newQueuePutCommand(),
		newQueueGetCommand(),
		newQueueStatusCommand(),
		newQueueResetCommand(),
		newQueueMaxQueueCommand(),
		newQueueViewCommand(),
		newQueueListCommand(),
		newQueueItemsCommand(),
	)

	return queueCmd
}

func addNameFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("name", "n", "", "Queue name")
	_ = cmd.MarkFlagRequired("name")
}

// newQueuePutCommand constructs the `queue put` subcommand.
func newQueuePutCommand() *cobra.Command {
	putCmd := &cobra.Command{
		Use:   "put",
		Short: "Enqueue one item",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			data, _ := cmd.Flags().GetString("data")
			b64, _ := cmd.Flags().GetString("data-b64")
			file, _ := cmd.Flags().GetString("file")

			var payload []byte
			switch {
			case b64 != "":
				b, err := base64.StdEncoding.DecodeString(b64)
				if err != nil {
					return fmt.Errorf("invalid --data-b64: %w", err)
				}
				payload = b
			case file == "-":
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				payload = b
			case file != "":
				b, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				payload = b
			default:
				payload = []byte(data)
			}
			if len(payload) == 0 {
				return fmt.Errorf("nothing to put; use --data, --data-b64 or --file")
			}

			seq, err := getTransport().Put(cmd.Context(), name, payload)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{"seq": seq})
		},
	}
	addNameFlag(putCmd)
	putCmd.Flags().String("data", "", "Payload as text")
	putCmd.Flags().String("data-b64", "", "Payload as base64")
	putCmd.Flags().String("file", "", "Read payload from a file (- for stdin)")
	return putCmd
}

// newQueueGetCommand constructs the `queue get` subcommand.
func newQueueGetCommand() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Dequeue the oldest item",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			count, _ := cmd.Flags().GetInt("count")
			if count <= 0 {
				count = 1
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			t := getTransport()
			for i := 0; i < count; i++ {
				it, ok, err := t.Get(cmd.Context(), name)
				if err != nil {
					return err
				}
				if !ok {
					return enc.Encode(map[string]any{"found": false})
				}
				if err := enc.Encode(decodedItem(it)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addNameFlag(getCmd)
	getCmd.Flags().Int("count", 1, "Dequeue up to N items, stopping early when the queue is empty")
	return getCmd
}

// newQueueStatusCommand constructs the `queue status` subcommand.
func newQueueStatusCommand() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show queue positions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			st, err := getTransport().Status(cmd.Context(), name)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(statusOut(st))
		},
	}
	addNameFlag(statusCmd)
	return statusCmd
}

// newQueueResetCommand constructs the `queue reset` subcommand.
func newQueueResetCommand() *cobra.Command {
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Purge a queue and rewind its positions (requires --confirm)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			confirm, _ := cmd.Flags().GetBool("confirm")
			if !confirm {
				return fmt.Errorf("refusing to reset %q without --confirm", name)
			}
			if err := getTransport().Reset(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "reset:", name)
			return nil
		},
	}
	addNameFlag(resetCmd)
	resetCmd.Flags().Bool("confirm", false, "Confirm the purge")
	return resetCmd
}

// newQueueMaxQueueCommand constructs the `queue maxqueue` subcommand.
func newQueueMaxQueueCommand() *cobra.Command {
	maxCmd := &cobra.Command{
		Use:   "maxqueue",
		Short: "Set the max depth of a queue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			limit, _ := cmd.Flags().GetUint64("max")
			if err := getTransport().SetMaxQueue(cmd.Context(), name, limit); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "maxqueue: %s=%d\n", name, limit)
			return nil
		},
	}
	addNameFlag(maxCmd)
	maxCmd.Flags().Uint64("max", 0, "Max depth")
	_ = maxCmd.MarkFlagRequired("max")
	return maxCmd
}

// newQueueViewCommand constructs the `queue view` subcommand.
func newQueueViewCommand() *cobra.Command {
	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Read an undelivered item without consuming it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			seq, _ := cmd.Flags().GetUint64("seq")
			it, err := getTransport().View(cmd.Context(), name, seq)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(decodedItem(it))
		},
	}
	addNameFlag(viewCmd)
	viewCmd.Flags().Uint64("seq", 0, "Sequence number")
	return viewCmd
}

// newQueueListCommand constructs the `queue list` subcommand.
func newQueueListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known queues",
		RunE: func(cmd *cobra.Command, _ []string) error {
			queues, err := getTransport().List(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, st := range queues {
				if err := enc.Encode(statusOut(st)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// newQueueItemsCommand constructs the `queue items` subcommand.
func newQueueItemsCommand() *cobra.Command {
	itemsCmd := &cobra.Command{
		Use:   "items",
		Short: "Browse undelivered items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			from, _ := cmd.Flags().GetUint64("from")
			limit, _ := cmd.Flags().GetInt("limit")
			filter, _ := cmd.Flags().GetString("filter")
			items, err := getTransport().Items(cmd.Context(), transports.ItemsRequest{Name: name, From: from, Limit: limit, Filter: filter})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, it := range items {
				if err := enc.Encode(decodedItem(it)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addNameFlag(itemsCmd)
	itemsCmd.Flags().Uint64("from", 0, "First sequence to consider (default: read position)")
	itemsCmd.Flags().Int("limit", 100, "Max items to return")
	itemsCmd.Flags().String("filter", "", "CEL filter (sequence, ts_ms, size, text, json, now_ms)")
	return itemsCmd
}

func statusOut(st transports.Status) map[string]any {
	out := map[string]any{
		"name":      st.Name,
		"write":     st.Write,
		"read":      st.Read,
		"depth":     st.Depth,
		"max_queue": st.MaxQueue,
	}
	if !utf8.ValidString(st.Name) {
		out["name_b64"] = base64.StdEncoding.EncodeToString([]byte(st.Name))
	}
	return out
}
