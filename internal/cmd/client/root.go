package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the httpmq client.
// It registers the queue command group.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "httpmq",
		Short: "httpmq queue server and client",
	}
	root.AddCommand(NewQueueCommand())
	return root
}
