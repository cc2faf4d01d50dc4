package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/celerix-dev/celerix-attach/pkg/sdk"
)

func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. The SDK client is created lazily
// before any subcommand runs.
func NewRootCmd() *cobra.Command {
	var (
		addr   string
		client *sdk.Client
	)

	getClient := func() *sdk.Client { return client }

	root := &cobra.Command{
		Use:          "celerix-attach",
		Short:        "Manage items and their attachments on a celerix-attach daemon",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = sdk.NewClient(sdk.Addr(addr))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&addr, "addr", "", "daemon address (default $CELERIX_ATTACH_ADDR or "+sdk.DefaultAddr+")")

	root.AddCommand(
		pingCmd(getClient),
		listCmd(getClient),
		getCmd(getClient),
		createCmd(getClient),
		setPhotoCmd(getClient),
		setFileCmd(getClient),
		clearCmd(getClient),
		deleteCmd(getClient),
	)
	return root
}

func printJSON(w io.Writer, v any) error {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(bytes))
	return err
}
