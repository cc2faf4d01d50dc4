package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/celerix-dev/celerix-attach/pkg/schema"
	"github.com/celerix-dev/celerix-attach/pkg/sdk"
)

func pingCmd(client func() *sdk.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the daemon answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client().Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "PONG")
			return nil
		},
	}
}

func listCmd(client func() *sdk.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := client().ListItems(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}
}

func getCmd(client func() *sdk.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <item-id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := client().GetItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), it)
		},
	}
}

func createCmd(client func() *sdk.Client) *cobra.Command {
	var photo, file string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an item, optionally uploading a photo and a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := client().CreateItem(cmd.Context(), args[0], photo, file)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), it)
		},
	}
	cmd.Flags().StringVar(&photo, "photo", "", "path of a photo to attach")
	cmd.Flags().StringVar(&file, "file", "", "path of a file to attach")
	return cmd
}

func setPhotoCmd(client func() *sdk.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "set-photo <item-id> <path>",
		Short: "Replace an item's photo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := client().ReplacePhoto(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), it)
		},
	}
}

func setFileCmd(client func() *sdk.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "set-file <item-id> <path>",
		Short: "Replace an item's file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := client().ReplaceFile(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), it)
		},
	}
}

func clearCmd(client func() *sdk.Client) *cobra.Command {
	return &cobra.Command{
		Use:       "clear <item-id> <photo|file>",
		Short:     "Delete an item's photo or file",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{schema.FieldPhoto, schema.FieldFile},
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := client().ClearAttachment(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if deleted {
				fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to delete")
			}
			return nil
		},
	}
}

func deleteCmd(client func() *sdk.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete an item and its attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client().DeleteItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}
