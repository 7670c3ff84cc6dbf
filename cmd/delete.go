package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Remove an enrolled identity and its photograph",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseIDArg(args[0])
	if err != nil {
		return err
	}

	svc, err := newServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.gallery.Delete(cmd.Context(), id); err != nil {
		return describeError(err)
	}
	fmt.Printf("Identity %d deleted\n", id)
	return nil
}
