package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"hub-versions/internal/core"
	"hub-versions/internal/types"
)

// newNormalizeCommand exposes the constraint normalizer directly, for
// checking how a requires_ansible string will be reported.
func newNormalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <constraint>",
		Short: "Normalize a requires_ansible constraint string",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			minimal, status := core.NormalizeMinimal(args[0])
			if status != types.RowStatusOK {
				fmt.Printf("%s\n", status)
				return nil
			}
			fmt.Printf("%s\n", minimal.String())
			return nil
		},
	}
}
