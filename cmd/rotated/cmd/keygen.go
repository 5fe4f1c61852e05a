package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Print fresh signing and envelope keys as environment assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range []string{"ROTATE_SIGNING_KEY", "ROTATE_ENVELOPE_KEY"} {
			key := make([]byte, 32)
			if _, err := rand.Read(key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", name, hex.EncodeToString(key))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
