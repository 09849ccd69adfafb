package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the integration behind the token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		me, err := sess.Whoami(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if flagJSON {
			return json.NewEncoder(out).Encode(me.Obj())
		}
		fmt.Fprintf(out, "%s (%s)\n", me.Name(), me.ID())
		return nil
	},
}
