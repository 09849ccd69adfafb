// Command notionmap inspects a workspace through the typed object layer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/lychee-technology/notionmap"
	"github.com/lychee-technology/notionmap/factory"
	"github.com/lychee-technology/notionmap/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

var (
	flagConfig string
	flagJSON   bool

	cfg  *notionmap.Config
	sess *session.Session
)

var rootCmd = &cobra.Command{
	Use:           "notionmap",
	Short:         "Inspect databases, pages and users of a workspace",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(flagConfig)
		if err != nil {
			return err
		}
		logger, err := factory.NewLogger(loaded.Logging)
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)
		cfg = loaded

		s, err := factory.NewSessionWithConfig(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		sess = s
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer zap.L().Sync()
		if sess == nil {
			return nil
		}
		return sess.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./notionmap.yaml or ~/.config/notionmap/notionmap.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(viewCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "notionmap:", err)
		if sess != nil {
			_ = sess.Close()
		}
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode separates mistakes of the caller from failures of the remote or the host.
func exitCode(err error) int {
	switch {
	case notionmap.IsConfigError(err),
		notionmap.IsValidationError(err),
		notionmap.IsNotFoundError(err),
		notionmap.IsSchemaError(err):
		return exitUserError
	case notionmap.IsRemoteError(err):
		var typed *notionmap.Error
		if errors.As(err, &typed) && typed.Details["status"] == 404 {
			return exitUserError
		}
		return exitSysError
	default:
		return exitSysError
	}
}
