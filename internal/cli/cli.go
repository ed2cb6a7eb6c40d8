// Package cli implements the sweeper command line tool, which runs the
// conversion pipeline over local files.
package cli

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datasweeper/internal/logging"
)

const (
	appName  = "sweeper"
	appShort = "sweeper converts CSV and Excel files, optionally cleaning them on the way"

	logLevelFlagName  = "log-level"
	logLevelFlagShort = "v"
)

var (
	errNoFiles = errors.New("no input files provided")

	logLevels        = []string{"debug", "info", "warn", "error"}
	logLevelFlagHelp = "set the logging level (possible values: " + strings.Join(logLevels, ", ") + ")"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: heredoc.Doc(appShort),

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, "text"))
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		c.PrintErrln(err)
		_ = c.Usage()
		return err
	})

	cmd.PersistentFlags().StringVarP(&logLevel, logLevelFlagName, logLevelFlagShort, "warn", logLevelFlagHelp)
	cmd.AddCommand(
		ConvertCmd(),
		InspectCmd(),
	)
	return cmd
}

// handleError prints err for the user. Missing arguments print usage and
// still fail.
func handleError(cmd *cobra.Command, err error) error {
	cmd.PrintErrln("Error:", err)
	if errors.Is(err, errNoFiles) {
		_ = cmd.Usage()
	}
	return err
}
