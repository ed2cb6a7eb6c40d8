package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datasweeper/internal/table"
)

const (
	inspectCmdUse   = "inspect FILE..."
	inspectCmdShort = "show the columns, types and first rows of files"
	inspectCmdLong  = `Parse each FILE and print its columns with their inferred type and
	number of missing values, followed by the first rows.`
	inspectCmdExample = `sweeper inspect data.csv --rows 10`

	rowsFlagName  = "rows"
	rowsFlagShort = "n"
	rowsFlagUsage = "number of rows to show"
	defaultRows   = 5
)

// InspectCmd returns the inspect command.
func InspectCmd() *cobra.Command {
	var rows int
	cmd := &cobra.Command{
		Use:     inspectCmdUse,
		Short:   heredoc.Doc(inspectCmdShort),
		Long:    heredoc.Doc(inspectCmdLong),
		Example: heredoc.Doc(inspectCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return handleError(cmd, errNoFiles)
			}
			failed := 0
			for _, path := range args {
				if err := inspectFile(cmd.OutOrStdout(), path, rows); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					failed++
				}
			}
			if failed > 0 {
				return handleError(cmd, fmt.Errorf("%d of %d files failed", failed, len(args)))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&rows, rowsFlagName, rowsFlagShort, defaultRows, rowsFlagUsage)
	return cmd
}

func inspectFile(w io.Writer, path string, rows int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	t, format, err := table.ParseFile(filepath.Base(path), data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%s, %d rows, %d columns)\n", path, format, t.NumRows(), t.NumColumns())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  COLUMN\tTYPE\tMISSING")
	for _, c := range t.Columns() {
		missing := 0
		for _, cell := range c.Cells {
			if !cell.Valid {
				missing++
			}
		}
		fmt.Fprintf(tw, "  %s\t%s\t%d\n", c.Name, c.Kind, missing)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	head := t.Head(rows)
	if len(head) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  "+strings.Join(t.ColumnNames(), "\t"))
	for _, row := range head {
		for i, v := range row {
			if v == "" {
				row[i] = "NaN"
			}
		}
		fmt.Fprintln(tw, "  "+strings.Join(row, "\t"))
	}
	return tw.Flush()
}
