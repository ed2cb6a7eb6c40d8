package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datasweeper/internal/table"
)

const (
	convertCmdUse   = "convert FILE..."
	convertCmdShort = "convert files between CSV and Excel"
	convertCmdLong  = `Convert each FILE to the target format.

	Files are processed one at a time. A file that cannot be read or
	converted is reported and skipped; the remaining files are still
	converted and the command exits with a non-zero status.

	Cleaning runs before column selection: duplicate rows are removed
	first, then missing numeric values are replaced by the column mean.`

	convertCmdExample = `# Convert a CSV file to Excel next to the source
	sweeper convert data.csv --to excel

	# Deduplicate, fill and keep two columns, writing into out/
	sweeper convert a.csv b.xlsx --to csv --dedupe --fill --columns name,score --out out`

	toFlagName       = "to"
	toFlagUsage      = "target format: csv or excel"
	dedupeFlagName   = "dedupe"
	dedupeFlagUsage  = "remove duplicate rows"
	fillFlagName     = "fill"
	fillFlagUsage    = "fill missing numeric values with the column mean"
	columnsFlagName  = "columns"
	columnsFlagUsage = "comma-separated columns to keep, in order (default: all)"
	outFlagName      = "out"
	outFlagShort     = "o"
	outFlagUsage     = "directory for converted files"
)

var (
	errNoTarget  = errors.New("--to is required (csv or excel)")
	errOverwrite = errors.New("output would overwrite an input file")
	errCollision = errors.New("output name collides with an earlier file")
)

// convertFlags holds the convert command flags.
type convertFlags struct {
	target  string
	dedupe  bool
	fill    bool
	columns []string
	outDir  string
}

func (f *convertFlags) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.target, toFlagName, "", toFlagUsage)
	flags.BoolVar(&f.dedupe, dedupeFlagName, false, dedupeFlagUsage)
	flags.BoolVar(&f.fill, fillFlagName, false, fillFlagUsage)
	flags.StringSliceVar(&f.columns, columnsFlagName, nil, columnsFlagUsage)
	flags.StringVarP(&f.outDir, outFlagName, outFlagShort, ".", outFlagUsage)
}

// convertOptions is the validated form of convertFlags.
type convertOptions struct {
	files   []string
	target  table.Format
	clean   table.CleanOptions
	columns []string
	outDir  string
}

func (f *convertFlags) toOptions(args []string) (*convertOptions, error) {
	if len(args) == 0 {
		return nil, errNoFiles
	}
	if f.target == "" {
		return nil, errNoTarget
	}
	target, err := table.ParseFormat(f.target)
	if err != nil {
		return nil, err
	}
	return &convertOptions{
		files:   args,
		target:  target,
		clean:   table.CleanOptions{RemoveDuplicates: f.dedupe, FillMissingNumeric: f.fill},
		columns: f.columns,
		outDir:  f.outDir,
	}, nil
}

// ConvertCmd returns the convert command.
func ConvertCmd() *cobra.Command {
	flags := &convertFlags{}
	cmd := &cobra.Command{
		Use:     convertCmdUse,
		Short:   heredoc.Doc(convertCmdShort),
		Long:    heredoc.Doc(convertCmdLong),
		Example: heredoc.Doc(convertCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.toOptions(args)
			if err != nil {
				return handleError(cmd, err)
			}
			if err := opts.run(cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
				return handleError(cmd, err)
			}
			return nil
		},
	}
	flags.addFlags(cmd)
	return cmd
}

func (o *convertOptions) run(stdout, stderr io.Writer) error {
	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	inputs := make(map[string]bool, len(o.files))
	for _, path := range o.files {
		if abs, err := filepath.Abs(path); err == nil {
			inputs[abs] = true
		}
	}
	written := make(map[string]string, len(o.files))

	failed := 0
	for _, path := range o.files {
		if err := o.convertFile(path, inputs, written, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(o.files))
	}
	return nil
}

// convertFile converts one input. inputs holds the absolute paths of every
// input; written maps each absolute destination already produced to its source.
func (o *convertOptions) convertFile(path string, inputs map[string]bool, written map[string]string, stdout, stderr io.Writer) error {
	logger := slog.With("file", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	res, err := table.Run(table.Request{
		Filename: filepath.Base(path),
		Data:     data,
		Clean:    o.clean,
		Columns:  o.columns,
		Target:   o.target,
	})
	if err != nil {
		return err
	}

	dest := filepath.Join(o.outDir, res.Filename)
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return err
	}
	if inputs[absDest] {
		return fmt.Errorf("%w: %s", errOverwrite, dest)
	}
	if prev, ok := written[absDest]; ok {
		return fmt.Errorf("%w: %s already written from %s", errCollision, dest, prev)
	}
	if err := os.WriteFile(dest, res.Output.Data, 0o644); err != nil {
		return err
	}
	written[absDest] = path
	logger.Debug("file written", "dest", dest, "bytes", len(res.Output.Data))

	fmt.Fprintf(stdout, "%s -> %s (%d rows", path, dest, res.Table.NumRows())
	if res.DuplicatesRemoved > 0 {
		fmt.Fprintf(stdout, ", %d duplicates removed", res.DuplicatesRemoved)
	}
	if res.Fill != nil && res.Fill.Cells() > 0 {
		fmt.Fprintf(stdout, ", %d cells filled", res.Fill.Cells())
	}
	fmt.Fprintln(stdout, ")")

	if res.Fill != nil {
		for _, name := range res.Fill.Empty {
			fmt.Fprintf(stderr, "%s: warning: %v\n", path, &table.EmptyNumericColumnError{Column: name})
		}
	}
	return nil
}
