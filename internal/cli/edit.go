package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/anchit2000/flowcanvas/internal/config"
	"github.com/anchit2000/flowcanvas/pkg/editor"
	"github.com/anchit2000/flowcanvas/pkg/errors"
)

const (
	appTitle    = config.AppName
	defaultFlow = "flow.json"
)

type editOpts struct {
	logFile string
	sources sourceOptions
}

func (c *CLI) editCommand() *cobra.Command {
	var opts editOpts
	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Edit a flow document in the terminal",
		Long: `Edit opens a mouse-driven editor. Drag a block type from the palette onto
the canvas to place it, drag a block's body to move it, and drag from an
output port (●) to an input port (○) to connect two blocks. Press s to save
the document to file. A file that does not exist yet is created on save.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultFlow
			if len(args) == 1 {
				path = args[0]
			}
			return c.runEdit(withLogger(cmd.Context(), c.Logger), path, &opts)
		},
	}
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write editor logs to this file")
	opts.sources.addFlags(cmd)
	return cmd
}

func (c *CLI) runEdit(ctx context.Context, path string, opts *editOpts) error {
	reg, closeCache, err := c.newRegistry(ctx, opts.sources)
	if err != nil {
		return err
	}
	defer closeCache()

	// The terminal belongs to the editor while it runs.
	var w io.Writer = io.Discard
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	sessionLogger := newLogger(w, c.Logger.GetLevel())

	ed := c.newEditor(reg, editor.WithLogger(sessionLogger))
	if _, err := os.Stat(path); err == nil {
		if err := importInto(ctx, ed, path); err != nil {
			return err
		}
	} else {
		printInfo("New flow %s", path)
	}

	palette, err := newPalette(ctx, reg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		NewEditorModel(ctx, ed, palette, path),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(EditorModel); ok && m.Dirty() {
		printWarning("Unsaved changes to %s were discarded", path)
	}
	return nil
}

// importInto loads the document at path into ed. Blocks and connections
// that could not be restored are reported but do not fail the command.
func importInto(ctx context.Context, ed *editor.Editor, path string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	report, err := ed.ImportFile(ctx, path)
	if err != nil && !errors.Is(err, errors.ErrCodeImportIncomplete) {
		return err
	}
	prog.done(fmt.Sprintf("Imported %d blocks, %d connections", report.Blocks, report.Connections))
	for _, id := range report.SkippedBlocks {
		printWarning("Skipped block %s", id)
	}
	if report.SkippedConnections > 0 {
		printWarning("Skipped %d connections with missing endpoints", report.SkippedConnections)
	}
	if err != nil {
		logger.Debug("Import incomplete", "err", err)
	}
	return nil
}

