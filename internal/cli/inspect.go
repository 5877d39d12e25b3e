package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/anchit2000/flowcanvas/pkg/flowdoc"
)

func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Summarize a flow document",
		Long: `Inspect lists the blocks of a flow document with their connection counts
and reports connections whose endpoints reference missing blocks. Such
connections are skipped when the document is imported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(withLogger(cmd.Context(), c.Logger), args[0])
		},
	}
}

func (c *CLI) runInspect(ctx context.Context, input string) error {
	doc, err := flowdoc.ReadFile(input)
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("Inspecting", "file", input)

	printInfo("%s", input)
	printCounts(len(doc.Blocks), len(doc.Connections))
	if len(doc.Blocks) > 0 {
		fmt.Println(blockTable(doc))
	}

	dangling := doc.Dangling()
	if len(dangling) == 0 {
		printSuccess("All connections reference existing blocks")
		return nil
	}
	printWarning("%d dangling connections", len(dangling))
	for _, conn := range dangling {
		printDetail("%s.%s %s %s.%s", conn.From.BlockID, conn.From.Port, iconArrow, conn.To.BlockID, conn.To.Port)
	}
	return nil
}

// blockTable renders one row per block with its fan-in and fan-out.
func blockTable(doc flowdoc.Document) string {
	in := make(map[string]int)
	out := make(map[string]int)
	for _, conn := range doc.Connections {
		out[conn.From.BlockID]++
		in[conn.To.BlockID]++
	}

	rows := make([][]string, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		rows = append(rows, []string{
			b.ID,
			b.Type,
			fmt.Sprintf("%s, %s", strconv.FormatFloat(b.Position.X, 'f', -1, 64), strconv.FormatFloat(b.Position.Y, 'f', -1, 64)),
			strconv.Itoa(in[b.ID]),
			strconv.Itoa(out[b.ID]),
			strconv.Itoa(len(b.Data)),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Type", "Position", "In", "Out", "Fields").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 1:
				return StyleHighlight
			case col >= 3:
				return StyleNumber
			}
			return StyleValue
		}).
		String()
}
