package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anchit2000/flowcanvas/pkg/blocktype"
)

func (c *CLI) typesCommand() *cobra.Command {
	var (
		sources sourceOptions
		fields  bool
	)
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the available block types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			reg, closeCache, err := c.newRegistry(ctx, sources)
			if err != nil {
				return err
			}
			defer closeCache()
			return runTypes(ctx, reg, fields)
		},
	}
	cmd.Flags().BoolVar(&fields, "fields", false, "show each type's fields")
	sources.addFlags(cmd)
	return cmd
}

func runTypes(ctx context.Context, reg *blocktype.Registry, fields bool) error {
	types, err := reg.Types(ctx)
	if err != nil {
		return err
	}
	for _, name := range types {
		tmpl, err := reg.Template(ctx, name)
		if err != nil {
			printError("%s: %s", name, err)
			continue
		}
		printKeyValue(name, tmpl.Label+" "+StyleDim.Render(strings.Join(portNames(tmpl), ",")))
		if !fields {
			continue
		}
		for _, f := range tmpl.Fields {
			detail := fmt.Sprintf("%s (%s) = %v", f.Name, f.Kind, f.Default)
			if len(f.Options) > 0 {
				detail += " [" + strings.Join(f.Options, "|") + "]"
			}
			printDetail("%s", detail)
		}
	}
	return nil
}

func portNames(t *blocktype.Template) []string {
	names := make([]string, len(t.Ports))
	for i, p := range t.Ports {
		names[i] = string(p)
	}
	return names
}
