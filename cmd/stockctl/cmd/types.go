package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/stockpile-hq/stockpile/internal/attrtype"
)

func TypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List attribute types with their companion field and units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printTypes(cmd)
		},
	}
}

func printTypes(cmd *cobra.Command) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tCOMPANION\tUNITS")
	for _, h := range attrtype.New(nil).Handlers() {
		companion := string(h.Companion)
		if companion == "" {
			companion = "-"
		}
		units := strings.Join(h.Units, ",")
		if units == "" {
			units = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", h.Type, companion, units)
	}
	return w.Flush()
}
