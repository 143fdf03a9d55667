package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:     "resolve <id>...",
	Short:   "Show the canonical id, BV and heat for equipment identifiers",
	Example: `  bvctl resolve ISERMediumLaser "LRM 10" CLLBXAC10`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INPUT\tID\tSTAGE\tBV\tHEAT")
	for _, raw := range args {
		res := env.Resolver.Resolve(raw)
		if !res.Resolved {
			fmt.Fprintf(w, "%s\t%s\t-\t-\t-\n", raw, res.ID)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", raw, res.ID, res.Stage, res.Entry.BattleValue, res.Entry.Heat)
	}
	return w.Flush()
}
