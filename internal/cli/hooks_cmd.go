package cli

import (
	"fmt"

	"github.com/soyeahso/plugkit/pkg/loader"
	"github.com/spf13/cobra"
)

func newHooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hooks",
		Short: "List the hook bindings the configured plugin declares",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, _, err := buildPlugin(cfg, log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			bindings := append(p.Loader().Actions(), p.Loader().Filters()...)
			if len(bindings) == 0 {
				fmt.Fprintln(out, "(no bindings)")
				return nil
			}

			fmt.Fprintf(out, "%-7s %-24s %8s %5s  %s\n", "KIND", "HOOK", "PRIORITY", "ARGS", "HANDLER")
			for _, b := range bindings {
				fmt.Fprintf(out, "%-7s %-24s %8d %5d  %s\n", b.Kind, b.Hook, b.Priority, b.AcceptedArgs, b.Handler)
			}
			fmt.Fprintf(out, "\n%d action(s), %d filter(s)\n", countKind(bindings, loader.KindAction), countKind(bindings, loader.KindFilter))
			return nil
		},
	}
}

func countKind(bindings []loader.Binding, kind loader.Kind) int {
	n := 0
	for _, b := range bindings {
		if b.Kind == kind {
			n++
		}
	}
	return n
}
