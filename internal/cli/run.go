package cli

import (
	"context"
	"fmt"

	"github.com/soyeahso/plugkit/pkg/hooks"
	"github.com/soyeahso/plugkit/pkg/logging"
	"github.com/soyeahso/plugkit/pkg/plugin"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		fire   []string
		filter string
		value  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Activate the configured plugin, commit its hooks and fire init",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, i18n, err := buildPlugin(cfg, log)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			hm := hooks.NewManager(log)
			reg, err := startPlugins(ctx, hm, log, p)
			if err != nil {
				return err
			}
			defer reg.DeactivateAll(ctx)

			out := cmd.OutOrStdout()
			for _, name := range fire {
				n := hm.DoAction(ctx, name)
				fmt.Fprintf(out, "fired %s: %d handler(s)\n", name, n)
			}
			if filter != "" {
				result, err := hm.ApplyFilters(ctx, filter, value)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s(%q) = %v\n", filter, value, result)
			}

			for _, info := range reg.Info() {
				fmt.Fprintf(out, "%s %s: active=%v actions=%d filters=%d\n",
					info.Slug, info.Version, info.Active, info.Actions, info.Filters)
			}
			if locales := i18n.Locales(); len(locales) > 0 {
				fmt.Fprintf(out, "locales: %v\n", locales)
			}
			fmt.Fprintf(out, "hooks: %v\n", hm.Events())
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&fire, "fire", nil, "additional action to fire after init (repeatable)")
	cmd.Flags().StringVar(&filter, "filter", "", "filter to apply after init")
	cmd.Flags().StringVar(&value, "value", "", "value passed to --filter")
	return cmd
}

// startPlugins registers plugins on a registry bound to hm and runs them.
// If any plugin fails to activate or commit, the ones already activated
// are deactivated before the error is returned.
func startPlugins(ctx context.Context, hm *hooks.Manager, log *logging.Logger, plugins ...*plugin.Plugin) (*plugin.Registry, error) {
	reg := plugin.NewRegistry(hm, log)
	for _, p := range plugins {
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}
	if err := reg.RunAll(ctx); err != nil {
		reg.DeactivateAll(ctx)
		return nil, err
	}
	return reg, nil
}
