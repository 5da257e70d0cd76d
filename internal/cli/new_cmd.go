package cli

import (
	"fmt"
	"os"

	"github.com/soyeahso/plugkit/internal/config"
	"github.com/soyeahso/plugkit/internal/scaffold"
	"github.com/spf13/cobra"
)

func newNewCmd() *cobra.Command {
	var (
		slug     string
		name     string
		template string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "new <dir>",
		Short: "Render a new plugin skeleton into dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if slug != "" {
				cfg.Plugin.Slug = slug
			}
			if name != "" {
				cfg.Plugin.Name = name
			}
			if template != "" {
				cfg.Scaffold.Template = template
			}
			if cmd.Flags().Changed("force") {
				cfg.Scaffold.Force = force
			}

			if issues := config.Validate(&cfg); len(issues) > 0 {
				return fmt.Errorf("cannot render: %s", issues[0])
			}

			src := scaffold.Builtin()
			if cfg.Scaffold.Template != "" {
				src = os.DirFS(cfg.Scaffold.Template)
			}

			r := scaffold.NewRenderer(scaffold.NewTokens(cfg.Plugin), cfg.Scaffold.Force, log)
			report, err := r.Render(src, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range report.Created {
				fmt.Fprintf(out, "created     %s\n", f)
			}
			for _, f := range report.Overwritten {
				fmt.Fprintf(out, "overwritten %s\n", f)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "plugin slug (overrides config)")
	cmd.Flags().StringVar(&name, "name", "", "plugin display name (overrides config)")
	cmd.Flags().StringVar(&template, "template", "", "template directory (default built-in)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}
