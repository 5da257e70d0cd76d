package cli

import (
	"fmt"
	"os"

	"github.com/soyeahso/plugkit/internal/config"
	"github.com/soyeahso/plugkit/internal/version"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show plugkit paths and the configured plugin",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "plugkit %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Fprintf(out, "Config:    %s\n", paths.Config)
			fmt.Fprintf(out, "Templates: %s\n", paths.Templates)
			fmt.Fprintln(out)

			if _, err := os.Stat(paths.Config); os.IsNotExist(err) {
				fmt.Fprintln(out, "Config:    not found (using defaults)")
			}
			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(out, "Config:    error loading: %v\n", err)
				return nil
			}

			d := cfg.Hooks.LoaderDefaults()
			fmt.Fprintf(out, "Hooks:     defaultPriority=%d defaultAcceptedArgs=%d\n", d.Priority, d.AcceptedArgs)
			fmt.Fprintf(out, "Logging:   level=%s style=%s\n\n", cfg.Logging.Level, cfg.Logging.ConsoleStyle)

			data, err := yaml.Marshal(cfg.Plugin)
			if err != nil {
				return err
			}
			fmt.Fprint(out, string(data))

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s: %s\n", issue.Path, issue.Message)
				}
			}
			return nil
		},
	}
}
