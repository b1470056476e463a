package cmd

import (
	"github.com/spf13/cobra"

	"systest/internal/app"
	"systest/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective project configuration",
		Long: `Prints the project configuration as YAML after templating and defaults
have been applied. Values left empty take the plugin's conventions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.appConfig(cmd)
			if err != nil {
				return err
			}
			application, err := app.NewApplication(cfg)
			if err != nil {
				return err
			}

			out, err := config.Marshal(application.Project().Config)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
