package cmd

import (
	"github.com/spf13/cobra"

	"systest/internal/app"
	"systest/internal/report"
)

func newTasksCmd(opts *rootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the tasks that can be run",
		Long: `Lists the tasks registered for the project with their group and
description. Tasks without a group are only listed with --all.`,
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
			report.RenderTasks(cmd.OutOrStdout(), application.Project().Tasks(), all)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include tasks without a group")
	return cmd
}
