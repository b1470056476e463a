package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"systest/internal/app"
	"systest/internal/artifact"
	"systest/internal/report"
)

func newDependenciesCmd(opts *rootOptions) *cobra.Command {
	var (
		all     bool
		resolve bool
	)

	cmd := &cobra.Command{
		Use:   "dependencies [bucket...]",
		Short: "List dependency buckets and their contents",
		Long: `Lists the dependency buckets and the entries declared for them, or
their defaults when none are declared.

The system test buckets are hidden; use --all or name them to include them.
With --resolve each bucket is resolved and the files making up its class path
are listed.

Examples:
  systest dependencies --all
  systest dependencies systemTestExecutor --resolve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.appConfig(cmd)
			if err != nil {
				return err
			}
			application, err := app.NewApplication(cfg)
			if err != nil {
				return err
			}
			p := application.Project()

			buckets := p.Buckets()
			if len(args) > 0 {
				selected := make([]*artifact.Bucket, 0, len(args))
				for _, name := range args {
					b, ok := p.Bucket(name)
					if !ok {
						return fmt.Errorf("bucket '%s' not found", name)
					}
					selected = append(selected, b)
				}
				buckets = selected
				all = true
			}

			if !resolve {
				report.RenderBuckets(cmd.OutOrStdout(), buckets, all)
				return nil
			}

			for _, b := range buckets {
				if !b.Visible && !all {
					continue
				}
				files, err := b.Resolve(cmd.Context())
				if err != nil {
					return err
				}
				report.RenderResolved(cmd.OutOrStdout(), b.Name, files)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include hidden buckets")
	cmd.Flags().BoolVar(&resolve, "resolve", false, "Resolve buckets and list their files")
	return cmd
}
