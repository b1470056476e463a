package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// releaseRepository is the GitHub repository (owner/name) releases are
// published to. Release builds set it with
// -ldflags "-X systest/cmd.releaseRepository=owner/name".
var releaseRepository = ""

// newSelfUpdateCmd creates the Cobra command for the self-update functionality.
func newSelfUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "self-update",
		Short: "Update systest to the latest version",
		Long: `Checks for the latest release of systest on GitHub and
updates the current binary if a newer version is found.

Releases are looked up in the repository the binary was built for, or the
one given with --repository.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.New()
			v.SetEnvPrefix(envPrefix)
			v.AutomaticEnv()
			if err := v.BindPFlag("repository", cmd.Flags().Lookup("repository")); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}
			return runSelfUpdate(cmd.Context(), cmd.Root().Version, v.GetString("repository"), cmd)
		},
	}
	cmd.Flags().String("repository", releaseRepository, "GitHub repository (owner/name) to update from (env SYSTEST_REPOSITORY)")
	return cmd
}

// validateRepository checks slug has the form owner/name.
func validateRepository(slug string) error {
	if slug == "" {
		return fmt.Errorf("no release repository configured: pass --repository owner/name")
	}
	owner, name, ok := strings.Cut(slug, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("invalid release repository %q: expected owner/name", slug)
	}
	return nil
}

// runSelfUpdate checks the current version against the latest release in
// repository and updates the binary if a newer one exists.
func runSelfUpdate(ctx context.Context, currentVersion, repository string, cmd *cobra.Command) error {
	// Development builds do not follow semantic versioning.
	if currentVersion == "" || currentVersion == "dev" {
		return fmt.Errorf("cannot self-update a development version")
	}
	if err := validateRepository(repository); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Current version: %s\n", currentVersion)
	fmt.Fprintln(out, "Checking for updates...")

	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create updater: %w", err)
	}

	latest, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(repository))
	if err != nil {
		return fmt.Errorf("error detecting latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest release for %s could not be found", repository)
	}

	if !latest.GreaterThan(currentVersion) {
		fmt.Fprintln(out, "Current version is the latest.")
		return nil
	}

	fmt.Fprintf(out, "Found newer version: %s (published at %s)\n", latest.Version(), latest.PublishedAt)
	fmt.Fprintf(out, "Release notes:\n%s\n", latest.ReleaseNotes)

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	fmt.Fprintf(out, "Updating %s to version %s...\n", exe, latest.Version())
	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	fmt.Fprintf(out, "Successfully updated to version %s\n", latest.Version())
	return nil
}
