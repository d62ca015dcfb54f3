package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/the-recircle-app/veconnect/internal/cache"
	"github.com/the-recircle-app/veconnect/internal/config"
	"github.com/the-recircle-app/veconnect/internal/version"
)

var (
	// versionCheck toggles the release check against GitHub.
	versionCheck bool

	// versionNoCache bypasses the cached release check result.
	versionNoCache bool
)

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Print the veconnect version, commit, and build date.

With --check, query GitHub for the latest release and report whether
an update is available.`,
	RunE: runVersion,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check for a newer release")
	versionCmd.Flags().BoolVar(&versionNoCache, "no-cache", false, "bypass the cached release check result")
}

type versionJSON struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Latest  string `json:"latest,omitempty"`
	Update  *bool  `json:"update_available,omitempty"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	info := versionJSON{
		Version: version.Version,
		Commit:  version.Commit,
		Date:    version.Date,
	}

	if versionCheck {
		latest, err := latestReleaseTag(cmd)
		if err != nil {
			return err
		}
		newer := version.IsNewer(version.Version, latest)
		info.Latest = latest
		info.Update = &newer
	}

	w := cmd.OutOrStdout()
	if formatter.IsJSON() {
		return writeJSON(w, info)
	}

	out(w, "veconnect %s\n", info.Version)
	out(w, "  commit: %s\n", info.Commit)
	out(w, "  built:  %s\n", info.Date)
	if versionCheck {
		if info.Update != nil && *info.Update {
			out(w, "\nUpdate available: %s\n", info.Latest)
		} else {
			out(w, "\nUp to date (latest: %s)\n", info.Latest)
		}
	}
	return nil
}

// latestReleaseTag resolves the latest release tag, consulting the local
// cache before the GitHub API.
func latestReleaseTag(cmd *cobra.Command) (string, error) {
	releases := cache.NewReleaseCache(
		filepath.Join(config.ExpandHome(cfg.Home), "release-check.json"),
		cache.DefaultTTL,
	)

	if !versionNoCache {
		if entry, ok := releases.Get(); ok {
			return entry.TagName, nil
		}
	}

	client := version.NewClient()
	release, err := client.LatestRelease(cmd.Context())
	if err != nil {
		return "", err
	}

	if err := releases.Put(cache.Entry{TagName: release.TagName}); err != nil {
		logger.Warn("failed to cache release check", zap.Error(err))
	}
	return release.TagName, nil
}
