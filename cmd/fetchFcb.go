package cmd

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-github/github"
	"github.com/spf13/cobra"
)

func init() {
	fetchFcbCmd.Flags().StringVarP(&fcbTag, "tag", "t", "", "release tag to fetch (latest when empty)")
	fetchFcbCmd.Flags().StringVarP(&fcbAsset, "asset", "a", "", "single asset name to fetch (all .bin assets when empty)")
	fetchFcbCmd.Flags().StringVar(&fcbRepo, "repo", "fcmtools/rw61x-fcb", "github owner/repo holding FCB releases")
	rootCmd.AddCommand(fetchFcbCmd)
}

var (
	fcbTag   string
	fcbAsset string
	fcbRepo  string
)

var fetchFcbCmd = &cobra.Command{
	Use:   "fetch-fcb",
	Short: "Download FCB files from a github release into the asset directory",
	Long: `Downloads flash-configuration-block binaries from a tagged github release,
or the latest release when no tag is given, and stores them in the FCB
asset directory used by the erase, write, and read commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		parts := strings.SplitN(fcbRepo, "/", 2)
		if len(parts) != 2 {
			failf("repo must be in owner/repo form: %s", fcbRepo)
		}
		owner, repo := parts[0], parts[1]

		client := github.NewClient(nil)
		ctx := context.Background()

		var (
			release *github.RepositoryRelease
			err     error
		)
		if fcbTag != "" {
			release, _, err = client.Repositories.GetReleaseByTag(ctx, owner, repo, fcbTag)
		} else {
			release, _, err = client.Repositories.GetLatestRelease(ctx, owner, repo)
		}
		if err != nil {
			failf("unable to fetch release (tag %q): %v", fcbTag, err)
		}

		if err := os.MkdirAll(fcbDir(), 0755); err != nil {
			failf("cannot create FCB directory: %v", err)
		}

		var fetched int
		for _, asset := range release.Assets {
			name := asset.GetName()
			if fcbAsset != "" && name != fcbAsset {
				continue
			}
			if fcbAsset == "" && !strings.HasSuffix(name, ".bin") {
				continue
			}

			if err := downloadAsset(asset.GetBrowserDownloadURL(), filepath.Join(fcbDir(), name)); err != nil {
				failf("%v", err)
			}
			fmt.Printf("Fetched %s\n", name)
			fetched++
		}

		if fetched == 0 {
			failf("no matching asset in release %s", release.GetTagName())
		}
		successf("%d FCB file(s) stored in %s", fetched, fcbDir())
	},
}

func downloadAsset(url, dest string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: %s", url, resp.Status)
	}
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	return ioutil.WriteFile(dest, body, 0644)
}
