package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"repolar/internal/source"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Mirror a date range of source rasters to a local directory",
	Long: `Download the daily source rasters for a date range into a local
mirror directory. Files already present are skipped, so an interrupted
run can simply be restarted. Days missing from the archive are logged
and skipped.

Examples:
  # Mirror one Arctic melt season
  repolar fetch --from 2024-06-01 --to 2024-09-30 --dir ./mirror

  # Mirror the Antarctic series
  repolar fetch --from 2024-06-01 --to 2024-09-30 --hemisphere south --dir ./mirror`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().String("from", "", "first date to mirror, YYYY-MM-DD (required)")
	fetchCmd.Flags().String("to", "", "last date to mirror, YYYY-MM-DD (required)")
	fetchCmd.Flags().String("dir", "mirror", "mirror directory")

	viper.BindPFlag("fetch.from", fetchCmd.Flags().Lookup("from"))
	viper.BindPFlag("fetch.to", fetchCmd.Flags().Lookup("to"))
	viper.BindPFlag("fetch.dir", fetchCmd.Flags().Lookup("dir"))
}

func runFetch(cmd *cobra.Command, args []string) error {
	from, err := time.Parse("2006-01-02", viper.GetString("fetch.from"))
	if err != nil {
		return fmt.Errorf("--from must be YYYY-MM-DD: %w", err)
	}
	to, err := time.Parse("2006-01-02", viper.GetString("fetch.to"))
	if err != nil {
		return fmt.Errorf("--to must be YYYY-MM-DD: %w", err)
	}
	if to.Before(from) {
		return fmt.Errorf("--to %s is before --from %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	hemisphere := viper.GetString("hemisphere")
	template := viper.GetString("url")
	dir := viper.GetString("fetch.dir")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	client := source.NewClient(viper.GetString("user-agent"), viper.GetDuration("timeout"))

	var fetched, skipped, missing int
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		url := source.BuildURL(template, hemisphere, day)
		dest := filepath.Join(dir, path.Base(url))

		if _, err := os.Stat(dest); err == nil {
			skipped++
			continue
		}

		data, err := client.Fetch(cmd.Context(), url)
		if err != nil {
			var unavailable *source.UnavailableError
			if errors.As(err, &unavailable) {
				slog.Warn("day not in archive", "date", day.Format("2006-01-02"), "url", url)
				missing++
				continue
			}
			return err
		}

		if err := os.WriteFile(dest, data, 0644); err != nil {
			return err
		}
		slog.Info("mirrored", "date", day.Format("2006-01-02"), "file", dest, "bytes", len(data))
		fetched++
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Mirrored %d rasters to %s (%d already present, %d missing upstream)\n",
		fetched, dir, skipped, missing)
	return nil
}
