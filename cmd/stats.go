package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"repolar/internal/seaice"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count ice pixels in a mirror directory and summarize the series",
	Long: `Scan a mirror directory of daily rasters, count the ice pixels in
each, store the counts in a sqlite database and print a summary of the
series (mean, min, max and linear trend). Optionally render the series
as a PNG line chart.

Examples:
  # Count a mirrored melt season and store the series
  repolar stats --dir ./mirror --db seaice.db

  # Also render a chart
  repolar stats --dir ./mirror --db seaice.db --chart extent.png`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().String("dir", "mirror", "mirror directory to scan")
	statsCmd.Flags().String("db", "seaice.db", "statistics database path")
	statsCmd.Flags().String("chart", "", "write a PNG line chart of the series")
	statsCmd.Flags().Int("chart-width", 800, "chart width in pixels")
	statsCmd.Flags().Int("chart-height", 400, "chart height in pixels")

	viper.BindPFlag("stats.dir", statsCmd.Flags().Lookup("dir"))
	viper.BindPFlag("stats.db", statsCmd.Flags().Lookup("db"))
	viper.BindPFlag("stats.chart", statsCmd.Flags().Lookup("chart"))
	viper.BindPFlag("stats.chart-width", statsCmd.Flags().Lookup("chart-width"))
	viper.BindPFlag("stats.chart-height", statsCmd.Flags().Lookup("chart-height"))
}

func runStats(cmd *cobra.Command, args []string) error {
	hemisphere := viper.GetString("hemisphere")

	recs, err := seaice.ScanDir(viper.GetString("stats.dir"), hemisphere)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return fmt.Errorf("no dated rasters found in %s", viper.GetString("stats.dir"))
	}

	db, err := seaice.Open(viper.GetString("stats.db"), false)
	if err != nil {
		return err
	}
	if err := seaice.Upsert(db, recs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Stored %d records for %s in %s\n",
		len(recs), hemisphere, viper.GetString("stats.db"))

	summary, err := seaice.Summarize(recs)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return err
	}

	if chart := viper.GetString("stats.chart"); chart != "" {
		data, err := seaice.Chart(recs, viper.GetInt("stats.chart-width"), viper.GetInt("stats.chart-height"))
		if err != nil {
			return err
		}
		if err := os.WriteFile(chart, data, 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Chart written to '%s'.\n", chart)
	}

	return nil
}
