package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"repolar/internal/reproject"
	"repolar/internal/source"
	"repolar/pkg/projection"
	"repolar/pkg/raster"
)

const version = "1.0.0"

// NSIDC grid footprints in projected meters (EPSG:3413 / EPSG:3031).
const (
	defaultNorthExtent = "-3850000,-5350000,3750000,5850000"
	defaultSouthExtent = "-3950000,-3950000,3950000,4350000"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "repolar",
	Short: "Reproject polar sea-ice rasters onto an equirectangular grid",
	Long: `repolar fetches daily sea-ice rasters from the NSIDC archive and
reprojects them from their polar stereographic grid (EPSG:3413 north,
EPSG:3031 south) onto an equirectangular longitude/latitude grid. The
output is a 2:1 RGBA PNG; pixels outside the source footprint are fully
transparent, so the image drapes directly onto a globe texture.

Examples:
  # Arctic overlay for one day, 2048 pixels wide
  repolar --date 2024-09-01 -o arctic.png

  # Antarctic overlay with a georeferencing world file
  repolar --date 2024-09-01 --hemisphere south --width 4096 -w -o antarctic.png

  # Reproject from a local mirror (see: repolar fetch)
  repolar --date 2024-09-01 --mirror ./mirror -o arctic.png

  # Start the HTTP server
  repolar serve --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("date") && !viper.IsSet("date") {
			return cmd.Help()
		}
		return runReproject(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.repolar.yaml)")

	// Output options
	rootCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	rootCmd.Flags().BoolP("worldfile", "w", false, "write a world file next to the output")

	// Overlay options
	rootCmd.Flags().String("date", "", "observation date as YYYY-MM-DD (required)")
	rootCmd.Flags().String("hemisphere", "north", "hemisphere (north|south)")
	rootCmd.Flags().Int("width", 2048, "output width in pixels; height is always width/2")
	rootCmd.Flags().String("extent-north", defaultNorthExtent, "north source extent as minx,miny,maxx,maxy meters")
	rootCmd.Flags().String("extent-south", defaultSouthExtent, "south source extent as minx,miny,maxx,maxy meters")

	// Source options
	rootCmd.Flags().StringP("url", "u", source.DefaultArchiveTemplate, "archive URL template")
	rootCmd.Flags().String("mirror", "", "load from a local mirror directory instead of HTTP")
	rootCmd.Flags().Duration("timeout", 60*time.Second, "fetch and sweep timeout")
	rootCmd.Flags().String("user-agent", "repolar/"+version, "HTTP User-Agent header")

	// Bind flags to viper for root command
	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("worldfile", rootCmd.Flags().Lookup("worldfile"))
	viper.BindPFlag("date", rootCmd.Flags().Lookup("date"))
	viper.BindPFlag("hemisphere", rootCmd.Flags().Lookup("hemisphere"))
	viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	viper.BindPFlag("extent-north", rootCmd.Flags().Lookup("extent-north"))
	viper.BindPFlag("extent-south", rootCmd.Flags().Lookup("extent-south"))
	viper.BindPFlag("url", rootCmd.Flags().Lookup("url"))
	viper.BindPFlag("mirror", rootCmd.Flags().Lookup("mirror"))
	viper.BindPFlag("timeout", rootCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("user-agent", rootCmd.Flags().Lookup("user-agent"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".repolar" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".repolar")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// overlayOptions assembles the reprojection request from the bound
// configuration for one hemisphere and day.
func overlayOptions(hemisphere string, day time.Time) (reproject.Options, error) {
	variant, err := projection.ParseVariant(hemisphere)
	if err != nil {
		return reproject.Options{}, err
	}

	extentStr := viper.GetString("extent-north")
	if variant == projection.South {
		extentStr = viper.GetString("extent-south")
	}
	extent, err := projection.ParseExtent(extentStr)
	if err != nil {
		return reproject.Options{}, err
	}

	return reproject.Options{
		SourceRef:  source.BuildURL(viper.GetString("url"), variant.Name, day),
		Extent:     extent,
		Hemisphere: variant,
		Width:      viper.GetInt("width"),
	}, nil
}

func runReproject(cmd *cobra.Command, args []string) error {
	day, err := time.Parse("2006-01-02", viper.GetString("date"))
	if err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}

	opts, err := overlayOptions(viper.GetString("hemisphere"), day)
	if err != nil {
		return err
	}

	var loader reproject.Loader
	if mirror := viper.GetString("mirror"); mirror != "" {
		// In mirror mode the ref is the archive file name, not the URL.
		opts.SourceRef = source.BuildURL("{initial}_{date}_extent_v4.0.tif", opts.Hemisphere.Name, day)
		loader = source.Dir{Root: mirror}
	} else {
		loader = source.NewClient(viper.GetString("user-agent"), viper.GetDuration("timeout"))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
	defer cancel()

	src, err := loader.Load(ctx, opts.SourceRef)
	if err != nil {
		return err
	}

	out, err := reproject.Reproject(ctx, src, opts)
	if err != nil {
		return err
	}

	data, err := out.EncodePNG()
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	output := viper.GetString("output")
	if output == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(output, data, 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Output PNG: %s (%dx%d)\n", output, out.Width, out.Height)
	}

	if viper.GetBool("worldfile") {
		if output == "" {
			return fmt.Errorf("can't write a world file when writing to stdout")
		}
		// Degrees per pixel, referenced to the top-left corner.
		wf := raster.WorldFile(360/float64(out.Width), 180/float64(out.Height), -180, 90)
		wfPath := raster.WorldFilePath(output)
		if err := os.WriteFile(wfPath, wf, 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "World file written to '%s'.\n", wfPath)
	}

	return nil
}
