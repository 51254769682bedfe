// Package seaice derives ice-extent statistics from the daily NSIDC
// rasters: pixel counting, a sqlite-backed series store, series summaries
// and a small chart renderer.
package seaice

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"repolar/pkg/raster"
)

// datePattern matches the YYYYMMDD token in archive file names such as
// N_20240901_extent_v4.0.tif.
var datePattern = regexp.MustCompile(`_(\d{8})_`)

// DateFromName extracts the observation date from an archive file name.
func DateFromName(name string) (time.Time, error) {
	m := datePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, fmt.Errorf("no date token in %q", name)
	}
	return time.Parse("20060102", m[1])
}

// CountIce counts ice pixels in a decoded extent raster. Ice is marked
// pure white; requiring 255 in all three color channels is equivalent to
// an 8-bit luma of exactly 255.
func CountIce(img *raster.Image) (ice, total int64) {
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 255 && img.Pix[i+1] == 255 && img.Pix[i+2] == 255 {
			ice++
		}
	}
	return ice, int64(img.Width) * int64(img.Height)
}

// ScanDir walks a mirror directory, decodes every raster carrying a date
// token and counts its ice pixels. Records come back ordered by date.
func ScanDir(root, hemisphere string) ([]Record, error) {
	var recs []Record

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".tif", ".tiff", ".png", ".jpg", ".jpeg":
		default:
			return nil
		}
		day, err := DateFromName(d.Name())
		if err != nil {
			// Not an archive raster; skip.
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		img, err := raster.Decode(data)
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}

		ice, total := CountIce(img)
		recs = append(recs, Record{
			Hemisphere:  hemisphere,
			Date:        day.Format("20060102"),
			IcePixels:   ice,
			TotalPixels: total,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].Date < recs[j].Date })
	return recs, nil
}

// Summary aggregates an ice-extent series.
type Summary struct {
	Days    int     `json:"days"`
	MeanIce float64 `json:"mean_ice_pixels"`
	MinIce  int64   `json:"min_ice_pixels"`
	MaxIce  int64   `json:"max_ice_pixels"`

	// TrendPerYear is the slope of an ordinary least squares fit through
	// the series, in ice pixels per year.
	TrendPerYear float64 `json:"trend_ice_pixels_per_year"`
}

// Summarize computes series statistics. The trend uses days since the
// earliest record as the x axis and needs at least two points.
func Summarize(recs []Record) (Summary, error) {
	if len(recs) == 0 {
		return Summary{}, fmt.Errorf("no records to summarize")
	}

	days := make([]time.Time, len(recs))
	for i, r := range recs {
		d, err := time.Parse("20060102", r.Date)
		if err != nil {
			return Summary{}, fmt.Errorf("record %d has date %q: %w", i, r.Date, err)
		}
		days[i] = d
	}

	first := days[0]
	for _, d := range days[1:] {
		if d.Before(first) {
			first = d
		}
	}

	xs := make([]float64, len(recs))
	ys := make([]float64, len(recs))
	s := Summary{Days: len(recs), MinIce: recs[0].IcePixels, MaxIce: recs[0].IcePixels}
	for i, r := range recs {
		xs[i] = days[i].Sub(first).Hours() / 24
		ys[i] = float64(r.IcePixels)
		if r.IcePixels < s.MinIce {
			s.MinIce = r.IcePixels
		}
		if r.IcePixels > s.MaxIce {
			s.MaxIce = r.IcePixels
		}
	}

	s.MeanIce = stat.Mean(ys, nil)
	if len(recs) >= 2 {
		_, beta := stat.LinearRegression(xs, ys, nil, false)
		s.TrendPerYear = beta * 365.25
	}
	return s, nil
}
