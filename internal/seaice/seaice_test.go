package seaice

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"repolar/pkg/raster"
)

func TestDateFromName(t *testing.T) {
	testCases := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "N_20240901_extent_v4.0.tif", want: "20240901"},
		{name: "S_20150228_extent_v4.0.tif", want: "20150228"},
		{name: "N_20240901_concentration_v4.0.png", want: "20240901"},
		{name: "readme.txt", wantErr: true},
		{name: "N_202409_extent_v4.0.tif", wantErr: true},
	}

	for _, tc := range testCases {
		day, err := DateFromName(tc.name)
		if tc.wantErr {
			if err == nil {
				t.Errorf("DateFromName(%q) succeeded, want error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("DateFromName(%q) failed: %v", tc.name, err)
			continue
		}
		if got := day.Format("20060102"); got != tc.want {
			t.Errorf("DateFromName(%q) = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestCountIce(t *testing.T) {
	im := raster.New(4, 2)
	white := [4]byte{255, 255, 255, 255}
	nearWhite := [4]byte{255, 255, 254, 255}
	copy(im.Pix[0:4], white[:])
	copy(im.Pix[4:8], nearWhite[:])
	copy(im.Pix[28:32], white[:])

	ice, total := CountIce(im)
	if ice != 2 {
		t.Errorf("CountIce ice = %d, want 2", ice)
	}
	if total != 8 {
		t.Errorf("CountIce total = %d, want 8", total)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()

	writeRaster := func(name string, whitePixels int) {
		t.Helper()
		im := raster.New(4, 4)
		for i := 0; i < whitePixels; i++ {
			copy(im.Pix[i*4:i*4+4], []byte{255, 255, 255, 255})
		}
		data, err := im.EncodePNG()
		if err != nil {
			t.Fatalf("EncodePNG failed: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	writeRaster("N_20240902_extent_v4.0.png", 5)
	writeRaster("N_20240901_extent_v4.0.png", 3)
	// No date token; must be skipped.
	writeRaster("legend.png", 1)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	recs, err := ScanDir(dir, "north")
	if err != nil {
		t.Fatalf("ScanDir failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("ScanDir returned %d records, want 2", len(recs))
	}
	if recs[0].Date != "20240901" || recs[1].Date != "20240902" {
		t.Errorf("Records out of date order: %+v", recs)
	}
	if recs[0].IcePixels != 3 || recs[1].IcePixels != 5 {
		t.Errorf("Ice counts %d/%d, want 3/5", recs[0].IcePixels, recs[1].IcePixels)
	}
	if recs[0].TotalPixels != 16 {
		t.Errorf("Total pixels %d, want 16", recs[0].TotalPixels)
	}
	if recs[0].Hemisphere != "north" {
		t.Errorf("Hemisphere %q, want north", recs[0].Hemisphere)
	}
}

func TestSummarize(t *testing.T) {
	// A perfectly linear series: 100 more ice pixels per day.
	recs := []Record{
		{Hemisphere: "north", Date: "20240901", IcePixels: 1000, TotalPixels: 16},
		{Hemisphere: "north", Date: "20240902", IcePixels: 1100, TotalPixels: 16},
		{Hemisphere: "north", Date: "20240903", IcePixels: 1200, TotalPixels: 16},
	}

	s, err := Summarize(recs)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if s.Days != 3 {
		t.Errorf("Days = %d, want 3", s.Days)
	}
	if s.MeanIce != 1100 {
		t.Errorf("MeanIce = %v, want 1100", s.MeanIce)
	}
	if s.MinIce != 1000 || s.MaxIce != 1200 {
		t.Errorf("Min/Max = %d/%d, want 1000/1200", s.MinIce, s.MaxIce)
	}
	if want := 100 * 365.25; math.Abs(s.TrendPerYear-want) > 1e-6 {
		t.Errorf("TrendPerYear = %v, want %v", s.TrendPerYear, want)
	}
}

func TestSummarizeSinglePoint(t *testing.T) {
	s, err := Summarize([]Record{{Hemisphere: "north", Date: "20240901", IcePixels: 42, TotalPixels: 16}})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.TrendPerYear != 0 {
		t.Errorf("TrendPerYear = %v for one point, want 0", s.TrendPerYear)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if _, err := Summarize(nil); err == nil {
		t.Error("Expected an error for an empty series")
	}
}
