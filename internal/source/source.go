// Package source loads sea-ice source rasters, either from the NSIDC
// archive over HTTP or from a local mirror directory.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"repolar/pkg/raster"
)

// DefaultArchiveTemplate addresses the NSIDC Sea Ice Index (G02135) daily
// GeoTIFF archive.
const DefaultArchiveTemplate = "https://noaadata.apps.nsidc.org/NOAA/G02135/{hemisphere}/daily/geotiff/{year}/{monthname}/{initial}_{date}_extent_v4.0.tif"

// UnavailableError reports a source raster that could not be fetched or
// decoded.
type UnavailableError struct {
	Ref        string
	StatusCode int // zero when the failure was not an HTTP status
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("source %s unavailable: HTTP %d", e.Ref, e.StatusCode)
	}
	return fmt.Sprintf("source %s unavailable: %v", e.Ref, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// BuildURL expands an archive URL template for one hemisphere and day.
// Tokens: {hemisphere}, {initial} (N or S), {year}, {month}, {monthname}
// (the NSIDC 01_Jan directory style), {day} and {date} (YYYYMMDD).
func BuildURL(template, hemisphere string, day time.Time) string {
	initial := "N"
	if strings.HasPrefix(strings.ToLower(hemisphere), "s") {
		initial = "S"
	}

	url := template
	url = strings.ReplaceAll(url, "{hemisphere}", hemisphere)
	url = strings.ReplaceAll(url, "{initial}", initial)
	url = strings.ReplaceAll(url, "{year}", day.Format("2006"))
	url = strings.ReplaceAll(url, "{month}", day.Format("01"))
	url = strings.ReplaceAll(url, "{monthname}", day.Format("01_Jan"))
	url = strings.ReplaceAll(url, "{day}", day.Format("02"))
	url = strings.ReplaceAll(url, "{date}", day.Format("20060102"))
	return url
}

// Client loads source rasters over HTTP.
type Client struct {
	client    *http.Client
	userAgent string
}

// NewClient builds a client. The timeout bounds each whole request.
func NewClient(userAgent string, timeout time.Duration) *Client {
	return &Client{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch returns the raw bytes behind ref.
func (c *Client) Fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", ref, nil)
	if err != nil {
		return nil, &UnavailableError{Ref: ref, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Ref: ref, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UnavailableError{Ref: ref, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{Ref: ref, Err: err}
	}
	return data, nil
}

// Load fetches ref and decodes it, satisfying reproject.Loader.
func (c *Client) Load(ctx context.Context, ref string) (*raster.Image, error) {
	data, err := c.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	img, err := raster.Decode(data)
	if err != nil {
		return nil, &UnavailableError{Ref: ref, Err: err}
	}

	slog.Debug("loaded source raster", "ref", ref, "width", img.Width, "height", img.Height)
	return img, nil
}

// Dir loads rasters from a local mirror directory (see the fetch command).
// The ref is a path relative to the root.
type Dir struct {
	Root string
}

// Load reads and decodes one mirrored raster, satisfying reproject.Loader.
func (d Dir) Load(ctx context.Context, ref string) (*raster.Image, error) {
	data, err := os.ReadFile(filepath.Join(d.Root, ref))
	if err != nil {
		return nil, &UnavailableError{Ref: ref, Err: err}
	}

	img, err := raster.Decode(data)
	if err != nil {
		return nil, &UnavailableError{Ref: ref, Err: err}
	}
	return img, nil
}
