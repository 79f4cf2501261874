package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.ntppool.org/common/logger"
)

// Delimiter separates the fields of a catalog row.
const Delimiter = ';'

var errMalformedRow = errors.New("malformed row")

// LoadStats summarizes a catalog load.
type LoadStats struct {
	Loaded  int
	Skipped int
}

// LoadFile reads the catalog from path. See Load for the format.
func LoadFile(ctx context.Context, path string) (*Catalog, LoadStats, error) {
	log := logger.FromContext(ctx)

	f, err := os.Open(path)
	if err != nil {
		return New(), LoadStats{}, fmt.Errorf("error reading file %s: %w", path, err)
	}
	defer f.Close()

	cat, stats, err := Load(ctx, f)
	if err != nil {
		return cat, stats, fmt.Errorf("error reading file %s: %w", path, err)
	}

	log.InfoContext(ctx, "catalog loaded", "file", path, "images", stats.Loaded, "skipped", stats.Skipped)

	return cat, stats, nil
}

// Load parses a semicolon delimited table without header. Each row is
// url;shows_left[;category...]. Rows that can't be parsed are logged and
// skipped. An error is returned only when the source itself can't be
// read; the images read up to that point are still returned.
func Load(ctx context.Context, r io.Reader) (*Catalog, LoadStats, error) {
	log := logger.FromContext(ctx)

	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	cat := New()
	stats := LoadStats{}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return cat, stats, err
		}

		line, _ := cr.FieldPos(0)

		img, err := parseRecord(record)
		if err != nil {
			log.WarnContext(ctx, "skipping catalog row", "line", line, "err", err)
			stats.Skipped++
			continue
		}

		cat.images = append(cat.images, img)
		stats.Loaded++
	}

	return cat, stats, nil
}

func parseRecord(record []string) (*Image, error) {
	if len(record) < 2 {
		return nil, fmt.Errorf("%w: expected at least 2 fields, got %d", errMalformedRow, len(record))
	}

	url := record[0]
	if len(url) == 0 {
		return nil, fmt.Errorf("%w: empty url", errMalformedRow)
	}

	showsLeft, err := strconv.Atoi(strings.TrimSpace(record[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: shows_left %q is not an integer", errMalformedRow, record[1])
	}
	if showsLeft < 0 {
		return nil, fmt.Errorf("%w: shows_left %d is negative", errMalformedRow, showsLeft)
	}

	return &Image{
		URL:        url,
		ShowsLeft:  showsLeft,
		Categories: NewCategories(record[2:]...),
	}, nil
}
