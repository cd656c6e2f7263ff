package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/yourorg/quotevault/internal/domain"
	"github.com/yourorg/quotevault/internal/reliability/retry"
)

// Importer seeds the catalog from a CSV file of (quote, source, tags)
// rows at first run. It has no special bulk path into the store: each row
// becomes one repository Create call.
type Importer struct {
	repo     domain.QuoteRepository
	logger   *slog.Logger
	retryCfg *retry.Config
}

// New creates a new seed importer
func New(repo domain.QuoteRepository, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		repo:     repo,
		logger:   logger,
		retryCfg: retry.DefaultConfig(),
	}
}

// SeedIfEmpty imports the CSV file only when the catalog is empty.
// A missing file is not an error; the server just starts with an empty
// catalog. Returns the number of quotes imported.
func (i *Importer) SeedIfEmpty(ctx context.Context, csvPath string) (int, error) {
	count, err := i.repo.Count()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		i.logger.Debug("catalog not empty, skipping seed import",
			slog.Int64("quotes", count),
		)
		return 0, nil
	}

	f, err := os.Open(csvPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			i.logger.Info("no seed file, starting with empty catalog",
				slog.String("path", csvPath),
			)
			return 0, nil
		}
		return 0, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	imported, err := i.importAll(ctx, csv.NewReader(f))
	if err != nil {
		return imported, err
	}

	i.logger.Info("seed import complete",
		slog.String("path", csvPath),
		slog.Int("quotes", imported),
	)
	return imported, nil
}

func (i *Importer) importAll(ctx context.Context, r *csv.Reader) (int, error) {
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read seed header: %w", err)
	}

	cols := map[string]int{}
	for idx, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = idx
	}
	for _, required := range []string{"quote", "source", "tags"} {
		if _, ok := cols[required]; !ok {
			return 0, fmt.Errorf("seed file missing %q column", required)
		}
	}

	imported := 0
	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("failed to read seed row: %w", err)
		}

		text := strings.TrimSpace(record[cols["quote"]])
		source := strings.TrimSpace(record[cols["source"]])
		if text == "" || source == "" {
			i.logger.Warn("skipping seed row with empty quote or source",
				slog.Int("line", line),
			)
			continue
		}

		tags := splitTags(record[cols["tags"]])

		// Transient store failures are the importer's to retry; the
		// repository itself never does.
		err = retry.Do(ctx, i.retryCfg, i.logger, "seed quote", func(ctx context.Context) error {
			_, createErr := i.repo.Create(text, source, tags)
			return createErr
		})
		if err != nil {
			return imported, fmt.Errorf("failed to import seed row %d: %w", line, err)
		}
		imported++
	}

	return imported, nil
}

// splitTags turns the comma-separated tag column into a deduplicated
// list, preserving first-seen order.
func splitTags(raw string) []string {
	seen := map[string]bool{}
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, name)
	}
	return tags
}
