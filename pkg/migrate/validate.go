package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

var migrationFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	gooseUp   = "-- +goose Up"
	gooseDown = "-- +goose Down"
)

// ValidateDir checks every .sql file in dir: the versioned file name, unique
// versions and an Up section ahead of a Down section. All problems are
// reported together.
func ValidateDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var errs error
	versions := make(map[string]string, len(names))
	for _, name := range names {
		match := migrationFileRe.FindStringSubmatch(name)
		if match == nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: expected YYYYMMDDHHMMSS_name.sql", name))
			continue
		}
		if prev, dup := versions[match[1]]; dup {
			errs = multierr.Append(errs, fmt.Errorf("%s: version %s already used by %s", name, match[1], prev))
			continue
		}
		versions[match[1]] = name
		errs = multierr.Append(errs, checkSections(filepath.Join(dir, name)))
	}
	return errs
}

func checkSections(path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	text := string(body)
	up, down := strings.Index(text, gooseUp), strings.Index(text, gooseDown)
	switch {
	case up < 0:
		return fmt.Errorf("%s: missing %q", filepath.Base(path), gooseUp)
	case down < 0:
		return fmt.Errorf("%s: missing %q", filepath.Base(path), gooseDown)
	case down < up:
		return fmt.Errorf("%s: down section precedes up section", filepath.Base(path))
	}
	return nil
}
