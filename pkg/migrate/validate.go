package migrate

import (
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

const versionLayout = "20060102150405"

// Validate checks every .sql file in migrations: a 14 digit version prefix
// that is unique, both goose direction markers, and balanced statement
// blocks. All problems are reported together.
func Validate(migrations fs.FS) error {
	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	var errs error
	versions := map[int64]string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".sql" {
			continue
		}

		version, err := parseVersion(name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if prev, ok := versions[version]; ok {
			errs = multierr.Append(errs, fmt.Errorf("version %d used by %s and %s", version, prev, name))
			continue
		}
		versions[version] = name

		body, err := fs.ReadFile(migrations, name)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %s: %w", name, err))
			continue
		}
		errs = multierr.Append(errs, checkAnnotations(name, string(body)))
	}

	if errs == nil && len(versions) == 0 {
		return fmt.Errorf("no migrations found")
	}
	return errs
}

func parseVersion(name string) (int64, error) {
	prefix, rest, ok := strings.Cut(strings.TrimSuffix(name, ".sql"), "_")
	if !ok || len(prefix) != len(versionLayout) || rest == "" || rest != sanitizeName(rest) {
		return 0, fmt.Errorf("%s: expected <YYYYMMDDHHMMSS>_<snake_name>.sql", name)
	}
	version, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: version %q is not numeric", name, prefix)
	}
	return version, nil
}

func checkAnnotations(name, body string) error {
	var errs error
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !strings.Contains(body, marker) {
			errs = multierr.Append(errs, fmt.Errorf("%s: missing %q", name, marker))
		}
	}
	begins := strings.Count(body, "-- +goose StatementBegin")
	ends := strings.Count(body, "-- +goose StatementEnd")
	if begins != ends {
		errs = multierr.Append(errs, fmt.Errorf("%s: %d StatementBegin vs %d StatementEnd", name, begins, ends))
	}
	return errs
}
