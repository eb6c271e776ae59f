// Package pathutil resolves file paths case-insensitively.
//
// Batches and project folders are routinely copied between Windows and
// case-sensitive filesystems, so a path read from a CSV or a project config
// ("Template.TIF", "JSON/Project_Config.json") may not match the casing on disk.
// The helpers here walk the path one component at a time and pick the entry whose
// name matches ignoring case.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolve returns the on-disk form of path, matching every component
// case-insensitively. The second return value is false when any component
// does not exist.
func Resolve(path string) (string, bool) {
	if path == "" {
		return "", false
	}

	clean := filepath.Clean(path)
	var resolved string
	var rest string
	if filepath.IsAbs(clean) {
		vol := filepath.VolumeName(clean)
		resolved = vol + string(filepath.Separator)
		rest = strings.TrimPrefix(clean[len(vol):], string(filepath.Separator))
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return "", false
		}
		resolved = wd
		rest = clean
	}

	if rest == "" || rest == "." {
		if _, err := os.Stat(resolved); err != nil {
			return "", false
		}
		return resolved, true
	}

	for _, part := range strings.Split(rest, string(filepath.Separator)) {
		switch part {
		case "", ".":
			continue
		case "..":
			resolved = filepath.Dir(resolved)
			if _, err := os.Stat(resolved); err != nil {
				return "", false
			}
			continue
		}

		entries, err := os.ReadDir(resolved)
		if err != nil {
			return "", false
		}
		// An exact match wins over a case-folded one.
		found := ""
		for _, entry := range entries {
			if entry.Name() == part {
				found = part
				break
			}
			if found == "" && strings.EqualFold(entry.Name(), part) {
				found = entry.Name()
			}
		}
		if found == "" {
			return "", false
		}
		resolved = filepath.Join(resolved, found)
	}

	return resolved, true
}

// ResolveOrOriginal resolves path case-insensitively and falls back to the
// path as given when resolution fails. Callers opening the result still get a
// not-exist error for genuinely missing files.
func ResolveOrOriginal(path string) string {
	if resolved, ok := Resolve(path); ok {
		return resolved
	}
	return path
}

// FindFile looks for a regular file called name inside dir, ignoring case.
func FindFile(dir, name string) (string, bool) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.EqualFold(entry.Name(), name) {
			return filepath.Join(dir, entry.Name()), true
		}
	}
	return "", false
}

// Equal reports whether two paths refer to the same file ignoring case.
// When both exist on disk their resolved absolute forms are compared;
// otherwise the trimmed strings are compared case-insensitively.
func Equal(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" && b == "" {
		return true
	}
	if a == "" || b == "" {
		return false
	}

	ra, okA := Resolve(a)
	rb, okB := Resolve(b)
	if okA && okB {
		absA, errA := filepath.Abs(ra)
		absB, errB := filepath.Abs(rb)
		if errA == nil && errB == nil {
			return absA == absB
		}
	}
	return strings.EqualFold(a, b)
}

// Normalize converts both Windows and POSIX separators in a CSV-supplied
// relative path to the host separator.
func Normalize(path string) string {
	path = strings.ReplaceAll(path, "\\", string(filepath.Separator))
	return strings.ReplaceAll(path, "/", string(filepath.Separator))
}
