package watch

import (
	"path/filepath"
	"time"

	"formzone-hq/indexer/pkg/pathutil"
	"formzone-hq/indexer/pkg/project"
)

// ForProject returns a watcher configuration covering the project's json/
// folder and, when configured, its lookup list.
func ForProject(projectFolder string, cfg *project.Config, debounce time.Duration) *Config {
	wc := DefaultConfig()
	if debounce > 0 {
		wc.DebounceInterval = debounce
	}

	jsonFolder := filepath.Join(projectFolder, project.JSONFolder)
	wc.Dirs = []string{pathutil.ResolveOrOriginal(jsonFolder)}

	if cfg != nil && cfg.HasLookup() {
		lookup := pathutil.Normalize(cfg.LookupList)
		if !filepath.IsAbs(lookup) {
			lookup = filepath.Join(projectFolder, lookup)
		}
		wc.Files = []string{pathutil.ResolveOrOriginal(lookup)}
	}
	return wc
}
