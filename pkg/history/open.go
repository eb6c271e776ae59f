package history

import (
	"fmt"
	"log/slog"
)

// DriverMemory selects MemoryStorage.
const DriverMemory = "memory"

// Open returns the backend for driver. path is ignored for the memory backend.
func Open(driver, path string, logger *slog.Logger) (Storage, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStorage(), nil
	case DriverCGo, DriverPure, "":
		cfg := DefaultSQLiteConfig()
		if driver != "" {
			cfg.Driver = driver
		}
		if path != "" {
			cfg.Path = path
		}
		cfg.Logger = logger
		return NewSQLiteStorage(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
