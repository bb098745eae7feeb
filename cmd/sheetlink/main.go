// Command sheetlink evaluates linked spreadsheet tables.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sheetlink/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sheetlink/internal/adapters/driven/render/xlsx"
	"github.com/custodia-labs/sheetlink/internal/adapters/driven/source/api"
	sourcemem "github.com/custodia-labs/sheetlink/internal/adapters/driven/source/memory"
	"github.com/custodia-labs/sheetlink/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sheetlink/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sheetlink/internal/adapters/driving/cli"
	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driven"
	"github.com/custodia-labs/sheetlink/internal/core/services"
	"github.com/custodia-labs/sheetlink/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

// Environment variables that override the config file.
const (
	envToken   = "SHEETLINK_TOKEN"
	envBaseURL = "SHEETLINK_BASE_URL"
)

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires adapters into services for one command invocation.
func bootstrap(opts cli.GlobalOptions) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger.Debug("Config file: %s", configStore.Path())

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	applyEnv(&settings.API)

	var source driven.TableSource
	if opts.Demo {
		logger.Info("Using built-in sample tables")
		source = sourcemem.NewSource(sourcemem.SampleTables()...)
	} else {
		source = apiSource(settings.API)
	}

	store, closeStore, err := tableStore(opts, settings.Cache, configStore.Path())
	if err != nil {
		return nil, err
	}

	loader := services.NewWorkbookLoader(source, store)
	return &cli.Services{
		Workbook: services.NewWorkbookService(loader, xlsx.Factory{}),
		Tables:   services.NewTableService(source, store),
		Settings: settingsService,
		Close:    closeStore,
	}, nil
}

// applyEnv overrides API settings from the environment.
func applyEnv(s *domain.APISettings) {
	if v := strings.TrimSpace(os.Getenv(envToken)); v != "" {
		s.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(envBaseURL)); v != "" {
		s.BaseURL = v
	}
}

// apiSource builds the HTTP source. Without a usable configuration every
// call fails, so cached tables are still served and settings commands work.
func apiSource(s domain.APISettings) driven.TableSource {
	client, err := api.NewClient(api.ConfigFromSettings(s))
	if err != nil {
		if errors.Is(err, domain.ErrAuthRequired) {
			logger.Warn("No API token; set %s or run 'sheetlink settings token'", envToken)
		} else {
			logger.Warn("API client unavailable: %v", err)
		}
		return unavailableSource{err: err}
	}
	logger.Debug("API base URL: %s", s.BaseURL)
	return client
}

// tableStore opens the sqlite cache when enabled. Demo mode never touches disk.
func tableStore(opts cli.GlobalOptions, cache domain.CacheSettings, configPath string) (driven.TableStore, func() error, error) {
	if opts.Demo || !cache.Enabled {
		return memory.NewTableStore(), nil, nil
	}

	dir := cache.Dir
	if dir == "" && opts.ConfigDir != "" {
		dir = filepath.Join(filepath.Dir(configPath), "data")
	}
	store, err := sqlite.NewStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}
	logger.Debug("Table cache: %s", store.Path())
	return store.TableStore(), store.Close, nil
}

// unavailableSource fails every call with the configuration error.
type unavailableSource struct {
	err error
}

func (s unavailableSource) ListTables(_ context.Context) ([]domain.TableSummary, error) {
	return nil, s.err
}

func (s unavailableSource) GetTable(_ context.Context, _ string) (*domain.TableDefinition, error) {
	return nil, s.err
}
