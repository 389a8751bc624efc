package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"spatial-plot/internal/domain"
)

// Overrides are command line values layered over the config file.
// Zero fields leave the file value alone.
type Overrides struct {
	Input    string
	LogLevel string
	Backend  string
	NRows    int
	NCols    int
}

type FileConfigReader struct {
	logger    *zap.Logger
	overrides Overrides
}

func NewFileConfigReader(logger *zap.Logger, overrides Overrides) *FileConfigReader {
	return &FileConfigReader{logger: logger, overrides: overrides}
}

// ReadConfig decodes path as TOML when it ends in .toml and as YAML
// otherwise, then applies overrides and defaults.
func (r *FileConfigReader) ReadConfig(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config domain.Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	r.applyOverrides(&config)
	r.setDefaults(&config)

	r.logger.Debug("config loaded",
		zap.String("path", path),
		zap.String("input", config.Input),
		zap.Float64("margin", config.AutoscaleMargin()),
		zap.Int("nrows", config.Layout.NRows),
		zap.Int("ncols", config.Layout.NCols))

	return &config, nil
}

func (r *FileConfigReader) applyOverrides(config *domain.Config) {
	o := r.overrides
	if o.Input != "" {
		config.Input = o.Input
	}
	if o.LogLevel != "" {
		config.LogLevel = o.LogLevel
	}
	if o.Backend != "" {
		config.Figure.Backend = o.Backend
	}
	if o.NRows != 0 {
		config.Layout.NRows = o.NRows
	}
	if o.NCols != 0 {
		config.Layout.NCols = o.NCols
	}
}

func (r *FileConfigReader) setDefaults(config *domain.Config) {
	if config.Input == "" {
		config.Input = "circles.txt"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.Margin == nil {
		margin := domain.DefaultMargin
		config.Margin = &margin
	}
	if config.Layout.NRows == 0 {
		config.Layout.NRows = 1
	}
	if config.Layout.NCols == 0 {
		config.Layout.NCols = 1
	}
}
