package main

import (
	"flag"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"spatial-plot/internal/app"
	"spatial-plot/internal/infrastructure"
	"spatial-plot/pkg/plotting"
	_ "spatial-plot/pkg/plotting/raster"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file (.yaml or .toml)")
	input := flag.String("input", "", "Circle table, overrides the config")
	logLevel := flag.String("log-level", "", "Log level")
	backend := flag.String("backend", "", "Plotting backend")
	nrows := flag.Int("nrows", 0, "Subplot rows")
	ncols := flag.Int("ncols", 0, "Subplot columns")
	flag.Parse()

	logger := initLogger("info")
	defer logger.Sync()

	configReader := infrastructure.NewFileConfigReader(logger, infrastructure.Overrides{
		Input:    *input,
		LogLevel: *logLevel,
		Backend:  *backend,
		NRows:    *nrows,
		NCols:    *ncols,
	})
	config, err := configReader.ReadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to read config", zap.Error(err))
	}

	if config.LogFile != "" {
		logger = initLogger(config.LogLevel, config.LogFile)
	} else {
		logger = initLogger(config.LogLevel)
	}
	plotting.SetLogger(logger.Named("plotting"))

	reader := infrastructure.NewTXTCircleReader(logger)
	checker := app.NewCircleChecker(logger, config)

	records, err := reader.ReadCircles(config.Input)
	if err != nil {
		logger.Fatal("Failed to read circles", zap.String("file", config.Input), zap.Error(err))
	}

	logger.Info("Starting circle check",
		zap.String("input", config.Input),
		zap.Int("records", len(records)),
		zap.Strings("backends", plotting.Backends()))

	report, err := checker.Check(records)
	if err != nil {
		logger.Fatal("Circle check failed", zap.Error(err))
	}

	for _, rejection := range report.Rejected {
		logger.Error("Rejected record",
			zap.Int("line", rejection.Line),
			zap.String("reason", rejection.Reason))
	}

	logger.Info("Figure summary",
		zap.String("backend", report.BackendKey),
		zap.Ints("pixels", report.PixelSize[:]),
		zap.Any("views", report.Views))

	if !report.OK() {
		logger.Sync()
		os.Exit(1)
	}
}

// initLogger initializes the logger with the specified level and log file name.
func initLogger(level string, logfileName ...string) *zap.Logger {
	config := zap.NewProductionConfig()

	switch level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	outputPath := []string{"stderr"}
	if len(logfileName) > 0 {
		outputPath = append(outputPath, logfileName...)
	}

	config.OutputPaths = outputPath
	config.ErrorOutputPaths = outputPath
	config.EncoderConfig.TimeKey = "t"
	config.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return zap.NewExample()
	}
	return logger
}
