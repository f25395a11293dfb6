package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/atlas-desktop/quantback/internal/datastore"
	"github.com/atlas-desktop/quantback/pkg/config"
)

var (
	cfgFile  string
	dataDir  string
	logLevel string

	logger *zap.Logger
	cfg    config.Config
	store  *datastore.FileStore
)

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "Historical strategy backtester: single runs, parameter search, and a job server",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (YAML/JSON/TOML, QUANTBACK_ env vars also apply)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "./data", "data directory for the file-backed DataStore")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cobra.OnInitialize(initCommon)
}

func initCommon() {
	logger = setupLogger(logLevel)

	loaded, err := config.Load(cfgFile)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	cfg = loaded

	fs, err := datastore.NewFileStore(logger, dataDir)
	if err != nil {
		logger.Fatal("failed to initialize data store", zap.String("dataDir", dataDir), zap.Error(err))
	}
	store = fs
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	zcfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	built, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return built
}
