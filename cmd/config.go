// SPDX-License-Identifier: MIT

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sohamch/Onsager/transport"
)

const (
	configBaseName   = "onsager"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	envPrefix = "ONSAGER"

	verboseFlagName   = "verbose"
	logFileFlagName   = "log-file"
	meshFlagName      = "mesh"
	workersFlagName   = "workers"
	thresholdFlagName = "ratio-threshold"
	storeFlagName     = "store"
	metricsFlagName   = "metrics-file"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	gfMeshKey          = "gf.mesh"
	gfWorkersKey       = "gf.workers"
	ratioThresholdKey  = "transport.ratio_threshold"
	storePathKey       = "store.path"
	metricsFileKey     = "metrics.file"
	defaultLogFilename = ".onsager.log"

	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, false)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	viper.SetDefault(gfMeshKey, 0)
	viper.SetDefault(gfWorkersKey, 0)
	viper.SetDefault(ratioThresholdKey, transport.DefaultRatioThreshold)
	viper.SetDefault(storePathKey, "")
	viper.SetDefault(metricsFileKey, "")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return
		}

		fmt.Fprintf(os.Stderr, "onsager: ignoring %s: %v\n", viper.ConfigFileUsed(), err)
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger points the default slog logger at a rotating log file,
// at Debug when verbose and at log.level otherwise.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

// transportOptions collects the calculator settings from viper.
func transportOptions() []transport.Option {
	opts := []transport.Option{
		transport.WithLogger(globalLogger),
		transport.WithRecorder(recorder),
		transport.WithRatioThreshold(viper.GetFloat64(ratioThresholdKey)),
	}
	if n := viper.GetInt(gfMeshKey); n > 0 {
		opts = append(opts, transport.WithMesh(n))
	}
	if n := viper.GetInt(gfWorkersKey); n > 0 {
		opts = append(opts, transport.WithWorkers(n))
	}

	return opts
}
