package cli

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kyaoi/codepick/internal/app"
	"github.com/kyaoi/codepick/internal/tree"
)

const (
	configBaseName   = "codepick"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	envPrefix = "CODEPICK"

	serverFlagName      = "server"
	timeoutFlagName     = "timeout"
	formatFlagName      = "format"
	verboseFlagName     = "verbose"
	logFileFlagName     = "log-file"
	hardExcludeFlagName = "hard-exclude"
	softExcludeFlagName = "soft-exclude"
	codeExtFlagName     = "code-ext"
	cacheSizeFlagName   = "cache-size"
	selectedFlagName    = "selected"

	serverURLKey      = "server.url"
	serverTimeoutKey  = "server.timeout"
	hardExcludeKey    = "tree.hard_exclude"
	softExcludeKey    = "tree.soft_exclude"
	codeExtensionsKey = "tree.code_extensions"
	cacheSizeKey      = "cache.size"
	cacheTTLKey       = "cache.ttl"
	outputFormatKey   = "output.format"

	defaultServerURL     = "http://localhost:5000"
	defaultServerTimeout = 30 * time.Second
	defaultCacheSize     = 32
	defaultCacheTTL      = 2 * time.Minute
	defaultOutputFormat  = formatYAML

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".codepick.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(serverURLKey, defaultServerURL)
	viper.SetDefault(serverTimeoutKey, defaultServerTimeout)
	viper.SetDefault(hardExcludeKey, tree.DefaultHardExclude())
	viper.SetDefault(softExcludeKey, tree.DefaultSoftExclude())
	viper.SetDefault(codeExtensionsKey, tree.DefaultCodeExtensions())
	viper.SetDefault(cacheSizeKey, defaultCacheSize)
	viper.SetDefault(cacheTTLKey, defaultCacheTTL)
	viper.SetDefault(outputFormatKey, string(defaultOutputFormat))

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	_ = readConfig()
}

// readConfig loads the config file. A missing file is not an error.
func readConfig() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// configPath returns the absolute path of the config file, whether or not it
// exists yet.
func configPath() string {
	path := viper.ConfigFileUsed()
	if path == "" {
		path = filepath.Join(configFolderPath, configFileName)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func policyFromConfig() tree.Policy {
	return tree.PolicyFromLists(
		viper.GetStringSlice(hardExcludeKey),
		viper.GetStringSlice(softExcludeKey),
		viper.GetStringSlice(codeExtensionsKey),
	)
}

// reloadPolicy re-reads the config file and returns the resulting policy.
func reloadPolicy() (tree.Policy, error) {
	if err := readConfig(); err != nil {
		return tree.Policy{}, err
	}
	return policyFromConfig(), nil
}

func loaderConfig(logger *slog.Logger) app.Config {
	return app.Config{
		ServerURL: strings.TrimSpace(viper.GetString(serverURLKey)),
		Timeout:   viper.GetDuration(serverTimeoutKey),
		CacheSize: viper.GetInt(cacheSizeKey),
		CacheTTL:  viper.GetDuration(cacheTTLKey),
		Policy:    policyFromConfig(),
		Logger:    logger,
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

// configureLogger installs a slog logger writing to a rotating log file and
// returns it. The terminal belongs to the TUI, so nothing is logged there.
func configureLogger(logPath string, verbose bool) *slog.Logger {
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

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
