package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode         string `yaml:"mode"`
	DatabasePath string `yaml:"database_path"`
	MCPAddress   string `yaml:"mcp_address"`
	LogLevel     string `yaml:"log_level"`
	// SessionUID is the signed-in user the CLI modes act as.
	SessionUID string `yaml:"session_uid"`
}

// Load builds the config from an optional YAML file, environment variables,
// and flags, in rising precedence.
func Load() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".zivox")

	cfg := &Config{
		Mode:         "server",
		DatabasePath: filepath.Join(dataDir, "zivox.db"),
		MCPAddress:   "127.0.0.1:8080",
		LogLevel:     "info",
	}

	// The file path is resolved ahead of flag parsing so its values can seed
	// the flag defaults. Env and explicit flags then override it.
	configPath := getEnv("ZIVOX_CONFIG", "")
	if p := configPathArg(args); p != "" {
		configPath = p
	}
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yaml.Unmarshal(data, cfg)
		}
	}

	fs := flag.NewFlagSet("zivox", flag.ExitOnError)
	fs.String("config", configPath, "Optional YAML config file")
	fs.StringVar(&cfg.Mode, "mode", getEnv("ZIVOX_MODE", cfg.Mode), "Run mode: server, interactive, or headless")
	fs.StringVar(&cfg.DatabasePath, "db", getEnv("ZIVOX_DATABASE_PATH", cfg.DatabasePath), "Database file path")
	fs.StringVar(&cfg.MCPAddress, "mcp-port", getEnv("ZIVOX_MCP_ADDRESS", cfg.MCPAddress), "MCP SSE server address")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("ZIVOX_LOG_LEVEL", cfg.LogLevel), "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.SessionUID, "uid", getEnv("ZIVOX_SESSION_UID", cfg.SessionUID), "Signed-in user id for CLI modes")
	fs.Parse(args)

	// Ensure directories exist
	os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755)

	return cfg
}

// configPathArg pre-scans args for the config flag; the file must be read
// before the other flags register their defaults.
func configPathArg(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := strings.TrimPrefix(args[i], "-")
		arg = strings.TrimPrefix(arg, "-")
		if arg == "config" {
			if i+1 < len(args) {
				return args[i+1]
			}
			return ""
		}
		if strings.HasPrefix(arg, "config=") {
			return strings.TrimPrefix(arg, "config=")
		}
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
