package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDBName = "finlog.db"

	envDataDir  = "FINLOG_DATA_DIR"
	envDBPath   = "FINLOG_DB_PATH"
	envTimezone = "FINLOG_TIMEZONE"
)

// UserConfig is persisted as config.json in the OS config directory.
type UserConfig struct {
	DBName   string `json:"db_name"`
	DataDir  string `json:"data_dir"`
	Timezone string `json:"timezone"`
}

var runtimeDataDir string
var runtimePort = 8000

func IsMacOS() bool {
	return runtime.GOOS == "darwin"
}

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

func SetRuntimeDataDir(dir string) {
	runtimeDataDir = dir
}

func SetRuntimePort(port int) {
	if port > 0 {
		runtimePort = port
	}
}

func GetRuntimePort() int {
	return runtimePort
}

func appConfigDir() (string, error) {
	if IsMacOS() {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "FinLog"), nil
	}
	if IsWindows() {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "FinLog"), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "finlog"), nil
	}
	return filepath.Join(configDir, "finlog"), nil
}

func appConfigPath() (string, error) {
	dir, err := appConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadEnv reads .env from the working directory and then from dataDir.
// Variables already present in the environment are never overridden, so the
// first file to define a key wins. It returns the files that were loaded.
func LoadEnv(dataDir string) ([]string, error) {
	candidates := []string{".env"}
	if dataDir != "" {
		candidates = append(candidates, filepath.Join(dataDir, ".env"))
	}
	loaded := []string{}
	seen := map[string]bool{}
	for _, path := range candidates {
		abs, err := filepath.Abs(path)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if info, err := os.Stat(abs); err != nil || info.IsDir() {
			continue
		}
		if err := godotenv.Load(abs); err != nil {
			return loaded, err
		}
		loaded = append(loaded, abs)
	}
	return loaded, nil
}

func LoadUserConfig() UserConfig {
	defaults := UserConfig{DBName: defaultDBName}
	configPath, err := appConfigPath()
	if err != nil {
		return defaults
	}
	file, err := os.Open(configPath)
	if err != nil {
		return defaults
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&defaults); err != nil {
		return UserConfig{DBName: defaultDBName}
	}
	if strings.TrimSpace(defaults.DBName) == "" {
		defaults.DBName = defaultDBName
	}
	return defaults
}

func SaveUserConfig(cfg UserConfig) error {
	path, err := appConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// GetDataDir resolves the data directory: the runtime override, then
// FINLOG_DATA_DIR, then the user config, then the OS config dir.
func GetDataDir() (string, error) {
	dir := runtimeDataDir
	if dir == "" {
		dir = os.Getenv(envDataDir)
	}
	if dir == "" {
		dir = LoadUserConfig().DataDir
	}
	if dir == "" {
		defaultDir, err := appConfigDir()
		if err != nil {
			return "", err
		}
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func GetDBPath() (string, error) {
	if envPath := os.Getenv(envDBPath); envPath != "" {
		return envPath, nil
	}
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, LoadUserConfig().DBName), nil
}

// GetTimezone returns the zone used for calendar dates. An unknown name
// falls back to UTC and reports ok=false.
func GetTimezone() (loc *time.Location, name string, ok bool) {
	name = strings.TrimSpace(os.Getenv(envTimezone))
	if name == "" {
		name = strings.TrimSpace(LoadUserConfig().Timezone)
	}
	if name == "" {
		return time.UTC, "UTC", true
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, name, false
	}
	return loc, name, true
}
