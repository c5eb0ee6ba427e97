package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

const defaultConfigTemplate = "PORT=3000\nSQLITE_PATH=data/mealprep.db\nSTORE_DRIVER=thing\nFLUSH_DELAY_MS=1500\nJWT_SECRET=%s\nSESSION_SECRET=%s\n"

// configKeys are the settings read from the config file and the environment.
var configKeys = []string{
	"PORT", "SQLITE_PATH", "SESSION_SECRET", "JWT_SECRET", "JWT_REFRESH_SECRET",
	"STORE_DRIVER", "MONGO_URI", "MONGO_DATABASE", "FLUSH_DELAY_MS", "FRONTEND_DIR", "I18N_DIR",
}

// LoadConfig applies, in increasing priority: ~/.config/mealprep/config.ini,
// a .env file in the working directory, then the process environment.
func LoadConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return applyConfigMap(envConfigMap())
}

func loadConfigFile() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".config", "mealprep", "config.ini")
	if err := ensureConfigFile(configPath); err != nil {
		return err
	}

	configMap, err := parseIniConfig(configPath)
	if err != nil {
		return err
	}

	if err := applyConfigMap(configMap); err != nil {
		return fmt.Errorf("apply config file %s: %w", configPath, err)
	}

	return nil
}

func ensureConfigFile(configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory %s: %w", configDir, err)
	}

	configFile, err := os.OpenFile(configPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("create config file %s: %w", configPath, err)
	}
	defer configFile.Close()

	content := fmt.Sprintf(defaultConfigTemplate, uuid.New().String(), uuid.New().String())
	if _, err := configFile.WriteString(content); err != nil {
		return fmt.Errorf("write default config file %s: %w", configPath, err)
	}

	return nil
}

func parseIniConfig(path string) (map[string]string, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("parse ini config %s: %w", path, err)
	}

	configMap := make(map[string]string)
	for _, section := range cfg.Sections() {
		for _, key := range section.Keys() {
			configKey := strings.ToUpper(strings.TrimSpace(key.Name()))
			if configKey == "" {
				continue
			}
			configMap[configKey] = strings.TrimSpace(key.Value())
		}
	}

	return configMap, nil
}

func envConfigMap() map[string]string {
	configMap := make(map[string]string)
	for _, key := range configKeys {
		if v, ok := os.LookupEnv(key); ok {
			configMap[key] = strings.TrimSpace(v)
		}
	}
	return configMap
}

func applyConfigMap(configMap map[string]string) error {
	if v := configMap["SESSION_SECRET"]; v != "" {
		SessionSecret = v
	}
	if v := configMap["SQLITE_PATH"]; v != "" {
		SQLitePath = v
	}
	if v := configMap["JWT_SECRET"]; v != "" {
		JWTSecret = v
		JWTRefreshSecret = v
	}
	if v := configMap["JWT_REFRESH_SECRET"]; v != "" {
		JWTRefreshSecret = v
	}
	if v := configMap["FRONTEND_DIR"]; v != "" {
		FrontendDir = v
	}
	if v := configMap["I18N_DIR"]; v != "" {
		I18nDir = v
	}
	if v := configMap["MONGO_URI"]; v != "" {
		MongoURI = v
		StoreDriver = StoreDriverMongo
	}
	if v := configMap["MONGO_DATABASE"]; v != "" {
		MongoDatabase = v
	}

	if v := configMap["STORE_DRIVER"]; v != "" {
		switch v {
		case StoreDriverThing, StoreDriverMongo, StoreDriverMemory:
			StoreDriver = v
		default:
			return fmt.Errorf("invalid value for STORE_DRIVER: %q", v)
		}
	}

	if v := configMap["PORT"]; v != "" {
		portInt, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid value for PORT: %w", err)
		}
		*Port = portInt
	}

	if v := configMap["FLUSH_DELAY_MS"]; v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return fmt.Errorf("invalid value for FLUSH_DELAY_MS: %q", v)
		}
		FlushDelay = time.Duration(ms) * time.Millisecond
	}

	return nil
}
