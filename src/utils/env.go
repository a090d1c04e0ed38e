package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const DEFAULT_ENV_FILENAME = ".env"

// InitEnvironmentVariables loads envFile into the process environment. Variables
// that are already set win over the file, and a missing file is not an error.
func InitEnvironmentVariables(envFile string) error {
	if envFile == "" {
		envFile = DEFAULT_ENV_FILENAME
	}

	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugf("no %s file found, using process environment", envFile)
			return nil
		}

		return fmt.Errorf("failed to load %s file: %w", envFile, err)
	}

	log.Debugf("loaded environment from %s", envFile)
	return nil
}

func GetEnv(key string) (string, error) {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return "", fmt.Errorf("$%s not set", key)
	}

	return val, nil
}

func GetEnvOrDefault(key string, def string) string {
	if val, err := GetEnv(key); err == nil {
		return val
	}

	return def
}

func GetEnvBool(key string, def bool) (bool, error) {
	val, err := GetEnv(key)
	if err != nil {
		return def, nil
	}

	b, err := strconv.ParseBool(strings.ToLower(val))
	if err != nil {
		return def, fmt.Errorf("$%s: invalid bool %q: %w", key, val, err)
	}

	return b, nil
}

func GetEnvDuration(key string, def time.Duration) (time.Duration, error) {
	val, err := GetEnv(key)
	if err != nil {
		return def, nil
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return def, fmt.Errorf("$%s: invalid duration %q: %w", key, val, err)
	}

	return d, nil
}
