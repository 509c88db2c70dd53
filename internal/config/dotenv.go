package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// EnvFileVar names a dotenv file that overrides the process environment.
const EnvFileVar = "ENV_FILE"

// LoadDotEnv applies $ENV_FILE with override semantics when it is set.
// Otherwise ./.env fills only variables the environment leaves unset, and a
// missing ./.env is not an error. The applied path is returned, "" if none.
func LoadDotEnv() (string, error) {
	if path := os.Getenv(EnvFileVar); path != "" {
		if err := godotenv.Overload(path); err != nil {
			return "", fmt.Errorf("%s=%q: %w", EnvFileVar, path, err)
		}
		return path, nil
	}
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf(".env: %w", err)
	}
	return ".env", nil
}
