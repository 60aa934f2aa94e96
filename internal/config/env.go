package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from .env files into the process environment.
// Variables already set are not overridden, and a missing file is not an error.
func LoadEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
