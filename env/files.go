package env

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadFiles searches for the named env files from the current directory up to the root
// and loads every one it finds. Variables already present in the process are kept.
func LoadFiles(files ...string) error {
	currentDir, err := os.Getwd()
	if err != nil {
		return err
	}

	found := false
	dir := currentDir
	for {
		for _, name := range files {
			envPath := filepath.Join(dir, name)
			if _, err := os.Stat(envPath); err != nil {
				continue
			}
			if err := godotenv.Load(envPath); err == nil {
				slog.Info("Loading .env file", "file", envPath)
				found = true
			}
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			break
		}
		dir = parentDir
	}

	if !found && len(files) > 0 {
		slog.Info("No .env files found in ancestor directories")
	}

	return nil
}
