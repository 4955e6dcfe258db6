package config

import "github.com/joho/godotenv"

// loadEnvFiles loads KEY=VALUE files that exist. Variables already set in the
// environment win over file values.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		_ = godotenv.Load(path)
	}
}
