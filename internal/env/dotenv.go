package env

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultDotenvPath is where the optional dotenv file is looked up.
const DefaultDotenvPath = "/.env"

// LoadDotenv parses an optional dotenv file and returns its entries
// namespaced with DotenvPrefix, ready to be merged into a resolver pool.
// A missing file is not an error; the step is skipped with an info log.
func LoadDotenv(path string, logger zerolog.Logger) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info().Str("path", path).Msg("no dotenv file found, skipping")
		return nil, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading dotenv file %s: %w", path, err)
	}

	entries := namespace(v)
	logger.Info().Str("path", path).Int("entries", len(entries)).Msg("dotenv file loaded")
	return entries, nil
}

// LoadDotenvReader parses dotenv content from a string (useful for testing).
func LoadDotenvReader(content string) (map[string]string, error) {
	v := viper.New()
	v.SetConfigType("env")
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("reading dotenv: %w", err)
	}
	return namespace(v), nil
}

func namespace(v *viper.Viper) map[string]string {
	entries := make(map[string]string)
	for _, key := range v.AllKeys() {
		entries[DotenvPrefix+strings.ToUpper(key)] = v.GetString(key)
	}
	return entries
}
