package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/popqiz/popqiz/go/internal/models"
)

// Config is the optional YAML config. Everything has a default, so a
// missing file is fine; env vars cover secrets and the database.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Nats struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`
	Questions struct {
		MinQuality int `yaml:"min_quality"`
	} `yaml:"questions"`
}

func defaultConfig() *Config {
	var config Config
	config.Server.Port = getEnv("PORT", "8080")
	config.Nats.URL = getEnv("NATS_URL", "nats://localhost:4222")
	config.Questions.MinQuality = models.MinQualityScore
	return &config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if config.Server.Port == "" {
		config.Server.Port = getEnv("PORT", "8080")
	}
	if config.Nats.URL == "" {
		config.Nats.URL = getEnv("NATS_URL", "nats://localhost:4222")
	}
	if config.Questions.MinQuality == 0 {
		config.Questions.MinQuality = models.MinQualityScore
	}

	return config, nil
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
