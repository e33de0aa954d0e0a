// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config loads and saves the YAML application configuration.
// Missing files and missing fields fall back to defaults, so a bare
// installation works without any configuration at all.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// StorageConfig configures the badger database location.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// EmbeddingConfig configures the OpenAI-compatible embedding endpoint.
type EmbeddingConfig struct {
	Host         string `yaml:"host"`
	Model        string `yaml:"model"`
	Dimensions   int    `yaml:"dimensions"`
	MaxBatchSize int    `yaml:"max_batch_size"`
	TimeoutSecs  int    `yaml:"timeout_secs"`
}

// SyncConfig configures the incremental sync loop.
type SyncConfig struct {
	Channel          string `yaml:"channel"`
	IntervalSecs     int    `yaml:"interval_secs"`
	BatchSize        int    `yaml:"batch_size"`
	MinBatchMessages int    `yaml:"min_batch_messages"`
	PageLimit        int    `yaml:"page_limit"`
}

// ReembedConfig configures the batch reembedding operation.
type ReembedConfig struct {
	BatchSize      int `yaml:"batch_size"`
	MaxRetries     int `yaml:"max_retries"`
	RetryDelaySecs int `yaml:"retry_delay_secs"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Sync      SyncConfig      `yaml:"sync"`
	Reembed   ReembedConfig   `yaml:"reembed"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./recollect.yaml first, then
// ~/.config/recollect/config.yaml. If neither exists, returns defaults.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "recollect.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}

	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}

	return Default(), "", nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "recollect", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "recollect.db"
	}
	if cfg.Embedding.Host == "" {
		cfg.Embedding.Host = "http://localhost:11434"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "nomic-embed-text"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxBatchSize == 0 {
		cfg.Embedding.MaxBatchSize = 100
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}
	if cfg.Sync.IntervalSecs == 0 {
		cfg.Sync.IntervalSecs = 300
	}
	if cfg.Sync.BatchSize == 0 {
		cfg.Sync.BatchSize = 50
	}
	if cfg.Sync.MinBatchMessages == 0 {
		cfg.Sync.MinBatchMessages = 3
	}
	if cfg.Sync.PageLimit == 0 {
		cfg.Sync.PageLimit = 100
	}
	if cfg.Reembed.BatchSize == 0 {
		cfg.Reembed.BatchSize = 100
	}
	if cfg.Reembed.MaxRetries == 0 {
		cfg.Reembed.MaxRetries = 3
	}
	if cfg.Reembed.RetryDelaySecs == 0 {
		cfg.Reembed.RetryDelaySecs = 1
	}
}
