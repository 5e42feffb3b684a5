package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type settings struct {
	Descriptor string
	StatusAddr string
	LogLevel   string
}

func defaultSettings() settings {
	return settings{
		Descriptor: "cmd/realmctl/ex.realm.toml",
		StatusAddr: "127.0.0.1:9090",
		LogLevel:   "",
	}
}

type fileSettings struct {
	Descriptor string `toml:"descriptor"`
	StatusAddr string `toml:"status_addr"`
	LogLevel   string `toml:"log_level"`
}

func loadSettings(path string) (settings, error) {
	cfg := defaultSettings()

	var raw fileSettings
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return settings{}, fmt.Errorf("load realmctl settings: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return settings{}, fmt.Errorf("load realmctl settings: unknown keys %v", undecoded)
	}

	if meta.IsDefined("descriptor") {
		if v := strings.TrimSpace(raw.Descriptor); v != "" {
			cfg.Descriptor = v
		}
	}
	if meta.IsDefined("status_addr") {
		cfg.StatusAddr = strings.TrimSpace(raw.StatusAddr)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	return cfg, nil
}
