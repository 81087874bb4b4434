package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type config struct {
	Address       string `toml:"address"`
	Token         string `toml:"token"`
	AllowMessages bool   `toml:"allow_messages"`
}

func defaultConfig() config {
	return config{
		Address:       "wss://chat.liquidbounce.net:7886/ws",
		AllowMessages: true,
	}
}

// loadConfig reads a TOML config file on top of the defaults. An empty path
// returns the defaults unchanged.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("address") {
		if addr := strings.TrimSpace(raw.Address); addr != "" {
			cfg.Address = addr
		}
	}
	if meta.IsDefined("token") {
		cfg.Token = strings.TrimSpace(raw.Token)
	}
	if meta.IsDefined("allow_messages") {
		cfg.AllowMessages = raw.AllowMessages
	}

	return cfg, nil
}
