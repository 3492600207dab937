// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is substratectl's optional configuration file shape. Every field
// has a zero-value default that matches the flag defaults, so a missing
// config file is equivalent to an empty one.
type Config struct {
	Descriptor struct {
		Format string `toml:"format"`
	} `toml:"descriptor"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.Descriptor.Format = "yaml"
	return cfg
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("substratectl: load config %s: %w", path, err)
	}
	return cfg, nil
}
