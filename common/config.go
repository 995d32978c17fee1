/*
* Copyright 2022-2026 Thorsten A. Knieling
*
* Licensed under the Apache License, Version 2.0 (the "License");
* you may not use this file except in compliance with the License.
* You may obtain a copy of the License at
*
*    http://www.apache.org/licenses/LICENSE-2.0
*
 */

package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tknie/errorrepo"
	"github.com/tknie/log"
	"gopkg.in/yaml.v3"
)

const envPrefix = "CODASYL_"

const (
	DefaultCommandTimeout  = 30 * time.Second
	DefaultCachePageSize   = 20
	DefaultLinkListMaxRows = 1000
)

// Config run unit configuration. Every run unit gets its own copy, no
// configuration value is kept in global state.
type Config struct {
	Connections      map[string]string `yaml:"connections"`
	CommandTimeout   time.Duration     `yaml:"commandTimeout"`
	CachePageSize    int               `yaml:"cachePageSize"`
	SchemaName       string            `yaml:"schemaName"`
	LogStatements    bool              `yaml:"logStatements"`
	AreaSweepReverse bool              `yaml:"areaSweepReverse"`
	TimestampColumn  string            `yaml:"timestampColumn"`
	LinkListMaxRows  int               `yaml:"linkListMaxRows"`
}

// DefaultConfig configuration with default values
func DefaultConfig() *Config {
	return &Config{Connections: make(map[string]string),
		CommandTimeout:  DefaultCommandTimeout,
		CachePageSize:   DefaultCachePageSize,
		LinkListMaxRows: DefaultLinkListMaxRows,
	}
}

// LoadConfig load YAML configuration file and apply environment overrides
func LoadConfig(fileName string) (*Config, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errorrepo.NewError("DB000110", fileName, err)
	}
	return ParseConfig(data)
}

// ParseConfig parse YAML configuration and apply environment overrides
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	err := yaml.Unmarshal(data, config)
	if err != nil {
		return nil, errorrepo.NewError("DB000111", err)
	}
	if config.Connections == nil {
		config.Connections = make(map[string]string)
	}
	config.applyEnvironment()
	config.normalize()
	log.Log.Debugf("Configuration loaded: timeout=%v page=%d schema=%s",
		config.CommandTimeout, config.CachePageSize, config.SchemaName)
	return config, nil
}

func (config *Config) applyEnvironment() {
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, envPrefix) {
			continue
		}
		kv := strings.SplitN(e[len(envPrefix):], "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, value := kv[0], kv[1]
		switch {
		case key == "COMMAND_TIMEOUT":
			if d, err := time.ParseDuration(value); err == nil {
				config.CommandTimeout = d
			}
		case key == "CACHE_PAGE_SIZE":
			if n, err := strconv.Atoi(value); err == nil {
				config.CachePageSize = n
			}
		case key == "SCHEMA":
			config.SchemaName = value
		case key == "LOG_STATEMENTS":
			config.LogStatements = parseBool(value)
		case key == "AREA_SWEEP_REVERSE":
			config.AreaSweepReverse = parseBool(value)
		case key == "TIMESTAMP_COLUMN":
			config.TimestampColumn = value
		case strings.HasPrefix(key, "CONNECTION_"):
			config.Connections[strings.ToLower(key[len("CONNECTION_"):])] = value
		}
	}
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return strings.EqualFold(value, "yes") || strings.EqualFold(value, "on")
	}
	return b
}

func (config *Config) normalize() {
	if config.CommandTimeout <= 0 {
		config.CommandTimeout = DefaultCommandTimeout
	}
	if config.CachePageSize <= 0 {
		config.CachePageSize = DefaultCachePageSize
	}
	if config.LinkListMaxRows <= 0 {
		config.LinkListMaxRows = DefaultLinkListMaxRows
	}
}

// Connection connection URL configured for the given key
func (config *Config) Connection(key string) (string, error) {
	if url, ok := config.Connections[strings.ToLower(key)]; ok {
		return url, nil
	}
	return "", errorrepo.NewError("DB000112", key)
}

// Copy independent copy used when delegating to a nested conversation
func (config *Config) Copy() *Config {
	c := *config
	c.Connections = make(map[string]string, len(config.Connections))
	for k, v := range config.Connections {
		c.Connections[k] = v
	}
	return &c
}
