/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

type DiscoverConfig struct {
	Address   string `json:"address,omitempty" yaml:"address,omitempty" mapstructure:"address"`
	Port      int    `json:"port,omitempty" yaml:"port,omitempty" mapstructure:"port"`
	Broadcast string `json:"broadcast,omitempty" yaml:"broadcast,omitempty" mapstructure:"broadcast"`
	// Interface, when set, replaces Broadcast with the broadcast address of its IPv4 subnet
	Interface string `json:"interface" yaml:"interface" mapstructure:"interface"`
	Window    string `json:"window,omitempty" yaml:"window,omitempty" mapstructure:"window"`
}

func (c *DiscoverConfig) WindowDuration() (time.Duration, error) {
	return parseDuration("discover.window", c.Window)
}

type ServerConfig struct {
	PollInterval string `json:"pollInterval,omitempty" yaml:"pollInterval,omitempty" mapstructure:"pollInterval"`
	DBPath       string `json:"dbPath,omitempty" yaml:"dbPath,omitempty" mapstructure:"dbPath"`
	OfflineAfter string `json:"offlineAfter,omitempty" yaml:"offlineAfter,omitempty" mapstructure:"offlineAfter"`
	Announce     bool   `json:"announce" yaml:"announce" mapstructure:"announce"`
}

func (c *ServerConfig) PollIntervalDuration() (time.Duration, error) {
	return parseDuration("server.pollInterval", c.PollInterval)
}

func (c *ServerConfig) OfflineAfterDuration() (time.Duration, error) {
	return parseDuration("server.offlineAfter", c.OfflineAfter)
}

type ApiConfig struct {
	Address string `json:"address,omitempty" yaml:"address,omitempty" mapstructure:"address"`
	Port    int    `json:"port,omitempty" yaml:"port,omitempty" mapstructure:"port"`
}

// Url returns the base url of the discover API
func (c *ApiConfig) Url() string {
	return fmt.Sprintf("http://%s:%d/api", c.Address, c.Port)
}

type Config struct {
	LogLevel        string `json:"logLevel,omitempty" yaml:"logLevel,omitempty" mapstructure:"logLevel"`
	LogFile         string `json:"logFile,omitempty" yaml:"logFile,omitempty" mapstructure:"logFile"`
	*DiscoverConfig `json:"discover,omitempty" yaml:"discover,omitempty" mapstructure:"discover"`
	*ServerConfig   `json:"server,omitempty" yaml:"server,omitempty" mapstructure:"server"`
	*ApiConfig      `json:"api,omitempty" yaml:"api,omitempty" mapstructure:"api"`
	filepath        string
}

func (c *Config) Path() string {
	return c.filepath
}

func (c *Config) SetPath(path string) {
	c.filepath = path
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return os.WriteFile(c.filepath, data, 0644)
}

// Load reads the config file if there is one and applies GO_ADVATEK_* environment
// overrides, e.g. GO_ADVATEK_DISCOVER_INTERFACE=eth0. A missing file is not an error.
func (c *Config) Load() error {
	v := viper.New()
	v.SetConfigFile(c.filepath)
	v.SetConfigType(ConfigType)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, c)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(c.filepath); statErr == nil {
			return fmt.Errorf("read config %s: %w", c.filepath, err)
		}
	}
	return v.Unmarshal(c)
}

// setDefaults registers every key so that AutomaticEnv can override keys missing in the file
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("logLevel", c.LogLevel)
	v.SetDefault("logFile", c.LogFile)
	v.SetDefault("discover.address", c.DiscoverConfig.Address)
	v.SetDefault("discover.port", c.DiscoverConfig.Port)
	v.SetDefault("discover.broadcast", c.DiscoverConfig.Broadcast)
	v.SetDefault("discover.interface", c.DiscoverConfig.Interface)
	v.SetDefault("discover.window", c.DiscoverConfig.Window)
	v.SetDefault("server.pollInterval", c.ServerConfig.PollInterval)
	v.SetDefault("server.dbPath", c.ServerConfig.DBPath)
	v.SetDefault("server.offlineAfter", c.ServerConfig.OfflineAfter)
	v.SetDefault("server.announce", c.ServerConfig.Announce)
	v.SetDefault("api.address", c.ApiConfig.Address)
	v.SetDefault("api.port", c.ApiConfig.Port)
}

func parseDuration(option, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, ErrInvalidDuration{Option: option, Value: value}
	}
	return d, nil
}

func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir)
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), ConfigFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		DiscoverConfig: &DiscoverConfig{
			Address:   DefaultDiscoverAddress,
			Port:      DefaultDiscoverPort,
			Broadcast: DefaultBroadcastAddress,
			Interface: DefaultDiscoverInterface,
			Window:    DefaultDiscoverWindow,
		},
		ServerConfig: &ServerConfig{
			PollInterval: DefaultPollInterval,
			DBPath:       filepath.Join(DefaultConfigDir(), DBFile),
			OfflineAfter: DefaultOfflineAfter,
		},
		ApiConfig: &ApiConfig{
			Address: DefaultApiAddress,
			Port:    DefaultApiPort,
		},
		filepath: DefaultConfigPath(),
	}
}
