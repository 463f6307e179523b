package config

import (
	"os"
	"sync"

	"resapi/logutils"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Postgres struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		DBName   string `yaml:"dbname"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"sslmode"`
		TimeZone string `yaml:"TimeZone"`
	} `yaml:"postgres"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Auth struct {
		AccessTokenSecret      string `yaml:"accessTokenSecret"`
		RefreshTokenSecret     string `yaml:"refreshTokenSecret"`
		AccessTokenExpiryHour  int    `yaml:"accessTokenExpiryHour"`
		RefreshTokenExpiryHour int    `yaml:"refreshTokenExpiryHour"`
		BcryptCost             int    `yaml:"bcryptCost"`
	} `yaml:"auth"`
}

var (
	once   sync.Once
	config *Config
)

func GetConfig() *Config {
	once.Do(func() {
		config = initConfig()
	})
	return config
}

// initConfig reads the configuration file from etc/config.yaml.
// The path can be overridden with the RESAPI_CONFIG environment variable,
// which is how deployments mount the file from a ConfigMap or secret store.
func initConfig() *Config {
	config := &Config{}
	configPath := "./etc/config.yaml"
	if p := os.Getenv("RESAPI_CONFIG"); p != "" {
		configPath = p
	}

	err := readConfig(configPath, config)
	if err != nil {
		logutils.Log.Error("init config", err)
		panic(err)
	}
	applyDefaults(config)
	return config
}

func readConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return err
	}
	return nil
}

func applyDefaults(config *Config) {
	if config.Server.Addr == "" {
		config.Server.Addr = ":7340"
	}
	if config.Auth.AccessTokenExpiryHour == 0 {
		config.Auth.AccessTokenExpiryHour = 1
	}
	if config.Auth.RefreshTokenExpiryHour == 0 {
		config.Auth.RefreshTokenExpiryHour = 168
	}
	if config.Auth.BcryptCost == 0 {
		config.Auth.BcryptCost = 12
	}
}
