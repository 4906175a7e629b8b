package app

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	CfgDB              ConfigDB      `yaml:"db"`
	CfgKafka           ConfigKafka   `yaml:"kafka"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	ServerPort         string        `yaml:"srv_port"`
	UsersServiceURL    string        `yaml:"users_service_url"`
	UsersTimeout       time.Duration `yaml:"users_timeout"`
	ImagesDir          string        `yaml:"images_dir"`
	RedisAddr          string        `yaml:"redis_addr"`
	ReputationCacheTTL time.Duration `yaml:"reputation_cache_ttl"`
}

type ConfigDB struct {
	Login    string `yaml:"login"`
	Password string `yaml:"password"`
	Port     uint   `yaml:"port"`
	Database string `yaml:"database"`
	Host     string `yaml:"host"`
}

type ConfigKafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

func NewConfig(configPath string) (*Config, error) {
	cfg, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var c Config
	err = yaml.Unmarshal(cfg, &c)
	if err != nil {
		return nil, err
	}

	return &c, nil
}
