// internal/activity/service/config.go
package service

import "time"

type Config struct {
	EventTimeout time.Duration
	StaticDir    string
}

func LoadConfig() *Config {
	return &Config{
		EventTimeout: 2 * time.Second,
		StaticDir:    "static",
	}
}
