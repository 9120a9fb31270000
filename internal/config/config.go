// Package config reads drawboard settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	DataDir string
	DBPath  string
	// Identity stamped on every commit this process broadcasts
	ActorID   string
	ActorName string
	// Collaboration fan-out, disabled when RedisURL is empty
	RedisURL string
	HubAddr  string
	// Cron spec for schema catalog refresh, disabled when empty
	SchemaRefresh   string
	ApprovalTimeout time.Duration
	WatchInterval   time.Duration
}

func Load() Config {
	dataDir := getenv("DRAWBOARD_DATA_DIR", defaultDataDir())
	host, _ := os.Hostname()
	if host == "" {
		host = "local"
	}
	return Config{
		DataDir:         dataDir,
		DBPath:          getenv("DRAWBOARD_DB_PATH", filepath.Join(dataDir, "drawboard.db")),
		ActorID:         getenv("DRAWBOARD_ACTOR_ID", "agent@"+host),
		ActorName:       getenv("DRAWBOARD_ACTOR_NAME", "Drawboard Agent"),
		RedisURL:        getenv("REDIS_URL", ""),
		HubAddr:         getenv("DRAWBOARD_HUB_ADDR", ":8790"),
		SchemaRefresh:   getenv("DRAWBOARD_SCHEMA_REFRESH", "@every 5m"),
		ApprovalTimeout: time.Duration(getenvInt("DRAWBOARD_APPROVAL_TIMEOUT_SECONDS", 120)) * time.Second,
		WatchInterval:   time.Duration(getenvInt("DRAWBOARD_WATCH_INTERVAL_MS", 2000)) * time.Millisecond,
	}
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "data")
	}
	return filepath.Join(homeDir, ".local", "share", "drawboard")
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
