package main

import (
	"os"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/Andrej220/go-utils/pqueue/internal/config"
)

func writeConfig(t *testing.T, path string, cfg config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
