package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port int `env:"HOTELIO_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("HOTELIO_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

type envDurationConfig struct {
	Poll  time.Duration `env:"HOTELIO_TEST_POLL" envDefault:"1s"`
	Hosts []string      `env:"HOTELIO_TEST_HOSTS" envSeparator:"," envDefault:"a:1,b:2"`
}

func TestParseEnvDurationsAndLists(t *testing.T) {
	t.Setenv("HOTELIO_TEST_POLL", "250ms")

	var cfg envDurationConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Poll != 250*time.Millisecond {
		t.Fatalf("poll = %v, want 250ms", cfg.Poll)
	}
	if len(cfg.Hosts) != 2 || cfg.Hosts[1] != "b:2" {
		t.Fatalf("hosts = %v, want [a:1 b:2]", cfg.Hosts)
	}
}

type BrokerBlock struct {
	Kind string `env:"HOTELIO_TEST_BROKER" envDefault:"kafka"`
}

type embeddingConfig struct {
	Addr string `env:"HOTELIO_TEST_ADDR" envDefault:":8082"`
	BrokerBlock
}

func TestParseEnvWalksEmbeddedStructs(t *testing.T) {
	t.Setenv("HOTELIO_TEST_BROKER", "amqp")

	var cfg embeddingConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Kind != "amqp" || cfg.Addr != ":8082" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseEnvRejectsNilTarget(t *testing.T) {
	if err := ParseEnv(nil); err == nil {
		t.Fatal("expected error")
	}
}
