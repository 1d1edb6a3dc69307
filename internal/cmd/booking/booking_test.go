package booking

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("booking", flag.ContinueOnError)
	t.Setenv("HOTELIO_BOOKING_ADDR", ":9000")
	t.Setenv("HOTELIO_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("HOTELIO_BOOKING_RELAY_LEASE_TTL", "45s")

	cfg, err := ParseConfig(fs, []string{"-fact-delivery", "direct", "-serialize-hotel", "-broker", "amqp"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Fatalf("addr = %q, want %q", cfg.Addr, ":9000")
	}
	if cfg.FactDelivery != "direct" {
		t.Fatalf("fact delivery = %q, want direct", cfg.FactDelivery)
	}
	if !cfg.SerializeHotel {
		t.Fatal("expected serialize hotel")
	}
	if cfg.Kind != "amqp" {
		t.Fatalf("broker = %q, want amqp", cfg.Kind)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("kafka brokers = %v", cfg.KafkaBrokers)
	}
	if cfg.RelayLeaseTTL != 45*time.Second {
		t.Fatalf("lease ttl = %v, want 45s", cfg.RelayLeaseTTL)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("booking", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.MonolithURL != "http://hotelio-monolith:8080" {
		t.Fatalf("monolith url = %q", cfg.MonolithURL)
	}
	if cfg.FactDelivery != "outbox" {
		t.Fatalf("fact delivery = %q, want outbox", cfg.FactDelivery)
	}
	if cfg.ProviderTimeout != 5*time.Second {
		t.Fatalf("provider timeout = %v, want 5s", cfg.ProviderTimeout)
	}
	if cfg.Kind != "kafka" {
		t.Fatalf("broker = %q, want kafka", cfg.Kind)
	}
	if cfg.RelayMaxAttempts != 8 {
		t.Fatalf("relay max attempts = %d, want 8", cfg.RelayMaxAttempts)
	}
}

func TestParseConfig_TrimsMonolithURL(t *testing.T) {
	fs := flag.NewFlagSet("booking", flag.ContinueOnError)
	t.Setenv("HOTELIO_MONOLITH_URL", "http://localhost:8080/")

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.MonolithURL != "http://localhost:8080" {
		t.Fatalf("monolith url = %q", cfg.MonolithURL)
	}
}
