package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("ELECTION_NAME", "")
	t.Setenv("INITIAL_PROPOSALS", "")
	t.Setenv("ADMIN_ADDRESS", "")
	t.Setenv("ENABLE_OUTBOX_RELAY", "")
	t.Setenv("ENABLE_AUDIT_PERSISTENCE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServiceName != "dvoting" {
		t.Fatalf("service name = %q", cfg.ServiceName)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("http port = %q", cfg.HTTPPort)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "localhost:9092" {
		t.Fatalf("brokers = %v", cfg.KafkaBrokers)
	}
	if cfg.ElectionName != "governance" {
		t.Fatalf("election name = %q", cfg.ElectionName)
	}
	if len(cfg.InitialProposals) != 0 {
		t.Fatalf("initial proposals = %v", cfg.InitialProposals)
	}
	if !cfg.EnableOutboxRelay || !cfg.EnableAuditPersistence {
		t.Fatalf("feature flags should default on: %+v", cfg)
	}
}

func TestLoadParsesLists(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092 ,")
	t.Setenv("INITIAL_PROPOSALS", " expand treasury ,burn treasury,")
	t.Setenv("ADMIN_ADDRESS", " 0xadmin ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("brokers = %v", cfg.KafkaBrokers)
	}
	if len(cfg.InitialProposals) != 2 || cfg.InitialProposals[0] != "expand treasury" {
		t.Fatalf("initial proposals = %v", cfg.InitialProposals)
	}
	if cfg.AdminAddress != "0xadmin" {
		t.Fatalf("admin address = %q", cfg.AdminAddress)
	}
}

func TestEnvBool(t *testing.T) {
	cases := []struct {
		raw      string
		fallback bool
		want     bool
	}{
		{"", true, true},
		{"", false, false},
		{"1", false, true},
		{"TRUE", false, true},
		{"on", false, true},
		{"0", true, false},
		{"off", true, false},
		{"garbage", true, true},
		{"garbage", false, false},
	}
	for _, tc := range cases {
		t.Setenv("ENABLE_OUTBOX_RELAY", tc.raw)
		if got := envBool("ENABLE_OUTBOX_RELAY", tc.fallback); got != tc.want {
			t.Fatalf("envBool(%q, %v) = %v, want %v", tc.raw, tc.fallback, got, tc.want)
		}
	}
}
