package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	ElectionName     string
	AdminAddress     string
	InitialProposals []string

	EnableOutboxRelay      bool
	EnableAuditPersistence bool
}

func Load() (Config, error) {
	// A missing .env file is fine; real env always wins.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "dvoting"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	electionName := strings.TrimSpace(os.Getenv("ELECTION_NAME"))
	if electionName == "" {
		electionName = "governance"
	}

	var proposals []string
	for _, value := range strings.Split(os.Getenv("INITIAL_PROPOSALS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			proposals = append(proposals, value)
		}
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,

		ElectionName:     electionName,
		AdminAddress:     strings.TrimSpace(os.Getenv("ADMIN_ADDRESS")),
		InitialProposals: proposals,

		EnableOutboxRelay:      envBool("ENABLE_OUTBOX_RELAY", true),
		EnableAuditPersistence: envBool("ENABLE_AUDIT_PERSISTENCE", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
