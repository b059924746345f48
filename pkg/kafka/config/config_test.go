package kafka_config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Brokers:              []string{"localhost:9092"},
		ProducerMaxAttempts:  DefaultProducerMaxAttempts,
		ProducerBatchTimeout: DefaultProducerBatchTimeout,
		ProducerRequireAcks:  DefaultProducerRequireAcks,
		ProducerCompression:  DefaultProducerCompression,
		ConsumerStartOffset:  DefaultConsumerStartOffset,
		ConsumerMinBytes:     DefaultConsumerMinBytes,
		ConsumerMaxBytes:     DefaultConsumerMaxBytes,
		ConsumerMaxWait:      DefaultConsumerMaxWait,
		ConsumerMaxRetries:   DefaultConsumerMaxRetries,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"no brokers", func(c *Config) { c.Brokers = nil }, "broker"},
		{"bad compression", func(c *Config) { c.ProducerCompression = "brotli" }, "ProducerCompression"},
		{"bad acks", func(c *Config) { c.ProducerRequireAcks = 2 }, "ProducerRequireAcks"},
		{"explicit offset", func(c *Config) { c.ConsumerStartOffset = 42 }, "ConsumerStartOffset"},
		{"zero wait", func(c *Config) { c.ConsumerMaxWait = 0 }, "ConsumerMaxWait"},
		{"negative commit interval", func(c *Config) { c.ConsumerCommitInterval = -time.Second }, "ConsumerCommitInterval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_ParsesBrokerList(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " kafka-1:9092, ,kafka-2:9092 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[0] != "kafka-1:9092" || cfg.Brokers[1] != "kafka-2:9092" {
		t.Errorf("brokers = %v", cfg.Brokers)
	}
}
