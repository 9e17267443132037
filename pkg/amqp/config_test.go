package amqp

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{URL: "amqp://localhost:5672/", Queue: "tasks.catering"}, false},
		{"missing url", Config{Queue: "tasks.catering"}, true},
		{"missing queue", Config{URL: "amqp://localhost:5672/"}, true},
		{"negative prefetch", Config{URL: "amqp://localhost:5672/", Queue: "q", Prefetch: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetDefaultConfig(t *testing.T) {
	cfg := &Config{URL: "amqp://localhost:5672/", Queue: "tasks.followMe"}
	setDefaultConfig(cfg)

	if cfg.ReconnectInterval != 3*time.Second {
		t.Errorf("ReconnectInterval = %v, want 3s", cfg.ReconnectInterval)
	}
	if cfg.Heartbeat != 10*time.Second {
		t.Errorf("Heartbeat = %v, want 10s", cfg.Heartbeat)
	}
	if !strings.HasPrefix(cfg.ConsumerTag, "ground-") {
		t.Errorf("ConsumerTag = %q, want generated tag", cfg.ConsumerTag)
	}
}

func TestNewConsumerRejectsInvalidConfig(t *testing.T) {
	if _, err := NewConsumer(nil); err == nil {
		t.Error("NewConsumer(nil) returned no error")
	}
	if _, err := NewConsumer(&Config{URL: "amqp://localhost/"}); err == nil {
		t.Error("NewConsumer without queue returned no error")
	}
}
