package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.App.Port != "8080" {
		t.Errorf("App.Port = %q, want 8080", cfg.App.Port)
	}
	if cfg.RabbitMQ.Prefetch != 10 {
		t.Errorf("RabbitMQ.Prefetch = %d, want 10", cfg.RabbitMQ.Prefetch)
	}
	if cfg.Auth.BcryptCost != 12 {
		t.Errorf("Auth.BcryptCost = %d, want 12", cfg.Auth.BcryptCost)
	}
}

func TestLoadRejectsNonPositivePrefetch(t *testing.T) {
	t.Setenv("RABBITMQ_PREFETCH", "0")
	if _, err := Load(); err == nil {
		t.Fatal("Load should reject RABBITMQ_PREFETCH=0")
	}

	t.Setenv("RABBITMQ_PREFETCH", "-3")
	if _, err := Load(); err == nil {
		t.Fatal("Load should reject negative RABBITMQ_PREFETCH")
	}
}

func TestRabbitMQURL(t *testing.T) {
	cfg := RabbitMQConfig{Host: "mq.internal", Port: "5672", VHost: "helpdesk", User: "svc", Password: "pw"}
	url := cfg.URL()
	if !strings.HasPrefix(url, "amqp://svc:pw@mq.internal:5672/") {
		t.Errorf("unexpected AMQP URL: %s", url)
	}
	if !strings.HasSuffix(url, "/helpdesk") {
		t.Errorf("URL %s does not end with vhost", url)
	}
}

func TestAppAddr(t *testing.T) {
	app := AppConfig{Host: "127.0.0.1", Port: "9999"}
	if app.Addr() != "127.0.0.1:9999" {
		t.Errorf("Addr() = %q", app.Addr())
	}
}
