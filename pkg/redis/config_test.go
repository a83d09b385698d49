package redis

import (
	"testing"
	"time"

	"github.com/coachbook/coachbook_backend/config"
)

func TestFromCentralConfig(t *testing.T) {
	t.Run("defaults fill unset fields", func(t *testing.T) {
		cfg := FromCentralConfig(config.RedisConfig{Addr: "cache:6379"})
		def := DefaultConfig()

		if cfg.Addr != "cache:6379" {
			t.Errorf("expected addr cache:6379, got %s", cfg.Addr)
		}
		if cfg.PoolSize != def.PoolSize || cfg.MinIdleConns != def.MinIdleConns {
			t.Errorf("expected default pool settings, got %+v", cfg)
		}
		if cfg.ReadTimeout != def.ReadTimeout {
			t.Errorf("expected default read timeout, got %v", cfg.ReadTimeout)
		}
	})

	t.Run("explicit values win", func(t *testing.T) {
		cfg := FromCentralConfig(config.RedisConfig{
			Addr:               "cache:6379",
			PoolSize:           42,
			DialTimeoutSeconds: 9,
		})
		if cfg.PoolSize != 42 {
			t.Errorf("expected pool size 42, got %d", cfg.PoolSize)
		}
		if cfg.DialTimeout != 9*time.Second {
			t.Errorf("expected 9s dial timeout, got %v", cfg.DialTimeout)
		}
	})
}

func TestNewRedis_EmptyAddr(t *testing.T) {
	if _, err := NewRedis(Config{}); err == nil {
		t.Fatal("expected error for empty addr")
	}
}
