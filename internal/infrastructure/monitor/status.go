package monitor

import (
	"time"

	"github.com/fastygo/planner/internal/infrastructure/buffer"
)

type Status struct {
	Driver       string       `json:"driver"`
	Storage      bool         `json:"storage"`
	RedisEnabled bool         `json:"redis_enabled"`
	Redis        bool         `json:"redis"`
	Buffer       bool         `json:"buffer"`
	BufferStats  buffer.Stats `json:"buffer_stats"`
	LastCheck    time.Time    `json:"last_check"`
}

// Healthy reports whether every configured dependency answered.
func (s Status) Healthy() bool {
	if !s.Storage {
		return false
	}
	if s.RedisEnabled && !s.Redis {
		return false
	}
	return true
}
