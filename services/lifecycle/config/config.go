package config

import (
	"time"

	"github.com/opengovern/og-util/pkg/koanf"
)

type Config struct {
	Postgres koanf.Postgres   `json:"postgres" koanf:"postgres"`
	Http     koanf.HttpServer `json:"http" koanf:"http"`
	NATS     koanf.NATS       `json:"nats" koanf:"nats"`

	Scheduler SchedulerConfig `json:"scheduler" koanf:"scheduler"`
}

// SchedulerConfig carries the tunables the engine cannot infer: the dwell
// thresholds between order states and the tick cadence.
type SchedulerConfig struct {
	TickInterval time.Duration `json:"tick_interval" koanf:"tick_interval"`

	PendingToProcessing time.Duration `json:"pending_to_processing" koanf:"pending_to_processing"`
	ProcessingToShipped time.Duration `json:"processing_to_shipped" koanf:"processing_to_shipped"`
	ShippedToDelivered  time.Duration `json:"shipped_to_delivered" koanf:"shipped_to_delivered"`

	// WorkerCount bounds per-tick fan-out; EntityTimeout bounds any single
	// entity operation so one slow write cannot stall the batch.
	WorkerCount   int           `json:"worker_count" koanf:"worker_count"`
	EntityTimeout time.Duration `json:"entity_timeout" koanf:"entity_timeout"`
}
