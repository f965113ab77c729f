// Package metrics defines and registers all custom Prometheus metrics for the
// userstats program service. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "userstats"

// ── Instruction metrics ───────────────────────────────────────────────────────

// InstructionsExecutedTotal counts instructions that completed successfully.
// Label:
//   - kind: "initialize", "create_record" or "rename_record"
var InstructionsExecutedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "instructions_executed_total",
		Help:      "Total number of instructions executed successfully.",
	},
	[]string{"kind"},
)

// InstructionErrorsTotal counts instructions that failed.
// Labels:
//   - kind: the instruction kind
//   - reason: short failure class (e.g. "name_too_long", "already_exists", "tag_mismatch")
var InstructionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "instruction_errors_total",
		Help:      "Total number of instructions that failed, by kind and reason.",
	},
	[]string{"kind", "reason"},
)

// InstructionDuration measures execution time once a worker picks an instruction up.
// Label:
//   - kind: the instruction kind
var InstructionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "instruction_duration_seconds",
		Help:      "Duration of instruction execution on its worker.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)

// ExecutorQueueDepth tracks instructions waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index
var ExecutorQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "executor_queue_depth",
		Help:      "Current number of instructions pending in each executor worker channel.",
	},
	[]string{"worker_id"},
)

// InstructionReplaysTotal counts writes rejected because their idempotency key was reused.
var InstructionReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "instruction_replays_total",
		Help:      "Total number of instructions rejected as replays of an earlier idempotency key.",
	},
)

// ── Record metrics ────────────────────────────────────────────────────────────

// RecordsCreatedTotal counts newly allocated user records.
var RecordsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_created_total",
		Help:      "Total number of user records created.",
	},
)

// RecordsRenamedTotal counts successful renames.
var RecordsRenamedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_renamed_total",
		Help:      "Total number of user record renames.",
	},
)
