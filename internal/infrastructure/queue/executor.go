package queue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/playground/userstats/internal/infrastructure/metrics"
	"github.com/playground/userstats/internal/core/domain"
	"github.com/playground/userstats/internal/core/ports"
)

const (
	defaultWorkers   = 8
	channelBuffer    = 256
	defaultReplayTTL = 24 * time.Hour
)

var (
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrExecutorStopped    = errors.New("executor stopped")
)

type job struct {
	ctx   context.Context
	id    string
	in    ports.Instruction
	reply chan result
}

type result struct {
	receipt *ports.Receipt
	err     error
}

// Executor routes instructions to a fixed set of workers using consistent
// hashing on the owner identity. Every instruction for one record runs on the
// same worker, so writes to a record never interleave.
type Executor struct {
	workers   []chan job
	service   ports.RecordService
	guard     ports.ReplayGuard
	replayTTL time.Duration
	log       zerolog.Logger
	done      <-chan struct{}
	stopped   chan struct{}
}

// Options tunes an Executor. Zero values select the defaults.
type Options struct {
	Workers   int
	ReplayTTL time.Duration
	// Guard is optional; without it idempotency keys are ignored.
	Guard ports.ReplayGuard
}

// NewExecutor creates an Executor with opts.Workers sharded workers.
func NewExecutor(service ports.RecordService, opts Options, log zerolog.Logger) *Executor {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.ReplayTTL <= 0 {
		opts.ReplayTTL = defaultReplayTTL
	}
	e := &Executor{
		workers:   make([]chan job, opts.Workers),
		service:   service,
		guard:     opts.Guard,
		replayTTL: opts.ReplayTTL,
		log:       log,
		stopped:   make(chan struct{}),
	}
	for i := range e.workers {
		e.workers[i] = make(chan job, channelBuffer)
	}
	return e
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// instructions still queued at that point fail with ErrExecutorStopped.
func (e *Executor) Start(ctx context.Context) {
	e.done = ctx.Done()

	var wg sync.WaitGroup
	for i, ch := range e.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.runWorker(ctx, i, ch)
		}()
	}
	go func() {
		wg.Wait()
		close(e.stopped)
	}()
}

// Stopped is closed once every worker has exited.
func (e *Executor) Stopped() <-chan struct{} {
	return e.stopped
}

// Execute queues in on the worker owning its record and waits for the result.
// If ctx ends first the instruction may still run; its outcome is dropped and
// its idempotency key stays claimed.
func (e *Executor) Execute(ctx context.Context, in ports.Instruction) (*ports.Receipt, error) {
	switch in.Kind {
	case ports.InstructionInitialize, ports.InstructionCreateRecord, ports.InstructionRenameRecord:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstruction, in.Kind)
	}

	if err := e.claim(ctx, in); err != nil {
		return nil, err
	}

	j := job{
		ctx:   ctx,
		id:    uuid.NewString(),
		in:    in,
		reply: make(chan result, 1),
	}

	idx := e.shardIndex(in.Owner)
	depth := metrics.ExecutorQueueDepth.WithLabelValues(strconv.Itoa(idx))
	depth.Inc()
	select {
	case e.workers[idx] <- j:
	case <-e.done:
		depth.Dec()
		e.release(ctx, in)
		return nil, ErrExecutorStopped
	case <-ctx.Done():
		depth.Dec()
		e.release(ctx, in)
		return nil, ctx.Err()
	}

	select {
	case r := <-j.reply:
		return e.finish(ctx, in, r)
	case <-e.stopped:
		// The worker may have answered just before exiting.
		select {
		case r := <-j.reply:
			return e.finish(ctx, in, r)
		default:
		}
		e.release(ctx, in)
		return nil, ErrExecutorStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// finish hands back a worker result. A failed instruction applied nothing, so
// its idempotency key is freed for a corrected retry.
func (e *Executor) finish(ctx context.Context, in ports.Instruction, r result) (*ports.Receipt, error) {
	if r.err != nil {
		e.release(ctx, in)
	}
	return r.receipt, r.err
}

// claim rejects replays of an idempotency key. A guard failure is logged and
// the instruction proceeds.
func (e *Executor) claim(ctx context.Context, in ports.Instruction) error {
	if in.IdempotencyKey == "" || e.guard == nil {
		return nil
	}
	ok, err := e.guard.Claim(ctx, in.Signer.Identity, guardKey(in), e.replayTTL)
	if err != nil {
		e.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("replay check failed, executing anyway")
		return nil
	}
	if !ok {
		metrics.InstructionReplaysTotal.Inc()
		e.log.Debug().Str("idempotency_key", in.IdempotencyKey).Str("kind", string(in.Kind)).Msg("replayed instruction rejected")
		return domain.ErrDuplicateInstruction
	}
	return nil
}

func (e *Executor) release(ctx context.Context, in ports.Instruction) {
	if in.IdempotencyKey == "" || e.guard == nil {
		return
	}
	if err := e.guard.Release(context.WithoutCancel(ctx), in.Signer.Identity, guardKey(in)); err != nil {
		e.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to release idempotency key")
	}
}

// guardKey scopes an idempotency key to its instruction kind.
func guardKey(in ports.Instruction) string {
	return string(in.Kind) + ":" + in.IdempotencyKey
}

// shardIndex maps an owner identity deterministically to a worker index.
func (e *Executor) shardIndex(owner string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(owner))
	return int(h.Sum32() % uint32(len(e.workers)))
}

func (e *Executor) runWorker(ctx context.Context, id int, ch <-chan job) {
	depth := metrics.ExecutorQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		if ctx.Err() != nil {
			e.drain(ch, depth)
			return
		}
		select {
		case <-ctx.Done():
			e.drain(ch, depth)
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			receipt, err := e.run(j)
			j.reply <- result{receipt: receipt, err: err}
		}
	}
}

// drain answers every job still queued on ch with ErrExecutorStopped.
func (e *Executor) drain(ch <-chan job, depth prometheus.Gauge) {
	for {
		select {
		case j := <-ch:
			depth.Dec()
			j.reply <- result{err: ErrExecutorStopped}
		default:
			return
		}
	}
}

func (e *Executor) run(j job) (*ports.Receipt, error) {
	kind := string(j.in.Kind)
	start := time.Now()
	defer func() {
		metrics.InstructionDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	receipt := &ports.Receipt{ID: j.id, Kind: j.in.Kind}
	var err error

	switch j.in.Kind {
	case ports.InstructionInitialize:
	case ports.InstructionCreateRecord:
		receipt.Record, err = e.service.CreateRecord(j.ctx, j.in.Signer, j.in.Owner, j.in.Name)
		if err == nil {
			metrics.RecordsCreatedTotal.Inc()
		}
	case ports.InstructionRenameRecord:
		receipt.Record, err = e.service.RenameRecord(j.ctx, j.in.Signer, j.in.Owner, j.in.Name)
		if err == nil {
			metrics.RecordsRenamedTotal.Inc()
		}
	}

	if err != nil {
		reason := errorReason(err)
		metrics.InstructionErrorsTotal.WithLabelValues(kind, reason).Inc()

		ev := e.log.Warn()
		if reason == "tag_mismatch" || reason == "internal" {
			ev = e.log.Error()
		}
		ev.Err(err).
			Str("instruction_id", j.id).
			Str("kind", kind).
			Str("owner", j.in.Owner).
			Msg("instruction failed")
		return nil, err
	}

	metrics.InstructionsExecutedTotal.WithLabelValues(kind).Inc()
	e.log.Debug().Str("instruction_id", j.id).Str("kind", kind).Str("owner", j.in.Owner).Msg("instruction executed")
	return receipt, nil
}

// errorReason converts an instruction error into a low-cardinality label.
func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNameTooLong):
		return "name_too_long"
	case errors.Is(err, domain.ErrRecordAlreadyExists):
		return "already_exists"
	case errors.Is(err, domain.ErrRecordNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrInvalidIdentity):
		return "invalid_identity"
	case errors.Is(err, domain.ErrAddressTagMismatch):
		return "tag_mismatch"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal"
	}
}
