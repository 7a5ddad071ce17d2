package batchproc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gabapcia/cexwatch/internal/cexflow"
	"github.com/gabapcia/cexwatch/internal/pkg/logger"
	"github.com/gabapcia/cexwatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/cexwatch/internal/pkg/x/chflow"
	"github.com/gabapcia/cexwatch/internal/whalewatch"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrServiceAlreadyStarted is returned if Start is called more than once.
	//
	// The service must be started only once per lifecycle.
	ErrServiceAlreadyStarted = errors.New("service already started")

	// ErrServiceNotStarted is returned by Enqueue before Start or after Close.
	ErrServiceNotStarted = errors.New("service not started")

	// ErrQueueFull is returned by Enqueue when the batch queue has no
	// capacity left. Callers should surface backpressure to the inbound
	// transport; batches are never re-queued internally.
	ErrQueueFull = errors.New("batch queue full")
)

const (
	defaultWorkers       = 4
	defaultQueueSize     = 64
	defaultShutdownGrace = 10 * time.Second
)

// Service defines the batch processing lifecycle and ingestion entrypoint.
//
// Payloads enqueued via Enqueue are processed asynchronously by a bounded
// worker pool; callers never observe processing errors.
type Service interface {
	// Start launches the worker pool that consumes enqueued payloads.
	//
	// Returns ErrServiceAlreadyStarted if Start is called more than once.
	// Call Close to shut down all background routines.
	Start(ctx context.Context) error

	// Enqueue hands one raw webhook payload to the pipeline for
	// asynchronous processing.
	//
	// Returns ErrQueueFull when the queue is at capacity and
	// ErrServiceNotStarted outside the started lifecycle.
	Enqueue(ctx context.Context, payload []byte) error

	// Close stops intake and shuts the worker pool down, draining
	// already-enqueued batches for a bounded grace period before
	// abandoning them. It is safe to call Close even if the service was
	// never started.
	Close()

	// ProcessPayload runs one payload through the full pipeline
	// synchronously, outside the worker pool. It exists for operational
	// replay of captured payloads and returns only unrecoverable
	// extraction errors.
	ProcessPayload(ctx context.Context, payload []byte) error
}

// closeFunc defines a cleanup routine to stop background goroutines and dependencies.
type closeFunc func()

// service is the internal implementation of the batchproc Service
// interface. It wires the flow aggregator and whale detector to the
// label, price, notification and storage collaborators.
type service struct {
	mu        sync.Mutex // protects lifecycle state
	isStarted bool       // ensures Start is called only once
	closeFunc closeFunc  // cancels context and cleans up dependencies

	aggregator *cexflow.Aggregator  // per-exchange flow aggregation
	detector   *whalewatch.Detector // whale transfer detection

	labelStore     LabelStore          // batched address label lookups
	priceService   PriceService        // market quote per batch
	flowNotifier   FlowReportNotifier  // exchange flow report sink
	whaleNotifier  WhaleReportNotifier // whale report sink
	summaryStorage SummaryStorage      // append-only batch summaries
	storageRetry   retry.Retry         // retry policy for summary writes

	workers       int           // worker pool size
	queueSize     int           // enqueue channel capacity
	shutdownGrace time.Duration // how long Close waits for in-flight batches

	payloadCh chan []byte    // enqueued raw payloads
	wg        sync.WaitGroup // tracks running workers
}

// Compile-time check to ensure *service implements the Service interface.
var _ Service = (*service)(nil)

// Option configures optional service behavior.
type Option func(*service)

// WithWorkers sets the number of concurrent batch workers.
func WithWorkers(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithQueueSize sets the capacity of the enqueue channel. Enqueue returns
// ErrQueueFull once this many payloads are waiting.
func WithQueueSize(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithShutdownGracePeriod sets how long Close waits for enqueued batches
// to drain before abandoning them.
func WithShutdownGracePeriod(d time.Duration) Option {
	return func(s *service) {
		if d > 0 {
			s.shutdownGrace = d
		}
	}
}

// WithStorageRetry overrides the retry policy applied to summary writes.
func WithStorageRetry(r retry.Retry) Option {
	return func(s *service) {
		s.storageRetry = r
	}
}

// New creates a new batchproc service wiring the processing engines to
// their external collaborators.
func New(
	aggregator *cexflow.Aggregator,
	detector *whalewatch.Detector,
	labelStore LabelStore,
	priceService PriceService,
	flowNotifier FlowReportNotifier,
	whaleNotifier WhaleReportNotifier,
	summaryStorage SummaryStorage,
	opts ...Option,
) *service {
	svc := &service{
		aggregator:     aggregator,
		detector:       detector,
		labelStore:     labelStore,
		priceService:   priceService,
		flowNotifier:   flowNotifier,
		whaleNotifier:  whaleNotifier,
		summaryStorage: summaryStorage,
		storageRetry:   retry.New(),
		workers:        defaultWorkers,
		queueSize:      defaultQueueSize,
		shutdownGrace:  defaultShutdownGrace,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

// Start launches the batch worker pool.
//
// Workers consume payloads from the enqueue channel until the channel is
// closed and drained, or the context is canceled.
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	s.payloadCh = make(chan []byte, s.queueSize)
	s.wg.Add(s.workers)
	for range s.workers {
		go s.worker(ctx)
	}

	payloadCh := s.payloadCh
	s.closeFunc = func() {
		// Closing the channel lets workers finish whatever is already
		// buffered; the grace period bounds how long that may take.
		close(payloadCh)

		drained := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(drained)
		}()

		select {
		case <-drained:
		case <-time.After(s.shutdownGrace):
			logger.Warn(ctx, "shutdown grace period elapsed with batches still pending")
		}

		cancel()
	}
	s.isStarted = true
	return nil
}

// Enqueue hands a raw payload to the worker pool without blocking.
func (s *service) Enqueue(ctx context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isStarted {
		return ErrServiceNotStarted
	}

	select {
	case s.payloadCh <- payload:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops intake and drains the worker pool.
func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}

	s.closeFunc = nil
	s.isStarted = false
}

// worker consumes enqueued payloads until the channel is closed and
// empty, or the context is canceled.
func (s *service) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		payload, ok := chflow.Receive(ctx, s.payloadCh)
		if !ok {
			return
		}

		if err := s.ProcessPayload(ctx, payload); err != nil {
			logger.Error(ctx, "dropping unprocessable batch", "error", err)
		}
	}
}

// ProcessPayload runs the full pipeline for one raw payload.
//
// The pipeline advances through extraction, label resolution, concurrent
// aggregation and whale detection, report delivery, and summary
// persistence. Per-transaction problems and collaborator failures
// degrade individual stages; only a malformed payload fails the batch.
func (s *service) ProcessPayload(ctx context.Context, payload []byte) error {
	state := newBatchState()
	ctx = logger.Derive(ctx, "batch.id", state.batchID)

	state.advance(phaseExtracting)
	ext, err := extractBatch(ctx, payload)
	if err != nil {
		state.fail(err)
		logger.Error(ctx, "batch failed",
			"batch.phase", string(state.phase),
			"error", state.failure.Error(),
		)
		return err
	}

	if len(ext.transactions) == 0 {
		state.finish()
		logger.Info(ctx, "batch contained no valid transactions",
			"batch.skipped_invalid", ext.skippedInvalid,
		)
		return nil
	}

	state.advance(phaseLabelResolving)
	labels := s.resolveLabels(ctx, ext.transactions)

	state.advance(phaseAggregating)
	var (
		acc    *cexflow.Accumulator
		whales whalewatch.Report
	)
	// The engines read the same immutable slice and write disjoint
	// outputs, so they can run without locking.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		acc = s.aggregator.Aggregate(gctx, mapToFlowTransactions(ext.transactions), labels)
		return nil
	})
	g.Go(func() error {
		whales = s.detector.Detect(gctx, mapToWhaleTransactions(ext.transactions))
		return nil
	})
	_ = g.Wait()

	state.advance(phaseReporting)
	price := s.fetchPrice(ctx)
	s.sendReports(ctx, ext, state, labels, acc, whales, price)

	state.advance(phasePersisting)
	s.persistSummary(ctx, buildSummary(state, ext, acc, whales, price))

	state.finish()
	logger.Info(ctx, "batch processed",
		"batch.transactions", len(ext.transactions),
		"batch.skipped_invalid", ext.skippedInvalid,
		"batch.min_block", ext.minBlock,
		"batch.max_block", ext.maxBlock,
		"batch.whales", whales.Count,
	)
	return nil
}

// mapToFlowTransactions converts inbound transactions into the flow
// aggregator's view, allowing cross-module compatibility while
// preserving clear separation of concerns.
func mapToFlowTransactions(txs []Transaction) []cexflow.Transaction {
	converted := make([]cexflow.Transaction, len(txs))
	for i, tx := range txs {
		converted[i] = cexflow.Transaction{
			Hash:     tx.Hash,
			From:     tx.From,
			To:       tx.To,
			ValueWei: tx.ValueWei,
		}
	}
	return converted
}

// mapToWhaleTransactions converts inbound transactions into the whale
// detector's view.
func mapToWhaleTransactions(txs []Transaction) []whalewatch.Transaction {
	converted := make([]whalewatch.Transaction, len(txs))
	for i, tx := range txs {
		converted[i] = whalewatch.Transaction{
			Hash:     tx.Hash,
			From:     tx.From,
			To:       tx.To,
			ValueWei: tx.ValueWei,
		}
	}
	return converted
}
