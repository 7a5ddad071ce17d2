package batchproc

import (
	"time"

	"github.com/google/uuid"
)

// batchPhase identifies where a batch currently sits in the processing
// pipeline.
type batchPhase string

const (
	phaseReceived       batchPhase = "received"
	phaseExtracting     batchPhase = "extracting"
	phaseLabelResolving batchPhase = "label_resolving"
	phaseAggregating    batchPhase = "aggregating"
	phaseReporting      batchPhase = "reporting"
	phasePersisting     batchPhase = "persisting"
	phaseDone           batchPhase = "done"
	phaseFailed         batchPhase = "failed"
)

// batchState tracks the lifecycle of a single batch from receipt to
// completion. Phases advance strictly forward; phaseDone and phaseFailed
// are terminal. Only an unrecoverable extraction error moves a batch to
// phaseFailed; every later stage degrades and continues instead.
type batchState struct {
	batchID    string     // unique identifier for this batch (UUIDv7)
	receivedAt time.Time  // when the payload entered the pipeline
	phase      batchPhase // current pipeline phase
	failure    error      // terminal error, set only when phase is phaseFailed
	finishedAt *time.Time // when the batch reached a terminal phase
}

// newBatchState creates the tracking state for a freshly received batch.
func newBatchState() *batchState {
	return &batchState{
		batchID:    uuid.Must(uuid.NewV7()).String(),
		receivedAt: time.Now().UTC(),
		phase:      phaseReceived,
	}
}

// terminal reports whether the batch has reached a final phase.
func (s *batchState) terminal() bool {
	return s.phase == phaseDone || s.phase == phaseFailed
}

// advance moves the batch into the given phase. It is a no-op once the
// batch is terminal.
func (s *batchState) advance(phase batchPhase) {
	if s.terminal() {
		return
	}

	s.phase = phase
}

// finish marks the batch as successfully processed. It is a no-op once
// the batch is terminal.
func (s *batchState) finish() {
	if s.terminal() {
		return
	}

	now := time.Now().UTC()

	s.phase = phaseDone
	s.finishedAt = &now
}

// fail marks the batch as unrecoverably failed, recording the terminal
// error. It is a no-op once the batch is terminal.
func (s *batchState) fail(err error) {
	if s.terminal() {
		return
	}

	now := time.Now().UTC()

	s.phase = phaseFailed
	s.failure = err
	s.finishedAt = &now
}
