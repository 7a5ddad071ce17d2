package batchproc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchState(t *testing.T) {
	t.Run("advances through phases until terminal", func(t *testing.T) {
		state := newBatchState()
		require.Equal(t, phaseReceived, state.phase)

		state.advance(phaseExtracting)
		assert.Equal(t, phaseExtracting, state.phase)

		state.finish()
		assert.Equal(t, phaseDone, state.phase)
		require.NotNil(t, state.finishedAt)

		// Terminal phases reject further transitions.
		state.advance(phaseReporting)
		assert.Equal(t, phaseDone, state.phase)
	})

	t.Run("fail records the terminal error", func(t *testing.T) {
		state := newBatchState()
		cause := errors.New("boom")

		state.fail(cause)

		assert.Equal(t, phaseFailed, state.phase)
		assert.ErrorIs(t, state.failure, cause)
		require.NotNil(t, state.finishedAt)

		// The first failure wins.
		state.fail(errors.New("later"))
		assert.ErrorIs(t, state.failure, cause)
	})
}
