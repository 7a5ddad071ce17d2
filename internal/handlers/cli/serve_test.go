package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

type batchprocStub struct {
	started   bool
	closed    bool
	processed [][]byte
	startErr  error
	procErr   error
}

func (s *batchprocStub) Start(context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}

func (s *batchprocStub) Enqueue(context.Context, []byte) error { return nil }

func (s *batchprocStub) Close() { s.closed = true }

func (s *batchprocStub) ProcessPayload(_ context.Context, payload []byte) error {
	if s.procErr != nil {
		return s.procErr
	}
	s.processed = append(s.processed, payload)
	return nil
}

func TestReplayCommand(t *testing.T) {
	t.Run("should create command with correct metadata", func(t *testing.T) {
		cmd := replayCommand(&batchprocStub{})

		assert.Equal(t, "replay", cmd.Name)
		assert.Len(t, cmd.Flags, 1)

		fileFlag := cmd.Flags[0].(*cli.StringFlag)
		assert.Equal(t, "file", fileFlag.Name)
		assert.True(t, fileFlag.Required)
	})

	t.Run("should process the payload file through the pipeline", func(t *testing.T) {
		payload := `{"whaleTransactions": []}`
		path := filepath.Join(t.TempDir(), "payload.json")
		require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

		bp := &batchprocStub{}
		app := &cli.Command{
			Commands: []*cli.Command{replayCommand(bp)},
		}

		err := app.Run(t.Context(), []string{"test", "replay", "--file", path})

		assert.NoError(t, err)
		require.Len(t, bp.processed, 1)
		assert.Equal(t, payload, string(bp.processed[0]))
	})

	t.Run("should fail when the file does not exist", func(t *testing.T) {
		app := &cli.Command{
			Commands: []*cli.Command{replayCommand(&batchprocStub{})},
		}

		err := app.Run(t.Context(), []string{"test", "replay", "--file", "/nonexistent/payload.json"})

		assert.Error(t, err)
	})

	t.Run("should surface pipeline errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "payload.json")
		require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

		bp := &batchprocStub{procErr: errors.New("malformed webhook payload")}
		app := &cli.Command{
			Commands: []*cli.Command{replayCommand(bp)},
		}

		err := app.Run(t.Context(), []string{"test", "replay", "--file", path})

		assert.Error(t, err)
	})

	t.Run("should fail when file flag is missing", func(t *testing.T) {
		app := &cli.Command{
			Commands: []*cli.Command{replayCommand(&batchprocStub{})},
		}

		err := app.Run(t.Context(), []string{"test", "replay"})

		assert.Error(t, err)
	})
}

func TestServeCommand(t *testing.T) {
	t.Run("should create command with correct metadata", func(t *testing.T) {
		cmd := serveCommand(&batchprocStub{}, nil)

		assert.Equal(t, "serve", cmd.Name)
		assert.Empty(t, cmd.Flags)
	})

	t.Run("should surface pipeline start errors", func(t *testing.T) {
		bp := &batchprocStub{startErr: errors.New("already started")}
		app := &cli.Command{
			Commands: []*cli.Command{serveCommand(bp, nil)},
		}

		err := app.Run(t.Context(), []string{"test", "serve"})

		assert.Error(t, err)
	})
}
