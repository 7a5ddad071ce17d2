package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v3"
)

type labelAdminStub struct {
	setCalls    [][2]string
	deleteCalls []string
	err         error
}

func (s *labelAdminStub) SetLabel(_ context.Context, address, label string) error {
	s.setCalls = append(s.setCalls, [2]string{address, label})
	return s.err
}

func (s *labelAdminStub) DeleteLabel(_ context.Context, address string) error {
	s.deleteCalls = append(s.deleteCalls, address)
	return s.err
}

func TestSetLabelCommand(t *testing.T) {
	t.Run("should create command with correct metadata", func(t *testing.T) {
		cmd := setLabelCommand(&labelAdminStub{})

		assert.Equal(t, "label", cmd.Name)
		assert.Len(t, cmd.Flags, 2)

		addressFlag := cmd.Flags[0].(*cli.StringFlag)
		assert.Equal(t, "address", addressFlag.Name)
		assert.True(t, addressFlag.Required)

		labelFlag := cmd.Flags[1].(*cli.StringFlag)
		assert.Equal(t, "label", labelFlag.Name)
		assert.True(t, labelFlag.Required)
	})

	t.Run("should execute action successfully with valid flags", func(t *testing.T) {
		admin := &labelAdminStub{}
		app := &cli.Command{
			Commands: []*cli.Command{setLabelCommand(admin)},
		}

		err := app.Run(t.Context(), []string{"test", "label", "--address", "0xabc", "--label", "Binance 14"})

		assert.NoError(t, err)
		assert.Equal(t, [][2]string{{"0xabc", "Binance 14"}}, admin.setCalls)
	})

	t.Run("should return error when the store fails", func(t *testing.T) {
		admin := &labelAdminStub{err: errors.New("redis unavailable")}
		app := &cli.Command{
			Commands: []*cli.Command{setLabelCommand(admin)},
		}

		err := app.Run(t.Context(), []string{"test", "label", "--address", "0xabc", "--label", "Binance 14"})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis unavailable")
	})

	t.Run("should fail when label flag is missing", func(t *testing.T) {
		app := &cli.Command{
			Commands: []*cli.Command{setLabelCommand(&labelAdminStub{})},
		}

		err := app.Run(t.Context(), []string{"test", "label", "--address", "0xabc"})

		assert.Error(t, err)
	})
}

func TestDeleteLabelCommand(t *testing.T) {
	t.Run("should create command with correct metadata", func(t *testing.T) {
		cmd := deleteLabelCommand(&labelAdminStub{})

		assert.Equal(t, "unlabel", cmd.Name)
		assert.Len(t, cmd.Flags, 1)

		addressFlag := cmd.Flags[0].(*cli.StringFlag)
		assert.Equal(t, "address", addressFlag.Name)
		assert.True(t, addressFlag.Required)
	})

	t.Run("should execute action successfully", func(t *testing.T) {
		admin := &labelAdminStub{}
		app := &cli.Command{
			Commands: []*cli.Command{deleteLabelCommand(admin)},
		}

		err := app.Run(t.Context(), []string{"test", "unlabel", "--address", "0xabc"})

		assert.NoError(t, err)
		assert.Equal(t, []string{"0xabc"}, admin.deleteCalls)
	})

	t.Run("should fail when address flag is missing", func(t *testing.T) {
		app := &cli.Command{
			Commands: []*cli.Command{deleteLabelCommand(&labelAdminStub{})},
		}

		err := app.Run(t.Context(), []string{"test", "unlabel"})

		assert.Error(t, err)
	})
}
