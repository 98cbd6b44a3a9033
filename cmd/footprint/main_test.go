package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/cli"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/config"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/engine"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/pkg/version"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		assert.NotNil(t, root)
		assert.Equal(t, "footprint", root.Use)
		assert.Equal(t, version.GetVersion(), root.Version)
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error", err: nil, want: exitOK},
		{name: "generic error", err: errors.New("boom"), want: exitError},
		{name: "invalid config", err: fmt.Errorf("validation: %w", config.ErrInvalidConfig), want: exitConfigError},
		{name: "unknown key", err: config.ErrUnknownKey, want: exitConfigError},
		{name: "invalid input", err: fmt.Errorf("%w: --user is required", engine.ErrInvalidInput), want: exitUsage},
		{name: "unrecognized mode", err: engine.ErrUnrecognizedMode, want: exitUsage},
		{
			name: "joined config error",
			err:  errors.Join(errors.New("outer"), config.ErrInvalidConfig),
			want: exitConfigError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
