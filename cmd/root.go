package main

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logger   *slog.Logger

	// invocationID correlates the stderr log lines of a single process
	// invocation. Kernels share no state across processes; this id exists
	// purely so a caller piping stderr from many concurrent child processes
	// can attribute lines back to one invocation.
	invocationID string
)

var rootCmd = &cobra.Command{
	Use:   "pointkernel",
	Short: "Point cloud compute kernels: voxel downsample, voxel debug, point smooth",
	Long: `pointkernel runs a single geometric transformation over a point cloud
read as a binary-framed sequence of floats on stdin, writing the transformed
sequence on stdout. Each subcommand is one of the three compute kernels;
parameters travel entirely in the wire header, never as flags.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		// Diagnostics go to stderr, never stdout: stdout carries the binary
		// output framing and must contain nothing but the wire protocol.
		opts := &slog.HandlerOptions{Level: level}
		handler := slog.NewJSONHandler(os.Stderr, opts)
		invocationID = uuid.NewString()
		logger = slog.New(handler).With("invocation_id", invocationID)
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
