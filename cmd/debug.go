package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cwbudde/pointkernel/internal/framing"
	"github.com/cwbudde/pointkernel/internal/kernel"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Emit the world-space centers of all occupied voxels",
	RunE:  runDebug,
}

func init() {
	rootCmd.AddCommand(debugCmd)
}

func runDebug(cmd *cobra.Command, args []string) error {
	start := time.Now()
	in := bufio.NewReader(os.Stdin)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	header, err := framing.ReadDebugHeader(in)
	if err != nil {
		slog.Error("failed to read debug header", "error", err)
		return err
	}

	n := int(header.PointCount)
	if err := kernel.ValidatePointCount(n); err != nil {
		slog.Error("rejecting oversized input", "error", err, "point_count", n)
		return err
	}
	if err := kernel.ValidatePayloadBytes(int64(n) * 12); err != nil {
		slog.Error("rejecting oversized payload", "error", err)
		return err
	}

	positions, err := framing.ReadPositions(in, n)
	if err != nil {
		slog.Error("truncated position payload", "error", err)
		return err
	}

	bounds := kernel.Bounds{Min: header.MinVec(), Max: header.MaxVec()}
	if err := kernel.ValidateBounds(bounds); err != nil {
		slog.Error("invalid bounds", "error", err)
		_ = framing.WriteEmpty(out)
		return err
	}

	centers, err := kernel.Debug(&kernel.Cloud{Positions: positions}, kernel.DebugParams{
		VoxelSize: float64(header.VoxelSize),
		Bounds:    bounds,
	})
	if err != nil {
		slog.Error("debug kernel failed", "error", err)
		_ = framing.WriteEmpty(out)
		return err
	}

	if err := framing.WriteCount(out, uint32(len(centers))); err != nil {
		slog.Error("failed to write output count", "error", err)
		return fmt.Errorf("writing output count: %w", err)
	}
	if err := framing.WritePositions(out, centers); err != nil {
		slog.Error("failed to write output positions", "error", err)
		return fmt.Errorf("writing output positions: %w", err)
	}

	slog.Info("debug complete",
		"input_points", n,
		"occupied_voxels", len(centers),
		"elapsed", time.Since(start),
	)
	return nil
}
