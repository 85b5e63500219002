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

var smoothCmd = &cobra.Command{
	Use:   "smooth",
	Short: "Iterative Laplacian-style smoothing over a spatial-hash neighborhood",
	RunE:  runSmooth,
}

func init() {
	rootCmd.AddCommand(smoothCmd)
}

func runSmooth(cmd *cobra.Command, args []string) error {
	start := time.Now()
	in := bufio.NewReader(os.Stdin)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	header, err := framing.ReadSmoothHeader(in)
	if err != nil {
		slog.Error("failed to read smooth header", "error", err)
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

	if n == 0 {
		if err := framing.WriteCount(out, 0); err != nil {
			return fmt.Errorf("writing output count: %w", err)
		}
		return nil
	}

	params := kernel.SmoothParams{
		Radius:     float64(header.Radius),
		Iterations: int(header.Iterations),
	}

	result, err := kernel.Smooth(positions, params)
	if err != nil {
		// Non-positive radius/iterations are not an error here (Smooth
		// returns an empty result for those), so this can only be an
		// unexpected internal failure.
		slog.Error("smooth kernel failed", "error", err)
		_ = framing.WriteEmpty(out)
		return err
	}

	if err := framing.WriteCount(out, uint32(len(result))); err != nil {
		slog.Error("failed to write output count", "error", err)
		return fmt.Errorf("writing output count: %w", err)
	}
	if err := framing.WritePositions(out, result); err != nil {
		slog.Error("failed to write output positions", "error", err)
		return fmt.Errorf("writing output positions: %w", err)
	}

	slog.Info("smooth complete",
		"points", n,
		"radius", params.Radius,
		"iterations", params.Iterations,
		"elapsed", time.Since(start),
	)
	return nil
}
