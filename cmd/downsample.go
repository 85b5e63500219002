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

var downsampleCmd = &cobra.Command{
	Use:   "downsample",
	Short: "Reduce a point cloud to one averaged point per occupied voxel",
	RunE:  runDownsample,
}

func init() {
	rootCmd.AddCommand(downsampleCmd)
}

func runDownsample(cmd *cobra.Command, args []string) error {
	start := time.Now()
	in := bufio.NewReader(os.Stdin)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	header, err := framing.ReadDownsampleHeader(in)
	if err != nil {
		slog.Error("failed to read downsample header", "error", err)
		return err
	}

	n := int(header.PointCount)
	if err := kernel.ValidatePointCount(n); err != nil {
		slog.Error("rejecting oversized input", "error", err, "point_count", n)
		return err
	}

	payloadBytes := int64(n) * 12
	if header.HasColors() {
		payloadBytes += int64(n) * 12
	}
	if header.HasIntensity() {
		payloadBytes += int64(n) * 4
	}
	if header.HasClassification() {
		payloadBytes += int64(n)
	}
	if err := kernel.ValidatePayloadBytes(payloadBytes); err != nil {
		slog.Error("rejecting oversized payload", "error", err, "bytes", payloadBytes)
		return err
	}

	cloud := &kernel.Cloud{}
	cloud.Positions, err = framing.ReadPositions(in, n)
	if err != nil {
		slog.Error("truncated position payload", "error", err)
		return err
	}
	if header.HasColors() {
		cloud.Colors, err = framing.ReadColors(in, n)
		if err != nil {
			slog.Error("truncated color payload", "error", err)
			return err
		}
	}
	if header.HasIntensity() {
		cloud.Intensity, err = framing.ReadIntensity(in, n)
		if err != nil {
			slog.Error("truncated intensity payload", "error", err)
			return err
		}
	}
	if header.HasClassification() {
		cloud.Classification, err = framing.ReadClassification(in, n)
		if err != nil {
			slog.Error("truncated classification payload", "error", err)
			return err
		}
	}

	bounds := kernel.Bounds{Min: header.MinVec(), Max: header.MaxVec()}
	if err := kernel.ValidateBounds(bounds); err != nil {
		slog.Error("invalid bounds", "error", err)
		_ = framing.WriteEmpty(out)
		return err
	}

	result, err := kernel.Downsample(cloud, kernel.DownsampleParams{
		VoxelSize: float64(header.VoxelSize),
		Bounds:    bounds,
	})
	if err != nil {
		// Point count was already validated above, so this can only be an
		// unexpected internal failure.
		slog.Error("downsample kernel failed", "error", err)
		_ = framing.WriteEmpty(out)
		return err
	}

	if err := writeDownsampleResult(out, result); err != nil {
		slog.Error("failed to write downsample output", "error", err)
		return err
	}

	slog.Info("downsample complete",
		"input_points", n,
		"output_voxels", len(result.Positions),
		"elapsed", time.Since(start),
	)
	return nil
}

func writeDownsampleResult(out *bufio.Writer, result *kernel.DownsampleResult) error {
	m := len(result.Positions)
	if err := framing.WriteCount(out, uint32(m)); err != nil {
		return fmt.Errorf("writing output count: %w", err)
	}
	if err := framing.WritePositions(out, result.Positions); err != nil {
		return fmt.Errorf("writing output positions: %w", err)
	}
	if result.Colors != nil {
		if err := framing.WritePositions(out, result.Colors); err != nil {
			return fmt.Errorf("writing output colors: %w", err)
		}
	}
	if result.Intensity != nil {
		if err := framing.WriteIntensity(out, result.Intensity); err != nil {
			return fmt.Errorf("writing output intensity: %w", err)
		}
	}
	if result.Classification != nil {
		if err := framing.WriteClassification(out, result.Classification); err != nil {
			return fmt.Errorf("writing output classification: %w", err)
		}
	}
	return nil
}
