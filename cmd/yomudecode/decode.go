package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ashokshau/yomu"
)

var (
	flagWidth     int
	flagHeight    int
	flagStride    int
	flagFormat    string
	flagAll       bool
	flagThreshold float64
)

var decodeCmd = &cobra.Command{
	Use:   "decode <pixel-file>",
	Short: "Decode QR symbols from a raw pixel buffer file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecode,
}

func init() {
	decodeCmd.Flags().IntVar(&flagWidth, "width", 0, "frame width in pixels (required)")
	decodeCmd.Flags().IntVar(&flagHeight, "height", 0, "frame height in pixels (required)")
	decodeCmd.Flags().IntVar(&flagStride, "stride", 0, "row stride in bytes (defaults to width * bytes-per-pixel)")
	decodeCmd.Flags().StringVar(&flagFormat, "format", "grayscale", "pixel format: grayscale, rgba, bgra")
	decodeCmd.Flags().BoolVar(&flagAll, "all", false, "decode every QR symbol in the frame instead of just the first")
	decodeCmd.Flags().Float64Var(&flagThreshold, "threshold", 0.875, "adaptive binarizer threshold factor (0,1]")
	_ = decodeCmd.MarkFlagRequired("width")
	_ = decodeCmd.MarkFlagRequired("height")
}

func parseFormat(s string) (yomu.Format, int, error) {
	switch s {
	case "grayscale":
		return yomu.FormatGrayscale, 1, nil
	case "rgba":
		return yomu.FormatRGBA, 4, nil
	case "bgra":
		return yomu.FormatBGRA, 4, nil
	default:
		return 0, 0, fmt.Errorf("unrecognized format %q (want grayscale, rgba, or bgra)", s)
	}
}

func runDecode(cmd *cobra.Command, args []string) error {
	format, bytesPerPixel, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}
	stride := flagStride
	if stride == 0 {
		stride = flagWidth * bytesPerPixel
	}

	pixels, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading pixel file: %w", err)
	}

	decoder := yomu.New(yomu.WithBinarizerThreshold(flagThreshold))
	img := yomu.Image{
		Pixels:    pixels,
		Width:     flagWidth,
		Height:    flagHeight,
		RowStride: stride,
		Format:    format,
	}

	if flagAll {
		results, err := decoder.DecodeAll(img)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return errors.New("no QR code found")
		}
		for i, r := range results {
			fmt.Printf("[%d] %s\n", i, r.Text)
		}
		return nil
	}

	result, err := decoder.Decode(img)
	if err != nil {
		slog.Error("decode failed", "err", err)
		return err
	}
	fmt.Println(result.Text)
	return nil
}
