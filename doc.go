// Package yomu decodes QR codes from raw pixel buffers without any
// camera, video, or file-format dependency: callers hand it a
// grayscale/RGBA/BGRA frame and get back the symbol's text.
//
// A typical caller builds one immutable configuration and reuses it
// across frames:
//
//	y := yomu.All()
//	result, err := y.Decode(yomu.Image{
//		Pixels: pixels, Width: w, Height: h, RowStride: w,
//		Format: yomu.FormatGrayscale,
//	})
//
// Decode returns the first symbol found; DecodeAll returns every QR
// symbol in the frame. Both are pure, blocking, single-threaded calls —
// parallel decoding is the caller's responsibility, one goroutine per
// frame, each with its own Image.
package yomu
