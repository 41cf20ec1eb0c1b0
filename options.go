package yomu

import "log/slog"

// BarcodeScanner selects whether 1D barcode fallback runs after the QR
// path. Only `None` is implemented by this module's core (1D decoders
// are an explicit spec Non-goal); `All` is accepted but currently
// behaves identically to `None`, reserved for a future barcode package.
type BarcodeScanner int

const (
	BarcodeScannerNone BarcodeScanner = iota
	BarcodeScannerAll
)

// Option configures a Yomu value. The option set is closed: every field
// Yomu exposes has a corresponding With* constructor, and since Yomu's
// fields are unexported, an Option written outside this package cannot
// set them directly.
type Option func(*Yomu)

// WithQRCode toggles the QR decode path. Disabled, Decode/DecodeAll
// always report ErrNoSymbolFound (unless barcode scanning is enabled
// and finds something).
func WithQRCode(enabled bool) Option {
	return func(y *Yomu) { y.enableQRCode = enabled }
}

// WithBarcodeScanner selects the 1D barcode fallback mode.
func WithBarcodeScanner(mode BarcodeScanner) Option {
	return func(y *Yomu) { y.barcodeScanner = mode }
}

// WithBinarizerThreshold overrides the adaptive binarizer's threshold
// factor (default 0.875). Values outside (0,1] are ignored and the
// current factor is kept.
func WithBinarizerThreshold(factor float64) Option {
	return func(y *Yomu) {
		if factor <= 0 || factor > 1 {
			return
		}
		y.binarizerThreshold = factor
	}
}

// WithAlignmentAreaAllowance overrides the loose-retry alignment search
// allowance (default 15). The tight first attempt always uses 5,
// regardless of this setting.
func WithAlignmentAreaAllowance(allowance int) Option {
	return func(y *Yomu) {
		if allowance <= 0 {
			return
		}
		y.alignmentAreaAllowance = allowance
	}
}

// WithLogger overrides the *slog.Logger used for the pipeline's debug
// diagnostics (recovered detection failures, skipped uncorrectable
// symbols). A nil logger is ignored; the default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(y *Yomu) {
		if logger == nil {
			return
		}
		y.logger = logger
	}
}

// New builds a Yomu configuration from the given options, starting from
// the same defaults as the All preset.
func New(opts ...Option) *Yomu {
	y := &Yomu{
		enableQRCode:           true,
		barcodeScanner:         BarcodeScannerNone,
		binarizerThreshold:     0.875,
		alignmentAreaAllowance: 15,
		logger:                 slog.Default(),
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// All returns the default preset: QR decoding enabled, no barcode
// fallback.
func All() *Yomu { return New() }

// QROnly is equivalent to All for this module, since 1D barcode
// scanning isn't implemented — kept as a distinct preset so callers
// that migrate to a future barcode-capable build don't need to change
// call sites.
func QROnly() *Yomu {
	return New(WithBarcodeScanner(BarcodeScannerNone))
}

// BarcodeOnly disables the QR path. With no barcode decoder wired in
// yet, this preset currently never produces a result; it exists so the
// closed option set's third documented preset has a concrete value.
func BarcodeOnly() *Yomu {
	return New(WithQRCode(false), WithBarcodeScanner(BarcodeScannerAll))
}
