package core

import (
	"github.com/cockroachdb/errors"
)

var (
	ErrSwapchainBooting   = errors.New("swapchain resized or recreated, booting")
	ErrUnknown            = errors.New("unknown")
	ErrBackendUnavailable = errors.New("graphics backend unavailable on this platform")
	ErrNoSuitableDevice   = errors.New("no suitable physical device found")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrInvalidDescriptor  = errors.New("invalid resource descriptor")
	ErrEmptyBytecode      = errors.New("shader bytecode is empty")
	ErrImmutableResource  = errors.New("resource is immutable")
	ErrAssetNotFound      = errors.New("asset not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrNotSupported       = errors.New("operation not supported by this backend")
)
