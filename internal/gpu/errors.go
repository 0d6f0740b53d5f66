package gpu

import (
	"errors"

	"github.com/wlblur/wlblurd/internal/wire"
)

// Sentinel errors for C1-C6's taxonomy (spec §7). Each maps to exactly
// one wire.Status so the dispatcher never has to re-classify a string.
var (
	ErrMissingExtension = errors.New("gpu: required extension missing")
	ErrInvalidParams    = errors.New("gpu: invalid parameters")
	ErrImportFailed     = errors.New("gpu: dma-buf import failed")
	ErrExportFailed     = errors.New("gpu: dma-buf export failed")
	ErrRenderFailed     = errors.New("gpu: render failed")
	ErrPoolExhausted    = errors.New("gpu: render target pool exhausted")
)

// StatusFor maps an error returned by the façade to the wire status
// code the dispatcher should answer with.
func StatusFor(err error) wire.Status {
	switch {
	case err == nil:
		return wire.StatusSuccess
	case errors.Is(err, ErrInvalidParams):
		return wire.StatusInvalidParams
	case errors.Is(err, ErrImportFailed):
		return wire.StatusImportFailed
	case errors.Is(err, ErrExportFailed):
		return wire.StatusExportFailed
	case errors.Is(err, ErrPoolExhausted):
		return wire.StatusOutOfMemory
	default:
		return wire.StatusRenderFailed
	}
}
