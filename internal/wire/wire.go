// Package wire implements the fixed-layout, little-endian request and
// response records exchanged over the daemon's Unix socket, plus the
// one-file-descriptor-per-direction out-of-band transfer that
// accompanies RENDER_BLUR traffic.
//
// Records are encoded by hand onto byte slices rather than via
// binary.Write on the Go struct: Go does not guarantee C's packed
// layout for a struct embedding params.Set, so every offset below is
// written explicitly. The request record carries a use_preset flag and
// a fixed preset-name field ahead of the parameter block, mirroring
// ipc_protocol.c's handle_render_blur, which chooses between a named
// preset and the in-record parameters.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/wlblur/wlblurd/internal/params"
)

// ProtocolVersion is the only version this daemon accepts.
const ProtocolVersion = 1

// Op identifies a request's operation.
type Op uint32

const (
	OpCreateNode Op = 1
	OpDestroyNode Op = 2
	OpRenderBlur Op = 3
)

// Status identifies a response's outcome.
type Status uint32

const (
	StatusSuccess Status = 0
	StatusInvalidNode Status = 1
	StatusInvalidParams Status = 2
	StatusImportFailed Status = 3
	StatusExportFailed Status = 4
	StatusRenderFailed Status = 5
	StatusOutOfMemory Status = 6
)

// presetNameSize is the on-wire width of the preset-name field: a
// fixed, NUL-terminated buffer sized like the original daemon's
// `char name[32]` preset records (original_source/wlblurd/include/config.h),
// i.e. params.MaxPresetNameLen usable bytes plus a terminator.
const presetNameSize = params.MaxPresetNameLen + 1

// RequestSize is the exact byte length of a Request record: the fixed
// 40-byte header, the preset selector, then the parameter set.
const RequestSize = 40 + 4 + presetNameSize + params.EncodedSize

// ResponseSize is the exact byte length of a Response record.
const ResponseSize = 36

// Request mirrors spec §6's request record. RENDER_BLUR requests that
// set UsePreset with a non-empty PresetName resolve their blur
// parameters through the daemon's preset registry instead of using
// Params directly (spec §4.10).
type Request struct {
	Version    uint32
	Op         Op
	NodeID     uint32
	Width      uint32
	Height     uint32
	Format     uint32
	Modifier   uint64
	Stride     uint32
	Offset     uint32
	UsePreset  bool
	PresetName string
	Params     params.Set
}

// Response mirrors spec §6's response record.
type Response struct {
	Status   Status
	NodeID   uint32
	Width    uint32
	Height   uint32
	Format   uint32
	Modifier uint64
	Stride   uint32
	Offset   uint32
}

var errShortBuffer = errors.New("wire: buffer too short")

// encodePresetName writes name into b as a NUL-terminated, fixed-width
// field, truncating to params.MaxPresetNameLen bytes if necessary. b
// must be at least presetNameSize bytes.
func encodePresetName(b []byte, name string) {
	for i := range b {
		b[i] = 0
	}
	if len(name) > params.MaxPresetNameLen {
		name = name[:params.MaxPresetNameLen]
	}
	copy(b, name)
}

// decodePresetName reads a NUL-terminated preset name out of b.
func decodePresetName(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// EncodeParams writes p to b in field declaration order. b must be at
// least params.EncodedSize bytes.
func EncodeParams(b []byte, p params.Set) {
	le := binary.LittleEndian
	le.PutUint32(b[0:4], uint32(p.Algorithm))
	le.PutUint32(b[4:8], p.Passes)
	le.PutUint32(b[8:12], floatBits(p.Radius))
	le.PutUint32(b[12:16], floatBits(p.Brightness))
	le.PutUint32(b[16:20], floatBits(p.Contrast))
	le.PutUint32(b[20:24], floatBits(p.Saturation))
	le.PutUint32(b[24:28], floatBits(p.Noise))
	le.PutUint32(b[28:32], floatBits(p.Vibrancy))
	le.PutUint32(b[32:36], floatBits(p.VibrancyDarkness))
	le.PutUint32(b[36:40], floatBits(p.TintR))
	le.PutUint32(b[40:44], floatBits(p.TintG))
	le.PutUint32(b[44:48], floatBits(p.TintB))
	le.PutUint32(b[48:52], floatBits(p.TintA))
}

// DecodeParams reads a params.Set from b, the inverse of EncodeParams.
func DecodeParams(b []byte) params.Set {
	le := binary.LittleEndian
	return params.Set{
		Algorithm:        params.Algorithm(le.Uint32(b[0:4])),
		Passes:           le.Uint32(b[4:8]),
		Radius:           bitsFloat(le.Uint32(b[8:12])),
		Brightness:       bitsFloat(le.Uint32(b[12:16])),
		Contrast:         bitsFloat(le.Uint32(b[16:20])),
		Saturation:       bitsFloat(le.Uint32(b[20:24])),
		Noise:            bitsFloat(le.Uint32(b[24:28])),
		Vibrancy:         bitsFloat(le.Uint32(b[28:32])),
		VibrancyDarkness: bitsFloat(le.Uint32(b[32:36])),
		TintR:            bitsFloat(le.Uint32(b[36:40])),
		TintG:            bitsFloat(le.Uint32(b[40:44])),
		TintB:            bitsFloat(le.Uint32(b[44:48])),
		TintA:            bitsFloat(le.Uint32(b[48:52])),
	}
}

// Encode writes r to a freshly allocated RequestSize-byte buffer.
func (r Request) Encode() []byte {
	b := make([]byte, RequestSize)
	le := binary.LittleEndian
	le.PutUint32(b[0:4], r.Version)
	le.PutUint32(b[4:8], uint32(r.Op))
	le.PutUint32(b[8:12], r.NodeID)
	le.PutUint32(b[12:16], r.Width)
	le.PutUint32(b[16:20], r.Height)
	le.PutUint32(b[20:24], r.Format)
	le.PutUint64(b[24:32], r.Modifier)
	le.PutUint32(b[32:36], r.Stride)
	le.PutUint32(b[36:40], r.Offset)
	if r.UsePreset {
		le.PutUint32(b[40:44], 1)
	} else {
		le.PutUint32(b[40:44], 0)
	}
	encodePresetName(b[44:44+presetNameSize], r.PresetName)
	EncodeParams(b[44+presetNameSize:], r.Params)
	return b
}

// DecodeRequest parses b, the inverse of Request.Encode. b must be
// exactly RequestSize bytes.
func DecodeRequest(b []byte) (Request, error) {
	if len(b) != RequestSize {
		return Request{}, errShortBuffer
	}
	le := binary.LittleEndian
	return Request{
		Version:    le.Uint32(b[0:4]),
		Op:         Op(le.Uint32(b[4:8])),
		NodeID:     le.Uint32(b[8:12]),
		Width:      le.Uint32(b[12:16]),
		Height:     le.Uint32(b[16:20]),
		Format:     le.Uint32(b[20:24]),
		Modifier:   le.Uint64(b[24:32]),
		Stride:     le.Uint32(b[32:36]),
		Offset:     le.Uint32(b[36:40]),
		UsePreset:  le.Uint32(b[40:44]) != 0,
		PresetName: decodePresetName(b[44 : 44+presetNameSize]),
		Params:     DecodeParams(b[44+presetNameSize:]),
	}, nil
}

// Encode writes r to a freshly allocated ResponseSize-byte buffer.
func (r Response) Encode() []byte {
	b := make([]byte, ResponseSize)
	le := binary.LittleEndian
	le.PutUint32(b[0:4], uint32(r.Status))
	le.PutUint32(b[4:8], r.NodeID)
	le.PutUint32(b[8:12], r.Width)
	le.PutUint32(b[12:16], r.Height)
	le.PutUint32(b[16:20], r.Format)
	le.PutUint64(b[20:28], r.Modifier)
	le.PutUint32(b[28:32], r.Stride)
	le.PutUint32(b[32:36], r.Offset)
	return b
}

// DecodeResponse parses b, the inverse of Response.Encode. b must be
// exactly ResponseSize bytes.
func DecodeResponse(b []byte) (Response, error) {
	if len(b) != ResponseSize {
		return Response{}, errShortBuffer
	}
	le := binary.LittleEndian
	return Response{
		Status:   Status(le.Uint32(b[0:4])),
		NodeID:   le.Uint32(b[4:8]),
		Width:    le.Uint32(b[8:12]),
		Height:   le.Uint32(b[12:16]),
		Format:   le.Uint32(b[16:20]),
		Modifier: le.Uint64(b[20:28]),
		Stride:   le.Uint32(b[28:32]),
		Offset:   le.Uint32(b[32:36]),
	}, nil
}
