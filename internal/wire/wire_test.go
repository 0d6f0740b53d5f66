package wire

import (
	"testing"

	"github.com/wlblur/wlblurd/internal/params"
)

func sampleParams() params.Set {
	s := params.Default()
	s.Radius = 7.5
	s.TintA = 0.25
	return s
}

func TestSizesMatchByteTables(t *testing.T) {
	if RequestSize != 128 {
		t.Errorf("RequestSize = %d, want 128", RequestSize)
	}
	if ResponseSize != 36 {
		t.Errorf("ResponseSize = %d, want 36", ResponseSize)
	}
}

func TestRequestRoundTrip(t *testing.T) {
	req := Request{
		Version:    ProtocolVersion,
		Op:         OpRenderBlur,
		NodeID:     42,
		Width:      1920,
		Height:     1080,
		Format:     0x34325241,
		Modifier:   0x00ffffffffffffff,
		Stride:     7680,
		Offset:     128,
		UsePreset:  true,
		PresetName: "window",
		Params:     sampleParams(),
	}

	encoded := req.Encode()
	if len(encoded) != RequestSize {
		t.Fatalf("Encode() length = %d, want %d", len(encoded), RequestSize)
	}

	got, err := DecodeRequest(encoded)
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if got != req {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, req)
	}
}

func TestRequestRoundTripNoPreset(t *testing.T) {
	req := Request{
		Version: ProtocolVersion,
		Op:      OpRenderBlur,
		NodeID:  1,
		Params:  sampleParams(),
	}
	got, err := DecodeRequest(req.Encode())
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if got.UsePreset {
		t.Error("UsePreset should decode false when never set")
	}
	if got.PresetName != "" {
		t.Errorf("PresetName = %q, want empty", got.PresetName)
	}
}

func TestPresetNameTruncatedWhenOversized(t *testing.T) {
	long := ""
	for i := 0; i < params.MaxPresetNameLen+10; i++ {
		long += "x"
	}
	req := Request{Version: ProtocolVersion, Op: OpRenderBlur, UsePreset: true, PresetName: long, Params: sampleParams()}
	got, err := DecodeRequest(req.Encode())
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if len(got.PresetName) != params.MaxPresetNameLen {
		t.Errorf("PresetName length = %d, want %d", len(got.PresetName), params.MaxPresetNameLen)
	}
}

func TestRequestFieldOffsets(t *testing.T) {
	req := Request{
		Version:    0xAABBCCDD,
		Op:         OpDestroyNode,
		NodeID:     0x11223344,
		Width:      0x55667788,
		Height:     0x99AABBCC,
		Format:     0xDDEEFF00,
		Stride:     0x01020304,
		Offset:     0x05060708,
		UsePreset:  true,
		PresetName: "hud",
		Params:     params.Default(),
	}
	b := req.Encode()

	checkU32 := func(offset int, want uint32, name string) {
		got := uint32(b[offset]) | uint32(b[offset+1])<<8 | uint32(b[offset+2])<<16 | uint32(b[offset+3])<<24
		if got != want {
			t.Errorf("%s at offset %d = %#x, want %#x", name, offset, got, want)
		}
	}
	checkU32(0, req.Version, "version")
	checkU32(4, uint32(req.Op), "op")
	checkU32(8, req.NodeID, "node_id")
	checkU32(12, req.Width, "width")
	checkU32(16, req.Height, "height")
	checkU32(20, req.Format, "format")
	checkU32(32, req.Stride, "stride")
	checkU32(36, req.Offset, "offset")
	checkU32(40, 1, "use_preset")
	if got := string(b[44:47]); got != "hud" {
		t.Errorf("preset_name at offset 44 = %q, want %q", got, "hud")
	}
	if b[47] != 0 {
		t.Errorf("preset_name must be NUL-terminated within its field")
	}
	if offset := 44 + presetNameSize; len(b) <= offset {
		t.Errorf("params block must start at byte %d", offset)
	}
}

func TestDecodeRequestRejectsWrongLength(t *testing.T) {
	if _, err := DecodeRequest(make([]byte, RequestSize-1)); err == nil {
		t.Error("DecodeRequest should reject a short buffer")
	}
	if _, err := DecodeRequest(make([]byte, RequestSize+1)); err == nil {
		t.Error("DecodeRequest should reject an oversized buffer")
	}
}

func TestResponseRoundTrip(t *testing.T) {
	resp := Response{
		Status:   StatusSuccess,
		NodeID:   7,
		Width:    256,
		Height:   256,
		Format:   0x34325241,
		Modifier: 0x1122334455667788,
		Stride:   1024,
		Offset:   0,
	}

	encoded := resp.Encode()
	if len(encoded) != ResponseSize {
		t.Fatalf("Encode() length = %d, want %d", len(encoded), ResponseSize)
	}

	got, err := DecodeResponse(encoded)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if got != resp {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, resp)
	}
}

func TestDecodeResponseRejectsWrongLength(t *testing.T) {
	if _, err := DecodeResponse(make([]byte, ResponseSize-4)); err == nil {
		t.Error("DecodeResponse should reject a short buffer")
	}
}

func TestParamsRoundTrip(t *testing.T) {
	p := sampleParams()
	b := make([]byte, params.EncodedSize)
	EncodeParams(b, p)
	got := DecodeParams(b)
	if got != p {
		t.Errorf("params round trip mismatch: got %+v, want %+v", got, p)
	}
}
