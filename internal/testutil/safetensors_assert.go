package testutil

import (
	"encoding/binary"
	"encoding/json"
	"testing"
)

// AssertValidSafetensors checks the framing of a safetensors payload: an
// 8-byte little-endian header length, a JSON object header, and data offsets
// that exactly cover the bytes after the header.
func AssertValidSafetensors(tb testing.TB, data []byte) {
	tb.Helper()

	if len(data) < 8 {
		tb.Fatalf("safetensors data too short: %d bytes", len(data))
		return
	}

	headerLen := binary.LittleEndian.Uint64(data[:8])
	if headerLen > uint64(len(data)-8) {
		tb.Fatalf("safetensors: header length %d exceeds payload (%d bytes)", headerLen, len(data)-8)
		return
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(data[8:8+headerLen], &header); err != nil {
		tb.Fatalf("safetensors: header is not a JSON object: %v", err)
		return
	}

	dataLen := len(data) - 8 - int(headerLen)
	end := 0

	for name, raw := range header {
		if name == "__metadata__" {
			continue
		}

		var entry struct {
			Offsets [2]int `json:"data_offsets"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			tb.Fatalf("safetensors: entry %q: %v", name, err)
			return
		}

		if entry.Offsets[0] > entry.Offsets[1] || entry.Offsets[1] > dataLen {
			tb.Fatalf("safetensors: entry %q offsets %v outside data (%d bytes)", name, entry.Offsets, dataLen)
			return
		}

		end = max(end, entry.Offsets[1])
	}

	if end != dataLen {
		tb.Fatalf("safetensors: offsets cover %d bytes, data section has %d", end, dataLen)
	}
}
