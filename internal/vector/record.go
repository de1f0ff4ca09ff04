package vector

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

// Persisted record field names. The layout must round-trip bit-exact so
// other readers of the same store can decode it.
const (
	FieldText     = "text"
	FieldMetadata = "metadata"
	FieldVector   = "vector"
)

// EncodeVector serializes a vector as contiguous little-endian float32,
// no header, no padding.
func EncodeVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// DecodeVector parses raw little-endian float32 bytes.
func DecodeVector(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("vector bytes not a multiple of 4: %d", len(raw))
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vec, nil
}

// EncodeRecord builds the persisted field map for one item: verbatim
// text, JSON metadata ("{}"  when absent), and the raw vector bytes.
func EncodeRecord(text string, metadata Metadata, vec []float32) (map[string][]byte, error) {
	meta := []byte("{}")
	if len(metadata) > 0 {
		var err error
		meta, err = json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
	}
	return map[string][]byte{
		FieldText:     []byte(text),
		FieldMetadata: meta,
		FieldVector:   EncodeVector(vec),
	}, nil
}
