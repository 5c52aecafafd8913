package meshlet

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// EncodeVertices serializes fixed-size vertex records little-endian, in the
// layout a storage buffer expects. Blank (_) fields are written as zeros.
func EncodeVertices[V any](vertices []V) ([]byte, error) {
	var zero V
	stride := binary.Size(zero)
	if stride <= 0 {
		return nil, fmt.Errorf("vertex type %T has no fixed binary size", zero)
	}

	buf := bytes.NewBuffer(make([]byte, 0, stride*len(vertices)))
	if err := binary.Write(buf, binary.LittleEndian, vertices); err != nil {
		return nil, fmt.Errorf("encoding %d vertices: %w", len(vertices), err)
	}
	return buf.Bytes(), nil
}
