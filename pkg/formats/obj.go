// Package formats provides parsers for mesh source formats.
// OBJ (Wavefront) parser producing 16-bit indexed triangle lists.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/meshlet-lab/pkg/math"
)

// MaxOBJVertices is the largest vertex count addressable by 16-bit indices.
const MaxOBJVertices = 1 << 16

// OBJ format errors.
var (
	ErrInvalidOBJVertex   = errors.New("invalid OBJ vertex")
	ErrInvalidOBJFace     = errors.New("invalid OBJ face")
	ErrOBJIndexOutOfRange = errors.New("OBJ face index out of range")
	ErrOBJTooManyVertices = errors.New("OBJ has too many vertices for 16-bit indices")
	ErrOBJNoGeometry      = errors.New("OBJ contains no triangles")
)

// OBJ is a triangulated Wavefront OBJ mesh.
// Only positions (and the common "v x y z r g b" vertex color extension) are kept;
// texture coordinate and normal references in faces are accepted and ignored.
type OBJ struct {
	Positions []math.Vec3
	Colors    []math.Vec3 // Per-vertex colors, nil if the file has none
	Indices   []uint16    // Triangle list, 3 per triangle
}

// TriangleCount returns the number of triangles.
func (o *OBJ) TriangleCount() int {
	return len(o.Indices) / 3
}

// Bounds returns the axis-aligned bounding box of the positions.
func (o *OBJ) Bounds() (lo, hi math.Vec3) {
	if len(o.Positions) == 0 {
		return
	}
	lo, hi = o.Positions[0], o.Positions[0]
	for _, p := range o.Positions[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi
}

// ParseOBJ parses OBJ data from a byte slice.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	var colors []math.Vec3
	hasColor := false

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			pos, col, ok, err := parseOBJVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if len(obj.Positions) >= MaxOBJVertices {
				return nil, fmt.Errorf("%w: more than %d", ErrOBJTooManyVertices, MaxOBJVertices)
			}
			obj.Positions = append(obj.Positions, pos)
			colors = append(colors, col)
			hasColor = hasColor || ok

		case "f":
			if err := obj.addFace(fields[1:]); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}

		default:
			// vt, vn, o, g, s, usemtl, mtllib: not needed for meshlet input
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	if len(obj.Indices) == 0 {
		return nil, ErrOBJNoGeometry
	}
	if hasColor {
		obj.Colors = colors
	}
	return obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// parseOBJVertex reads "x y z [w]" or "x y z r g b". ok reports a color was present.
func parseOBJVertex(fields []string) (pos, col math.Vec3, ok bool, err error) {
	if len(fields) < 3 {
		return pos, col, false, fmt.Errorf("%w: need 3 coordinates, got %d", ErrInvalidOBJVertex, len(fields))
	}

	var v [6]float32
	n := min(len(fields), 6)
	for i := 0; i < n; i++ {
		f, perr := strconv.ParseFloat(fields[i], 32)
		if perr != nil {
			return pos, col, false, fmt.Errorf("%w: %q", ErrInvalidOBJVertex, fields[i])
		}
		v[i] = float32(f)
	}

	pos = math.V3(v[0], v[1], v[2])
	if n == 6 {
		return pos, math.V3(v[3], v[4], v[5]), true, nil
	}
	return pos, math.Splat(1), false, nil
}

// addFace resolves face corners and fan-triangulates the polygon.
func (o *OBJ) addFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("%w: need 3 corners, got %d", ErrInvalidOBJFace, len(fields))
	}

	corners := make([]uint16, len(fields))
	for i, f := range fields {
		idx, err := o.resolveIndex(f)
		if err != nil {
			return err
		}
		corners[i] = idx
	}

	for i := 1; i+1 < len(corners); i++ {
		o.Indices = append(o.Indices, corners[0], corners[i], corners[i+1])
	}
	return nil
}

// resolveIndex converts "v", "v/vt", "v//vn" or "v/vt/vn" to a 0-based position index.
// Negative indices are relative to the vertices read so far.
func (o *OBJ) resolveIndex(corner string) (uint16, error) {
	ref, _, _ := strings.Cut(corner, "/")
	n, err := strconv.Atoi(ref)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: corner %q", ErrInvalidOBJFace, corner)
	}

	count := len(o.Positions)
	idx := n - 1
	if n < 0 {
		idx = count + n
	}
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("%w: %d with %d vertices", ErrOBJIndexOutOfRange, n, count)
	}
	return uint16(idx), nil
}
