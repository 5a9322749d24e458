package loaders

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

var squareVertices = []core.Vec3{
	core.NewVec3(0, 0, 0),
	core.NewVec3(1, 0, 0),
	core.NewVec3(1, 1, 0),
	core.NewVec3(0, 1, 0),
}

// createBinaryPLY builds a square as one quad face, with optional extra vertex properties
func createBinaryPLY(t *testing.T, order binary.ByteOrder, includeNormals bool) []byte {
	t.Helper()
	var buf bytes.Buffer

	format := "binary_little_endian"
	if order == binary.BigEndian {
		format = "binary_big_endian"
	}

	buf.WriteString("ply\n")
	buf.WriteString("format " + format + " 1.0\n")
	buf.WriteString("comment test square\n")
	buf.WriteString("element vertex 4\n")
	buf.WriteString("property float x\n")
	buf.WriteString("property float y\n")
	buf.WriteString("property float z\n")
	if includeNormals {
		buf.WriteString("property float nx\n")
		buf.WriteString("property float ny\n")
		buf.WriteString("property float nz\n")
		buf.WriteString("property uchar red\n")
	}
	buf.WriteString("element face 1\n")
	buf.WriteString("property list uchar int vertex_indices\n")
	buf.WriteString("end_header\n")

	for _, v := range squareVertices {
		binary.Write(&buf, order, float32(v.X))
		binary.Write(&buf, order, float32(v.Y))
		binary.Write(&buf, order, float32(v.Z))
		if includeNormals {
			binary.Write(&buf, order, [3]float32{0, 0, 1})
			buf.WriteByte(200)
		}
	}

	buf.WriteByte(4)
	binary.Write(&buf, order, [4]int32{0, 1, 2, 3})

	return buf.Bytes()
}

func TestParsePLYBinary(t *testing.T) {
	tests := []struct {
		name           string
		order          binary.ByteOrder
		includeNormals bool
	}{
		{"little endian", binary.LittleEndian, false},
		{"big endian", binary.BigEndian, false},
		{"little endian with extra properties", binary.LittleEndian, true},
		{"big endian with extra properties", binary.BigEndian, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := createBinaryPLY(t, tt.order, tt.includeNormals)
			mesh, err := ParsePLY(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("ParsePLY failed: %v", err)
			}

			if !reflect.DeepEqual(mesh.Vertices, squareVertices) {
				t.Errorf("Expected vertices %v, got %v", squareVertices, mesh.Vertices)
			}
			expected := []int{0, 1, 2, 0, 2, 3}
			if !reflect.DeepEqual(mesh.Faces, expected) {
				t.Errorf("Expected faces %v, got %v", expected, mesh.Faces)
			}
		})
	}
}

func TestParsePLYASCII(t *testing.T) {
	data := `ply
format ascii 1.0
element vertex 4
property double x
property double y
property double z
element edge 1
property int vertex1
property int vertex2
element face 2
property list uchar uint vertex_index
end_header
0 0 0
1 0 0
1 1 0
0 1 0
0 1
3 0 1 2
3 0 2 3
`
	mesh, err := ParsePLY(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParsePLY failed: %v", err)
	}
	if len(mesh.Vertices) != 4 {
		t.Fatalf("Expected 4 vertices, got %d", len(mesh.Vertices))
	}
	expected := []int{0, 1, 2, 0, 2, 3}
	if !reflect.DeepEqual(mesh.Faces, expected) {
		t.Errorf("Expected faces %v, got %v", expected, mesh.Faces)
	}
}

func TestParsePLYErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no magic", "format ascii 1.0\nend_header\n"},
		{"unterminated header", "ply\nformat ascii 1.0\nelement vertex 1\n"},
		{"unknown format", "ply\nformat binary_middle_endian 1.0\nelement vertex 0\nproperty float x\nelement face 0\nproperty list uchar int vertex_indices\nend_header\n"},
		{"no faces", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nend_header\n0\n"},
		{"unknown type", "ply\nformat ascii 1.0\nelement vertex 1\nproperty quad x\nend_header\n"},
		{"truncated data", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n"},
		{"index out of range", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 5\n"},
		{"face with two vertices", "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n2 0 1\n"},
		{"negative list length", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list int int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n-1 0 1 2\n"},
		{"oversized list length", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uint int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n4000000000 0 1 2\n"},
		{"huge vertex count", "ply\nformat ascii 1.0\nelement vertex 2000000000\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePLY(strings.NewReader(tt.data)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestParsePLYBinaryNegativeListLength(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("ply\nformat binary_little_endian 1.0\n")
	buf.WriteString("element vertex 3\nproperty float x\nproperty float y\nproperty float z\n")
	buf.WriteString("element face 1\nproperty list char int vertex_indices\nend_header\n")
	for _, v := range squareVertices[:3] {
		binary.Write(&buf, binary.LittleEndian, [3]float32{float32(v.X), float32(v.Y), float32(v.Z)})
	}
	buf.WriteByte(0xff) // -1 as a signed char
	binary.Write(&buf, binary.LittleEndian, [3]int32{0, 1, 2})

	_, err := ParsePLY(&buf)
	if !errors.Is(err, core.ErrInvalidScene) {
		t.Errorf("Expected ErrInvalidScene for a negative list length, got %v", err)
	}
}

func TestParsePLYHeader(t *testing.T) {
	data := "ply\nformat binary_little_endian 1.0\nelement vertex 10\nproperty float x\nproperty float y\nproperty float z\nelement face 5\nproperty list uchar int vertex_indices\nend_header\n"
	reader := newTestReader(data)

	header, err := parsePLYHeader(reader)
	if err != nil {
		t.Fatalf("parsePLYHeader failed: %v", err)
	}
	if header.Format != "binary_little_endian" || header.Version != "1.0" {
		t.Errorf("Unexpected format %q %q", header.Format, header.Version)
	}
	if len(header.Elements) != 2 {
		t.Fatalf("Expected 2 elements, got %d", len(header.Elements))
	}

	face := header.element("face")
	if face == nil || face.Count != 5 {
		t.Fatalf("Expected face element with count 5, got %+v", face)
	}
	prop := face.Properties[0]
	if !prop.IsList || prop.ListType != "uchar" || prop.DataType != "int" || prop.Name != "vertex_indices" {
		t.Errorf("Unexpected list property %+v", prop)
	}
}

func TestLoadPLYFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.ply")
	if err := os.WriteFile(path, createBinaryPLY(t, binary.LittleEndian, true), 0644); err != nil {
		t.Fatal(err)
	}

	mesh, err := LoadMesh(path)
	if err != nil {
		t.Fatalf("LoadMesh failed: %v", err)
	}
	if mesh.TriangleCount() != 2 {
		t.Errorf("Expected 2 triangles, got %d", mesh.TriangleCount())
	}

	if _, err := LoadPLY(filepath.Join(t.TempDir(), "missing.ply")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestGetTypeSize(t *testing.T) {
	tests := map[string]int{
		"char": 1, "uchar": 1, "int8": 1, "uint8": 1,
		"short": 2, "ushort": 2, "int16": 2, "uint16": 2,
		"int": 4, "uint": 4, "int32": 4, "uint32": 4, "float": 4, "float32": 4,
		"double": 8, "float64": 8,
		"unknown": 0,
	}
	for typ, expected := range tests {
		if got := getTypeSize(typ); got != expected {
			t.Errorf("getTypeSize(%q) = %d, expected %d", typ, got, expected)
		}
	}
}

func newTestReader(data string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(data))
}
