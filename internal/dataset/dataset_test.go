package dataset

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// classicFixture writes a minimal CDF-1 file: numrecs plus a dimension list,
// with attribute and variable lists absent.
func classicFixture(t *testing.T, numRecs uint32, dims []Dimension) string {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("CDF\x01")
	binary.Write(&buf, binary.BigEndian, numRecs)
	if len(dims) == 0 {
		buf.Write(make([]byte, 8)) // absent dimension list
	} else {
		binary.Write(&buf, binary.BigEndian, uint32(0x0a))
		binary.Write(&buf, binary.BigEndian, uint32(len(dims)))
		for _, d := range dims {
			binary.Write(&buf, binary.BigEndian, uint32(len(d.Name)))
			buf.WriteString(d.Name)
			if pad := (4 - len(d.Name)%4) % 4; pad > 0 {
				buf.Write(make([]byte, pad))
			}
			length := d.Size
			if d.Unlimited {
				length = 0
			}
			binary.Write(&buf, binary.BigEndian, uint32(length))
		}
	}
	buf.Write(make([]byte, 8)) // absent attribute list
	buf.Write(make([]byte, 8)) // absent variable list

	path := filepath.Join(t.TempDir(), "fixture.nc")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestOpenClassic(t *testing.T) {
	path := classicFixture(t, 1, []Dimension{
		{Name: "N_REC", Unlimited: true},
		{Name: "N_LEVELS", Size: 850},
		{Name: "STRING64", Size: 64},
	})

	h, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer h.Close()

	if h.Format() != FormatClassic {
		t.Errorf("Format() = %v, want %v", h.Format(), FormatClassic)
	}

	want := []Dimension{
		{Name: "N_REC", Size: 1, Unlimited: true},
		{Name: "N_LEVELS", Size: 850},
		{Name: "STRING64", Size: 64},
	}
	if got := h.Dimensions(); !reflect.DeepEqual(got, want) {
		t.Errorf("Dimensions() = %+v, want %+v", got, want)
	}

	d, ok := h.Dimension("N_REC")
	if !ok || d.Size != 1 || !d.Unlimited {
		t.Errorf("Dimension(N_REC) = %+v, %v", d, ok)
	}
	if _, ok := h.Dimension("TIME"); ok {
		t.Error("Dimension(TIME) should not be found")
	}
}

func TestOpenClassicEmptyUnlimited(t *testing.T) {
	// numrecs zero: the unlimited dimension exists but holds no records yet.
	path := classicFixture(t, 0, []Dimension{
		{Name: "N_REC", Unlimited: true},
	})

	h, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer h.Close()

	d, ok := h.Dimension("N_REC")
	if !ok {
		t.Fatal("Dimension(N_REC) not found")
	}
	if d.Size != 0 || !d.Unlimited {
		t.Errorf("Dimension(N_REC) = %+v, want size 0, unlimited", d)
	}
}

func TestOpenEnumerationStable(t *testing.T) {
	path := classicFixture(t, 3, []Dimension{
		{Name: "N_REC", Unlimited: true},
		{Name: "N_LEVELS", Size: 850},
	})

	h, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer h.Close()

	first := h.Dimensions()
	second := h.Dimensions()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Dimensions() not stable: %+v vs %+v", first, second)
	}
}

func TestOpenUnknownFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "grib magic", data: []byte("GRIB2 is not netCDF")},
		{name: "empty file", data: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "other.bin")
			if err := os.WriteFile(path, tt.data, 0644); err != nil {
				t.Fatalf("write fixture: %v", err)
			}
			_, err := Open(path)
			if !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("Open() error = %v, want ErrUnknownFormat", err)
			}
		})
	}
}

func TestOpenMissingPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.nc"))
	if err == nil {
		t.Fatal("Open() expected error for missing path")
	}
	if !os.IsNotExist(err) {
		t.Errorf("Open() error = %v, want not-exist", err)
	}
}

// stubGroup fakes the netCDF-4 backend's group interface.
type stubGroup struct {
	names  []string
	sizes  map[string]uint64
	closed bool
}

func (s *stubGroup) Close()                                       { s.closed = true }
func (s *stubGroup) Attributes() api.AttributeMap                 { return nil }
func (s *stubGroup) ListVariables() []string                      { return nil }
func (s *stubGroup) GetVariable(string) (*api.Variable, error)    { return nil, errors.New("no variables") }
func (s *stubGroup) GetVarGetter(string) (api.VarGetter, error)   { return nil, errors.New("no variables") }
func (s *stubGroup) ListSubgroups() []string                      { return nil }
func (s *stubGroup) GetGroup(string) (api.Group, error)           { return nil, errors.New("no subgroups") }
func (s *stubGroup) ListTypes() []string                          { return nil }
func (s *stubGroup) GetType(string) (string, bool)                { return "", false }
func (s *stubGroup) GetGoType(string) (string, bool)              { return "", false }
func (s *stubGroup) ListDimensions() []string                     { return s.names }
func (s *stubGroup) GetDimension(name string) (uint64, bool) {
	size, ok := s.sizes[name]
	return size, ok
}

func TestNC4Handle(t *testing.T) {
	g := &stubGroup{
		names: []string{"time", "lat", "lon"},
		sizes: map[string]uint64{"time": 7, "lat": 180, "lon": 360},
	}
	h := newNC4Handle(g)

	if h.Format() != FormatNetCDF4 {
		t.Errorf("Format() = %v, want %v", h.Format(), FormatNetCDF4)
	}
	want := []Dimension{
		{Name: "time", Size: 7},
		{Name: "lat", Size: 180},
		{Name: "lon", Size: 360},
	}
	if got := h.Dimensions(); !reflect.DeepEqual(got, want) {
		t.Errorf("Dimensions() = %+v, want %+v", got, want)
	}
	if d, ok := h.Dimension("lat"); !ok || d.Size != 180 {
		t.Errorf("Dimension(lat) = %+v, %v", d, ok)
	}
	if err := h.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if !g.closed {
		t.Error("Close() should close the underlying group")
	}
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatClassic, "Classic (CDF-1)"},
		{Format64BitOffset, "64-bit Offset (CDF-2)"},
		{FormatCDF5, "64-bit Data (CDF-5)"},
		{FormatNetCDF4, "netCDF-4 (HDF5)"},
		{FormatUnknown, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}
