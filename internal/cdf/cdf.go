// Package cdf reads the headers of classic-format netCDF files: CDF-1
// (classic), CDF-2 (64-bit offset) and CDF-5 (64-bit data). Only the
// header is parsed; variable data is never touched.
package cdf

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// List tags in the file header.
const (
	tagDimension = 0x0000000a
	tagVariable  = 0x0000000b
	tagAttribute = 0x0000000c
)

// External types stored in headers.
const (
	typeByte   = 1
	typeChar   = 2
	typeShort  = 3
	typeInt    = 4
	typeFloat  = 5
	typeDouble = 6
	// CDF-5 only
	typeUByte  = 7
	typeUShort = 8
	typeUInt   = 9
	typeInt64  = 10
	typeUInt64 = 11
)

const maxDimensions = 1024

// A file written in streaming mode stores all-ones for numrecs. After sign
// extension the 32-bit sentinel of CDF-1/2 matches the 64-bit one of CDF-5.
const streamingNumRecs = 0xffffffffffffffff

var (
	ErrNotCDF             = errors.New("not a CDF file")
	ErrUnsupportedVersion = errors.New("unsupported CDF version")
	ErrCorrupted          = errors.New("corrupted CDF header")
	ErrStreaming          = errors.New("streaming record count not supported")
	ErrTooManyDimensions  = errors.New("too many dimensions")
)

// Version is the format version byte from the magic number.
type Version uint8

const (
	Classic  Version = 1 // CDF-1
	Offset64 Version = 2 // CDF-2
	Data64   Version = 5 // CDF-5
)

func (v Version) String() string {
	switch v {
	case Classic:
		return "Classic (CDF-1)"
	case Offset64:
		return "64-bit Offset (CDF-2)"
	case Data64:
		return "64-bit Data (CDF-5)"
	}
	return fmt.Sprintf("unknown (%d)", uint8(v))
}

// Dimension is one entry of the header dimension list. Length is the raw
// header value: the unlimited dimension is stored with length zero and its
// current extent is the file-level NumRecs.
type Dimension struct {
	Name   string
	Length uint64
}

// Unlimited reports whether d is the record dimension.
func (d Dimension) Unlimited() bool { return d.Length == 0 }

// Attribute holds an attribute name and its undecoded payload.
type Attribute struct {
	Name string
	Type uint32
	Data []byte
}

// Variable is the header metadata of one variable. Offsets and sizes refer
// to the data section, which this package does not read.
type Variable struct {
	Name   string
	DimIDs []uint64
	Attrs  []Attribute
	Type   uint32
	Size   uint64
	Offset uint64
}

// File is a parsed classic netCDF header. Dims preserves file definition
// order.
type File struct {
	f *os.File

	Version     Version
	NumRecs     uint64
	Dims        []Dimension
	GlobalAttrs []Attribute
	Vars        []Variable
}

// Open parses the header of the classic netCDF file at path. The returned
// File keeps the underlying descriptor open until Close.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	nc, err := Parse(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	nc.f = f
	return nc, nil
}

// Parse reads a classic netCDF header from r. Close on the result is a
// no-op; the caller owns whatever backs r.
func Parse(r io.Reader) (*File, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read magic: %w", errOrCorrupted(err))
	}
	if string(magic[:3]) != "CDF" {
		return nil, ErrNotCDF
	}
	version := Version(magic[3])
	switch version {
	case Classic, Offset64, Data64:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, magic[3])
	}

	rd := &reader{r: r, version: version}
	nc := &File{Version: version}

	numRecs, err := rd.number()
	if err != nil {
		return nil, fmt.Errorf("read numrecs: %w", err)
	}
	if numRecs == streamingNumRecs {
		return nil, ErrStreaming
	}
	nc.NumRecs = numRecs

	if nc.Dims, err = readDimList(rd); err != nil {
		return nil, err
	}
	if nc.GlobalAttrs, err = readAttrList(rd); err != nil {
		return nil, fmt.Errorf("global attributes: %w", err)
	}
	if nc.Vars, err = readVarList(rd, len(nc.Dims)); err != nil {
		return nil, err
	}
	return nc, nil
}

// Close releases the backing file descriptor.
func (nc *File) Close() error {
	if nc.f == nil {
		return nil
	}
	err := nc.f.Close()
	nc.f = nil
	return err
}

// Dim returns the named dimension.
func (nc *File) Dim(name string) (Dimension, bool) {
	for _, d := range nc.Dims {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

// DimLen returns the current extent of d: NumRecs for the unlimited
// dimension, the header length otherwise.
func (nc *File) DimLen(d Dimension) uint64 {
	if d.Unlimited() {
		return nc.NumRecs
	}
	return d.Length
}

func readDimList(rd *reader) ([]Dimension, error) {
	n, err := rd.listLen(tagDimension)
	if err != nil {
		return nil, fmt.Errorf("dimension list: %w", err)
	}
	if n > maxDimensions {
		return nil, ErrTooManyDimensions
	}
	dims := make([]Dimension, 0, n)
	seen := make(map[string]bool, n)
	unlimited := false
	for i := uint64(0); i < n; i++ {
		name, err := rd.name()
		if err != nil {
			return nil, fmt.Errorf("dimension %d: %w", i, err)
		}
		length, err := rd.number()
		if err != nil {
			return nil, fmt.Errorf("dimension %q: %w", name, err)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate dimension %q", ErrCorrupted, name)
		}
		seen[name] = true
		if length == 0 {
			// At most one unlimited dimension per classic file.
			if unlimited {
				return nil, fmt.Errorf("%w: multiple unlimited dimensions", ErrCorrupted)
			}
			unlimited = true
		}
		dims = append(dims, Dimension{Name: name, Length: length})
	}
	return dims, nil
}

func readAttrList(rd *reader) ([]Attribute, error) {
	n, err := rd.listLen(tagAttribute)
	if err != nil {
		return nil, err
	}
	attrs := make([]Attribute, 0, n)
	for i := uint64(0); i < n; i++ {
		name, err := rd.name()
		if err != nil {
			return nil, fmt.Errorf("attribute %d: %w", i, err)
		}
		aType, err := rd.u32()
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		nVals, err := rd.number()
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		if nVals > 1<<26 {
			return nil, fmt.Errorf("%w: attribute %q claims %d values", ErrCorrupted, name, nVals)
		}
		width, ok := typeSize(aType)
		if !ok {
			return nil, fmt.Errorf("%w: attribute %q has unknown type %d", ErrCorrupted, name, aType)
		}
		data, err := rd.padded(nVals * width)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		attrs = append(attrs, Attribute{Name: name, Type: aType, Data: data})
	}
	return attrs, nil
}

func readVarList(rd *reader, nDims int) ([]Variable, error) {
	n, err := rd.listLen(tagVariable)
	if err != nil {
		return nil, fmt.Errorf("variable list: %w", err)
	}
	vars := make([]Variable, 0, n)
	seen := make(map[string]bool, n)
	for i := uint64(0); i < n; i++ {
		v, err := readVar(rd, nDims)
		if err != nil {
			return nil, fmt.Errorf("variable %d: %w", i, err)
		}
		if seen[v.Name] {
			return nil, fmt.Errorf("%w: duplicate variable %q", ErrCorrupted, v.Name)
		}
		seen[v.Name] = true
		vars = append(vars, v)
	}
	return vars, nil
}

func readVar(rd *reader, nDims int) (Variable, error) {
	var v Variable
	name, err := rd.name()
	if err != nil {
		return v, err
	}
	v.Name = name
	rank, err := rd.number()
	if err != nil {
		return v, err
	}
	if rank > maxDimensions {
		return v, ErrTooManyDimensions
	}
	v.DimIDs = make([]uint64, rank)
	for i := range v.DimIDs {
		id, err := rd.number()
		if err != nil {
			return v, err
		}
		if id >= uint64(nDims) {
			return v, fmt.Errorf("%w: variable %q references dimension %d of %d", ErrCorrupted, name, id, nDims)
		}
		v.DimIDs[i] = id
	}
	if v.Attrs, err = readAttrList(rd); err != nil {
		return v, err
	}
	if v.Type, err = rd.u32(); err != nil {
		return v, err
	}
	if _, ok := typeSize(v.Type); !ok {
		return v, fmt.Errorf("%w: variable %q has unknown type %d", ErrCorrupted, name, v.Type)
	}
	if v.Size, err = rd.number(); err != nil {
		return v, err
	}
	// Offsets grew to 64 bits in CDF-2; CDF-5 kept them.
	switch rd.version {
	case Classic:
		off, err := rd.u32()
		if err != nil {
			return v, err
		}
		v.Offset = uint64(off)
	default:
		if v.Offset, err = rd.u64(); err != nil {
			return v, err
		}
	}
	return v, nil
}

func typeSize(t uint32) (uint64, bool) {
	switch t {
	case typeByte, typeChar, typeUByte:
		return 1, true
	case typeShort, typeUShort:
		return 2, true
	case typeInt, typeUInt, typeFloat:
		return 4, true
	case typeDouble, typeInt64, typeUInt64:
		return 8, true
	}
	return 0, false
}

// reader decodes the big-endian header primitives. Counts and lengths are
// 32-bit (sign-extended) before CDF-5 and 64-bit from CDF-5 on.
type reader struct {
	r       io.Reader
	version Version
}

func (rd *reader) u32() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(rd.r, b[:]); err != nil {
		return 0, errOrCorrupted(err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func (rd *reader) u64() (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(rd.r, b[:]); err != nil {
		return 0, errOrCorrupted(err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func (rd *reader) number() (uint64, error) {
	if rd.version < Data64 {
		n, err := rd.u32()
		// Sign extension keeps the streaming sentinel recognizable.
		return uint64(int64(int32(n))), err
	}
	return rd.u64()
}

// listLen reads a list header: a tag plus element count, or two zero words
// when the list is absent.
func (rd *reader) listLen(tag uint32) (uint64, error) {
	field, err := rd.u32()
	if err != nil {
		return 0, err
	}
	n, err := rd.number()
	if err != nil {
		return 0, err
	}
	switch field {
	case 0:
		if n != 0 {
			return 0, fmt.Errorf("%w: %d elements under absent tag", ErrCorrupted, n)
		}
	case tag:
	default:
		return 0, fmt.Errorf("%w: unexpected tag 0x%x, want 0x%x", ErrCorrupted, field, tag)
	}
	return n, nil
}

// name reads a length-prefixed string padded to a 4-byte boundary.
func (rd *reader) name() (string, error) {
	n, err := rd.number()
	if err != nil {
		return "", err
	}
	b, err := rd.padded(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// padded reads n bytes plus the padding that rounds n up to a multiple of 4.
func (rd *reader) padded(n uint64) ([]byte, error) {
	if n > 1<<26 {
		return nil, fmt.Errorf("%w: implausible length %d", ErrCorrupted, n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(rd.r, b); err != nil {
		return nil, errOrCorrupted(err)
	}
	if pad := (4 - n%4) % 4; pad > 0 {
		var junk [3]byte
		if _, err := io.ReadFull(rd.r, junk[:pad]); err != nil {
			return nil, errOrCorrupted(err)
		}
	}
	return b, nil
}

// errOrCorrupted maps a short read to ErrCorrupted so callers can test with
// errors.Is instead of matching io errors.
func errOrCorrupted(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated header", ErrCorrupted)
	}
	return err
}
