package safetensors

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/example/microtensor/internal/tensor"
	"github.com/x448/float16"
)

const (
	DTypeF64  = "F64"
	DTypeF32  = "F32"
	DTypeF16  = "F16"
	DTypeBF16 = "BF16"
	DTypeI64  = "I64"
	DTypeI32  = "I32"
	DTypeI16  = "I16"
	DTypeI8   = "I8"

	headerLenBytes = 8
	metadataKey    = "__metadata__"
)

type KeyMapper func(name string) (mapped string, keep bool)

type RemapMode string

const (
	RemapLenient RemapMode = "lenient"
	RemapStrict  RemapMode = "strict"
)

type StoreOptions struct {
	KeyMapper KeyMapper
	RemapMode RemapMode
}

// Store indexes the tensors of one safetensors payload. File-backed stores
// keep the file memory-mapped until Close.
type Store struct {
	raw     []byte
	mapping mmap.MMap
	file    *os.File
	entries map[string]storeEntry
	names   []string
}

// Entry describes a stored tensor without decoding it.
type Entry struct {
	Name  string
	DType string
	Shape tensor.Shape
}

type storeEntry struct {
	OriginalName string
	DType        string
	Shape        []int64
	Start        int
	End          int
}

type storeHeaderEntry struct {
	DType   string  `json:"dtype"`
	Shape   []int64 `json:"shape"`
	Offsets [2]int  `json:"data_offsets"`
}

// OpenStore memory-maps the file at path read-only and indexes its header.
func OpenStore(path string, opts StoreOptions) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("safetensors: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("safetensors: stat %s: %w", path, err)
	}

	if info.Size() < headerLenBytes {
		_ = f.Close()
		return nil, fmt.Errorf("safetensors: file too short (%d bytes)", info.Size())
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("safetensors: mmap %s: %w", path, err)
	}

	s, err := OpenStoreFromBytes(m, opts)
	if err != nil {
		_ = m.Unmap()
		_ = f.Close()

		return nil, err
	}

	s.mapping = m
	s.file = f

	return s, nil
}

// OpenStoreFromBytes indexes an in-memory safetensors payload. The store
// reads data lazily, so the caller must not modify it while the store is open.
func OpenStoreFromBytes(data []byte, opts StoreOptions) (*Store, error) {
	keyMapper := opts.KeyMapper
	if keyMapper == nil {
		keyMapper = func(name string) (string, bool) { return name, true }
	}

	mode := opts.RemapMode
	if mode == "" {
		mode = RemapLenient
	}

	headerEnd, header, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(header))
	for name := range header {
		keys = append(keys, name)
	}

	sort.Strings(keys)

	entries := make(map[string]storeEntry, len(keys))
	names := make([]string, 0, len(keys))

	for _, original := range keys {
		if original == metadataKey {
			continue
		}

		entry, err := parseHeaderEntry(header[original])
		if err != nil {
			return nil, fmt.Errorf("safetensors: decode header entry %q: %w", original, err)
		}

		if err := validateHeaderEntry(original, entry); err != nil {
			return nil, err
		}

		mapped, keep := keyMapper(original)
		if !keep {
			if mode == RemapStrict {
				return nil, fmt.Errorf("safetensors: strict remap rejected tensor %q", original)
			}

			continue
		}

		mapped = strings.TrimSpace(mapped)
		if mapped == "" {
			return nil, fmt.Errorf("safetensors: remapped tensor name for %q is empty", original)
		}

		if _, exists := entries[mapped]; exists {
			if mode == RemapStrict {
				return nil, fmt.Errorf("safetensors: strict remap collision for %q", mapped)
			}

			continue
		}

		start := headerEnd + entry.Offsets[0]

		end := headerEnd + entry.Offsets[1]
		if start < headerEnd || end < start || end > len(data) {
			return nil, fmt.Errorf(
				"safetensors: tensor %q data [%d:%d] exceeds file size %d",
				original,
				start,
				end,
				len(data),
			)
		}

		elemCount, err := shapeElementCount(entry.Shape)
		if err != nil {
			return nil, fmt.Errorf("safetensors: tensor %q: %w", original, err)
		}

		elemBytes, err := dtypeBytes(entry.DType)
		if err != nil {
			return nil, fmt.Errorf("safetensors: tensor %q: %w", original, err)
		}

		expectedBytes, err := dataBytes(elemCount, elemBytes)
		if err != nil {
			return nil, fmt.Errorf("safetensors: tensor %q: %w", original, err)
		}

		actualBytes := end - start
		if actualBytes < expectedBytes {
			return nil, fmt.Errorf(
				"safetensors: tensor %q needs %d bytes but data has %d",
				original,
				expectedBytes,
				actualBytes,
			)
		}

		entries[mapped] = storeEntry{
			OriginalName: original,
			DType:        strings.ToUpper(entry.DType),
			Shape:        append([]int64(nil), entry.Shape...),
			Start:        start,
			End:          end,
		}
		names = append(names, mapped)
	}

	if len(entries) == 0 {
		return nil, errors.New("safetensors: no tensors found")
	}

	sort.Strings(names)

	return &Store{
		raw:     data,
		entries: entries,
		names:   names,
	}, nil
}

func (s *Store) Names() []string {
	return append([]string(nil), s.names...)
}

func (s *Store) Has(name string) bool {
	_, ok := s.entries[name]
	return ok
}

// Entry returns the dtype and shape of a stored tensor.
func (s *Store) Entry(name string) (Entry, error) {
	entry, ok := s.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("safetensors: tensor %q not found (available: %s)", name, summarizeNames(s.names))
	}

	return Entry{Name: name, DType: entry.DType, Shape: toShape(entry.Shape)}, nil
}

// Load decodes the named tensor into element type T. Values are converted with
// Go conversion rules, so floats stored as integers truncate toward zero.
func Load[T tensor.Number](s *Store, name string) (*tensor.Tensor[T], error) {
	if s.raw == nil {
		return nil, errors.New("safetensors: store is closed")
	}

	entry, ok := s.entries[name]
	if !ok {
		return nil, fmt.Errorf("safetensors: tensor %q not found (available: %s)", name, summarizeNames(s.names))
	}

	data, err := decodeTensorData[T](s.raw[entry.Start:entry.End], entry.DType, entry.Shape)
	if err != nil {
		return nil, fmt.Errorf("safetensors: tensor %q decode: %w", name, err)
	}

	t, err := tensor.New(data, toShape(entry.Shape))
	if err != nil {
		return nil, fmt.Errorf("safetensors: tensor %q: %w", name, err)
	}

	return t, nil
}

// Close releases the mapping and the file. Tensors returned by Load own
// their data and stay valid.
func (s *Store) Close() error {
	var errs []error

	if s.mapping != nil {
		errs = append(errs, s.mapping.Unmap())
		s.mapping = nil
	}

	if s.file != nil {
		errs = append(errs, s.file.Close())
		s.file = nil
	}

	s.raw = nil
	s.entries = nil
	s.names = nil

	return errors.Join(errs...)
}

func decodeHeader(data []byte) (int, map[string]json.RawMessage, error) {
	if len(data) < headerLenBytes {
		return 0, nil, fmt.Errorf("safetensors: file too short (%d bytes)", len(data))
	}

	headerLen := binary.LittleEndian.Uint64(data[:headerLenBytes])
	if headerLen > uint64(len(data)-headerLenBytes) {
		return 0, nil, fmt.Errorf("safetensors: header length %d exceeds file size %d", headerLen, len(data))
	}

	headerEnd := headerLenBytes + int(headerLen)

	var header map[string]json.RawMessage

	err := json.Unmarshal(data[headerLenBytes:headerEnd], &header)
	if err != nil {
		return 0, nil, fmt.Errorf("safetensors: parse header: %w", err)
	}

	return headerEnd, header, nil
}

func parseHeaderEntry(raw json.RawMessage) (storeHeaderEntry, error) {
	var e storeHeaderEntry

	err := json.Unmarshal(raw, &e)
	if err != nil {
		return storeHeaderEntry{}, err
	}

	return e, nil
}

func validateHeaderEntry(name string, entry storeHeaderEntry) error {
	if _, err := dtypeBytes(entry.DType); err != nil {
		return fmt.Errorf("safetensors: tensor %q has unsupported dtype %q", name, entry.DType)
	}

	if entry.Offsets[0] < 0 || entry.Offsets[1] < entry.Offsets[0] {
		return fmt.Errorf("safetensors: tensor %q has invalid data offsets %v", name, entry.Offsets)
	}

	for _, d := range entry.Shape {
		if d < 0 {
			return fmt.Errorf("safetensors: tensor %q has negative shape dimension in %v", name, entry.Shape)
		}
	}

	return nil
}

func shapeElementCount(shape []int64) (int64, error) {
	total := int64(1)

	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("negative dimension %d", d)
		}

		if d == 0 {
			return 0, nil
		}

		if total > math.MaxInt64/d {
			return 0, fmt.Errorf("shape %v overflows element count", shape)
		}

		total *= d
	}

	return total, nil
}

// dataBytes returns elemCount*elemBytes, failing when the product does not fit
// in an int.
func dataBytes(elemCount int64, elemBytes int) (int, error) {
	if elemCount < 0 || elemCount > int64(math.MaxInt/elemBytes) {
		return 0, fmt.Errorf("%d elements of %d bytes overflow the data size", elemCount, elemBytes)
	}

	return int(elemCount) * elemBytes, nil
}

func dtypeBytes(dtype string) (int, error) {
	switch strings.ToUpper(dtype) {
	case DTypeF64, DTypeI64:
		return 8, nil
	case DTypeF32, DTypeI32:
		return 4, nil
	case DTypeF16, DTypeBF16, DTypeI16:
		return 2, nil
	case DTypeI8:
		return 1, nil
	default:
		return 0, fmt.Errorf("unsupported dtype %q", dtype)
	}
}

func decodeTensorData[T tensor.Number](raw []byte, dtype string, shape []int64) ([]T, error) {
	elemCount, err := shapeElementCount(shape)
	if err != nil {
		return nil, err
	}

	elemBytes, err := dtypeBytes(dtype)
	if err != nil {
		return nil, err
	}

	size, err := dataBytes(elemCount, elemBytes)
	if err != nil {
		return nil, err
	}

	if len(raw) < size {
		return nil, fmt.Errorf("need %d bytes for %s, got %d", size, dtype, len(raw))
	}

	n := int(elemCount)

	out := make([]T, n)

	switch strings.ToUpper(dtype) {
	case DTypeF64:
		for i := range out {
			out[i] = T(math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:])))
		}
	case DTypeF32:
		for i := range out {
			out[i] = T(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	case DTypeF16:
		for i := range out {
			out[i] = T(float16.Frombits(binary.LittleEndian.Uint16(raw[i*2:])).Float32())
		}
	case DTypeBF16:
		for i := range out {
			bits := binary.LittleEndian.Uint16(raw[i*2:])
			out[i] = T(math.Float32frombits(uint32(bits) << 16))
		}
	case DTypeI64:
		for i := range out {
			out[i] = T(int64(binary.LittleEndian.Uint64(raw[i*8:])))
		}
	case DTypeI32:
		for i := range out {
			out[i] = T(int32(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	case DTypeI16:
		for i := range out {
			out[i] = T(int16(binary.LittleEndian.Uint16(raw[i*2:])))
		}
	case DTypeI8:
		for i := range out {
			out[i] = T(int8(raw[i]))
		}
	}

	return out, nil
}

func toShape(shape []int64) tensor.Shape {
	out := make(tensor.Shape, len(shape))
	for i, d := range shape {
		out[i] = int(d)
	}

	return out
}

func summarizeNames(names []string) string {
	if len(names) == 0 {
		return "none"
	}

	const maxNames = 8
	if len(names) <= maxNames {
		return strings.Join(names, ", ")
	}

	return strings.Join(names[:maxNames], ", ") + ", ..."
}
