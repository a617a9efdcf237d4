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
	"unsafe"

	"github.com/example/microtensor/internal/tensor"
)

// Named pairs a tensor with the key it is stored under.
type Named[T tensor.Number] struct {
	Name   string
	Tensor *tensor.Tensor[T]
}

// DTypeOf returns the safetensors dtype tag used to store elements of type T.
func DTypeOf[T tensor.Number]() string {
	var zero T

	size := unsafe.Sizeof(zero)
	if tensor.IsIntegral[T]() {
		switch size {
		case 1:
			return DTypeI8
		case 2:
			return DTypeI16
		case 4:
			return DTypeI32
		default:
			return DTypeI64
		}
	}

	if size == 4 {
		return DTypeF32
	}

	return DTypeF64
}

// Encode serializes tensors of one element type into safetensors format,
// ordered by name.
func Encode[T tensor.Number](tensors []Named[T]) ([]byte, error) {
	if len(tensors) == 0 {
		return nil, errors.New("safetensors: no tensors to encode")
	}

	sorted := make([]Named[T], len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	dtype := DTypeOf[T]()
	elemBytes, _ := dtypeBytes(dtype)

	header := make(map[string]storeHeaderEntry, len(sorted))
	raw := make([]byte, 0, estimateTensorBytes(sorted, elemBytes))

	for _, named := range sorted {
		name := strings.TrimSpace(named.Name)
		if name == "" {
			return nil, errors.New("safetensors: tensor name must not be empty")
		}

		if name == metadataKey {
			return nil, fmt.Errorf("safetensors: tensor name %q is reserved", name)
		}

		if _, exists := header[name]; exists {
			return nil, fmt.Errorf("safetensors: duplicate tensor name %q", name)
		}

		if named.Tensor == nil {
			return nil, fmt.Errorf("safetensors: tensor %q is nil", name)
		}

		start := len(raw)
		raw = appendElements(raw, named.Tensor.RawData(), dtype)
		end := len(raw)

		shape := named.Tensor.Shape()
		dims := make([]int64, len(shape))

		for i, d := range shape {
			dims[i] = int64(d)
		}

		header[name] = storeHeaderEntry{
			DType:   dtype,
			Shape:   dims,
			Offsets: [2]int{start, end},
		}
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("safetensors: encode header: %w", err)
	}

	out := make([]byte, 0, headerLenBytes+len(headerJSON)+len(raw))
	out = binary.LittleEndian.AppendUint64(out, uint64(len(headerJSON)))
	out = append(out, headerJSON...)
	out = append(out, raw...)

	return out, nil
}

// WriteFile writes tensors into a .safetensors file.
func WriteFile[T tensor.Number](path string, tensors []Named[T]) error {
	data, err := Encode(tensors)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("safetensors: write %s: %w", path, err)
	}

	return nil
}

func appendElements[T tensor.Number](dst []byte, data []T, dtype string) []byte {
	for _, v := range data {
		switch dtype {
		case DTypeI8:
			dst = append(dst, byte(int8(v)))
		case DTypeI16:
			dst = binary.LittleEndian.AppendUint16(dst, uint16(int16(v)))
		case DTypeI32:
			dst = binary.LittleEndian.AppendUint32(dst, uint32(int32(v)))
		case DTypeI64:
			dst = binary.LittleEndian.AppendUint64(dst, uint64(int64(v)))
		case DTypeF32:
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(v)))
		default:
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(float64(v)))
		}
	}

	return dst
}

func estimateTensorBytes[T tensor.Number](tensors []Named[T], elemBytes int) int {
	total := 0
	for _, named := range tensors {
		total += named.Tensor.ElemCount() * elemBytes
	}

	return total
}
