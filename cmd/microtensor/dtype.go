package main

import (
	"fmt"

	"github.com/example/microtensor/internal/config"
	"github.com/example/microtensor/internal/safetensors"
)

// dtypeRunners holds one instantiation of a generic command body per
// supported element type.
type dtypeRunners struct {
	f32 func() error
	f64 func() error
	i32 func() error
	i64 func() error
}

func (r dtypeRunners) run(dtype string) error {
	switch dtype {
	case config.DTypeFloat32:
		return r.f32()
	case config.DTypeFloat64:
		return r.f64()
	case config.DTypeInt32:
		return r.i32()
	case config.DTypeInt64:
		return r.i64()
	default:
		return fmt.Errorf("unsupported dtype %q", dtype)
	}
}

// configDType maps a stored safetensors dtype to the element type used to
// decode it. Half precision values widen to float32, narrow integers to int32.
func configDType(stored string) (string, error) {
	switch stored {
	case safetensors.DTypeF32, safetensors.DTypeF16, safetensors.DTypeBF16:
		return config.DTypeFloat32, nil
	case safetensors.DTypeF64:
		return config.DTypeFloat64, nil
	case safetensors.DTypeI32, safetensors.DTypeI16, safetensors.DTypeI8:
		return config.DTypeInt32, nil
	case safetensors.DTypeI64:
		return config.DTypeInt64, nil
	default:
		return "", fmt.Errorf("unsupported stored dtype %q", stored)
	}
}
