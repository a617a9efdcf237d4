package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/microtensor/internal/tensor"
)

const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
	DTypeInt32   = "int32"
	DTypeInt64   = "int64"

	PolicyTruncate = "truncate"
	PolicyStrict   = "strict"

	RoundingTruncate = "truncate"
	RoundingNearest  = "nearest"
)

func NormalizeDType(raw string) (string, error) {
	dtype := strings.ToLower(strings.TrimSpace(raw))
	switch dtype {
	case "":
		return DTypeFloat64, nil
	case DTypeFloat32, DTypeFloat64, DTypeInt32, DTypeInt64:
		return dtype, nil
	case "f32":
		return DTypeFloat32, nil
	case "f64", "float":
		return DTypeFloat64, nil
	case "i32":
		return DTypeInt32, nil
	case "i64", "int":
		return DTypeInt64, nil
	default:
		return "", fmt.Errorf(
			"invalid dtype %q (expected %s|%s|%s|%s)",
			raw,
			DTypeFloat32,
			DTypeFloat64,
			DTypeInt32,
			DTypeInt64,
		)
	}
}

func NormalizePolicy(raw string) (string, error) {
	policy := strings.ToLower(strings.TrimSpace(raw))
	switch policy {
	case "":
		return PolicyTruncate, nil
	case PolicyTruncate, PolicyStrict:
		return policy, nil
	default:
		return "", fmt.Errorf("invalid policy %q (expected %s|%s)", raw, PolicyTruncate, PolicyStrict)
	}
}

func NormalizeRounding(raw string) (string, error) {
	rounding := strings.ToLower(strings.TrimSpace(raw))
	switch rounding {
	case "":
		return RoundingTruncate, nil
	case RoundingTruncate, RoundingNearest:
		return rounding, nil
	default:
		return "", fmt.Errorf("invalid rounding %q (expected %s|%s)", raw, RoundingTruncate, RoundingNearest)
	}
}

// TensorPolicy maps a normalized policy name to the tensor package value.
func (c TensorConfig) TensorPolicy() tensor.Policy {
	if c.Policy == PolicyStrict {
		return tensor.PolicyStrict
	}

	return tensor.PolicyTruncate
}

// RandomOptions returns the tensor.RandomNormal options implied by the config.
func (c TensorConfig) RandomOptions() []tensor.RandomOption {
	opts := []tensor.RandomOption{tensor.WithRounding(tensor.RoundTruncate)}
	if c.Rounding == RoundingNearest {
		opts[0] = tensor.WithRounding(tensor.RoundNearest)
	}

	if c.Seed != 0 {
		opts = append(opts, tensor.WithSeed(c.Seed))
	}

	return opts
}

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}
