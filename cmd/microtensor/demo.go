package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/example/microtensor/internal/config"
	"github.com/example/microtensor/internal/tensor"
	"github.com/example/microtensor/internal/textfile"
	"github.com/spf13/cobra"
)

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Build two small tensors and print them with their product",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			names, err := textfile.ReadLines(cfg.Paths.NamesFile)
			if err != nil && !errors.Is(err, textfile.ErrNotFound) {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "Read %d names\n", len(names)); err != nil {
				return err
			}

			return dtypeRunners{
				f32: func() error { return runDemo[float32](out, cfg.Tensor) },
				f64: func() error { return runDemo[float64](out, cfg.Tensor) },
				i32: func() error { return runDemo[int32](out, cfg.Tensor) },
				i64: func() error { return runDemo[int64](out, cfg.Tensor) },
			}.run(cfg.Tensor.DType)
		},
	}

	return cmd
}

func runDemo[T tensor.Number](w io.Writer, tcfg config.TensorConfig) error {
	a, err := tensor.New(sequence[T](6), tensor.Shape{3, 2})
	if err != nil {
		return err
	}

	b, err := tensor.New(sequence[T](12), tensor.Shape{2, 6})
	if err != nil {
		return err
	}

	c, err := tensor.MatMul(a, b)
	if err != nil {
		return fmt.Errorf("a x b: %w", err)
	}

	row, err := a.Index(1)
	if err != nil {
		return err
	}

	for _, t := range []*tensor.Tensor[T]{a, b, c, row} {
		if _, err := fmt.Fprintf(w, "%s\n", t); err != nil {
			return err
		}
	}

	sum, err := tensor.Elementwise(a, b, tensor.OpAdd, tcfg.TensorPolicy())
	if err != nil {
		slog.Warn("element-wise sum skipped", "policy", tcfg.Policy, "error", err)
		return nil
	}

	_, err = fmt.Fprintf(w, "%s\n", sum)

	return err
}

// sequence returns 1..n as elements of T.
func sequence[T tensor.Number](n int) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = T(i + 1)
	}

	return out
}
