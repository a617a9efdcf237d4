package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/example/microtensor/internal/safetensors"
	"github.com/example/microtensor/internal/tensor"
	"github.com/spf13/cobra"
)

type saveTarget struct {
	path string
	name string
}

func (s saveTarget) enabled() bool { return strings.TrimSpace(s.path) != "" }

func (s saveTarget) validate() error {
	if s.enabled() && strings.TrimSpace(s.name) == "" {
		return errors.New("--name must not be empty when --out is set")
	}

	return nil
}

func newRandomCmd() *cobra.Command {
	var shape []int
	var seed uint64
	var save saveTarget

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Print a tensor filled with standard normal draws",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if err := save.validate(); err != nil {
				return err
			}

			opts := cfg.Tensor.RandomOptions()
			if cmd.Flags().Changed("seed") {
				// Applied last, so it wins over --tensor-seed; 0 is a valid seed here.
				opts = append(opts, tensor.WithSeed(seed))
			}

			out := cmd.OutOrStdout()
			s := tensor.Shape(shape)

			return dtypeRunners{
				f32: func() error { return runRandom[float32](out, s, opts, save) },
				f64: func() error { return runRandom[float64](out, s, opts, save) },
				i32: func() error { return runRandom[int32](out, s, opts, save) },
				i64: func() error { return runRandom[int64](out, s, opts, save) },
			}.run(cfg.Tensor.DType)
		},
	}

	cmd.Flags().IntSliceVar(&shape, "shape", []int{2, 3}, "Tensor shape, comma separated")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for this fill, 0 included (overrides --tensor-seed)")
	cmd.Flags().StringVar(&save.path, "out", "", "Optional safetensors file to write")
	cmd.Flags().StringVar(&save.name, "name", "random", "Tensor name used with --out")

	return cmd
}

func runRandom[T tensor.Number](w io.Writer, shape tensor.Shape, opts []tensor.RandomOption, save saveTarget) error {
	t, err := tensor.RandomNormal[T](shape, opts...)
	if err != nil {
		return fmt.Errorf("random %v: %w", shape, err)
	}

	if _, err := fmt.Fprintf(w, "%s\n", t); err != nil {
		return err
	}

	return saveTensor(save, t)
}

func saveTensor[T tensor.Number](save saveTarget, t *tensor.Tensor[T]) error {
	if !save.enabled() {
		return nil
	}

	named := []safetensors.Named[T]{{Name: save.name, Tensor: t}}
	if err := safetensors.WriteFile(save.path, named); err != nil {
		return err
	}

	slog.Info("tensor saved", "path", save.path, "name", save.name, "shape", t.Shape().String())

	return nil
}
