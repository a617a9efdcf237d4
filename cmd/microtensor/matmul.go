package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/example/microtensor/internal/safetensors"
	"github.com/example/microtensor/internal/tensor"
	"github.com/spf13/cobra"
)

func newMatMulCmd() *cobra.Command {
	var file string
	var sel storeFlags
	var lhsName string
	var rhsName string
	var save saveTarget

	cmd := &cobra.Command{
		Use:   "matmul",
		Short: "Multiply two tensors stored in a safetensors file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if strings.TrimSpace(lhsName) == "" || strings.TrimSpace(rhsName) == "" {
				return errors.New("--a and --b are required")
			}

			if err := save.validate(); err != nil {
				return err
			}

			if file == "" {
				file = cfg.Paths.TensorFile
			}

			store, err := safetensors.OpenStore(file, sel.options())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()

			return dtypeRunners{
				f32: func() error { return runMatMul[float32](out, store, lhsName, rhsName, save) },
				f64: func() error { return runMatMul[float64](out, store, lhsName, rhsName, save) },
				i32: func() error { return runMatMul[int32](out, store, lhsName, rhsName, save) },
				i64: func() error { return runMatMul[int64](out, store, lhsName, rhsName, save) },
			}.run(cfg.Tensor.DType)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Safetensors file holding both operands (default: paths-tensor-file)")
	cmd.Flags().StringVar(&lhsName, "a", "", "Name of the left operand")
	cmd.Flags().StringVar(&rhsName, "b", "", "Name of the right operand")
	cmd.Flags().StringVar(&save.path, "out", "", "Optional safetensors file to write the product to")
	cmd.Flags().StringVar(&save.name, "name", "product", "Tensor name used with --out")
	sel.register(cmd)

	return cmd
}

func runMatMul[T tensor.Number](w io.Writer, store *safetensors.Store, lhsName, rhsName string, save saveTarget) error {
	lhs, err := safetensors.Load[T](store, lhsName)
	if err != nil {
		return err
	}

	rhs, err := safetensors.Load[T](store, rhsName)
	if err != nil {
		return err
	}

	product, err := tensor.MatMul(lhs, rhs)
	if err != nil {
		return fmt.Errorf("%s x %s: %w", lhsName, rhsName, err)
	}

	if _, err := fmt.Fprintf(w, "%s\n", product); err != nil {
		return err
	}

	return saveTensor(save, product)
}
