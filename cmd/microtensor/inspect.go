package main

import (
	"fmt"
	"io"

	"github.com/example/microtensor/internal/safetensors"
	"github.com/example/microtensor/internal/tensor"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var file string
	var sel storeFlags

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List and render the tensors in a safetensors file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
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
			for _, name := range store.Names() {
				if err := inspectEntry(out, store, name); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Safetensors file to inspect (default: paths-tensor-file)")
	sel.register(cmd)

	return cmd
}

func inspectEntry(w io.Writer, store *safetensors.Store, name string) error {
	entry, err := store.Entry(name)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%s %s %v\n", entry.Name, entry.DType, entry.Shape); err != nil {
		return err
	}

	dtype, err := configDType(entry.DType)
	if err != nil {
		return err
	}

	return dtypeRunners{
		f32: func() error { return renderStored[float32](w, store, name) },
		f64: func() error { return renderStored[float64](w, store, name) },
		i32: func() error { return renderStored[int32](w, store, name) },
		i64: func() error { return renderStored[int64](w, store, name) },
	}.run(dtype)
}

func renderStored[T tensor.Number](w io.Writer, store *safetensors.Store, name string) error {
	t, err := safetensors.Load[T](store, name)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n", t)

	return err
}
