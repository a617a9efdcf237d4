package main

import (
	"strings"

	"github.com/example/microtensor/internal/safetensors"
	"github.com/spf13/cobra"
)

// storeFlags selects tensors by name prefix when opening a safetensors file.
type storeFlags struct {
	prefix string
	strict bool
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.prefix, "strip-prefix", "", "Only use tensors whose name starts with this prefix, with the prefix removed")
	cmd.Flags().BoolVar(&f.strict, "strict-prefix", false, "Fail if any tensor lacks the prefix or two names collide after stripping")
}

func (f storeFlags) options() safetensors.StoreOptions {
	opts := safetensors.StoreOptions{RemapMode: safetensors.RemapLenient}
	if f.strict {
		opts.RemapMode = safetensors.RemapStrict
	}

	if f.prefix == "" {
		return opts
	}

	prefix := f.prefix
	opts.KeyMapper = func(name string) (string, bool) {
		if !strings.HasPrefix(name, prefix) {
			return "", false
		}

		return strings.TrimPrefix(name, prefix), true
	}

	return opts
}
