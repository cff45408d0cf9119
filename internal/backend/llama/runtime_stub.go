//go:build !llama

package llama

import "mlserved/internal/mllib"

// Built reports whether this binary links the llama.cpp runtime.
const Built = false

func loadRuntime(string, int) (generator, error) {
	return nil, mllib.ErrInternal("llama support not built (missing 'llama' build tag)")
}
