//go:build llama

package llama

// Link against libllama.so placed next to the binary (./bin).
/*
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -L${SRCDIR}/../../../bin -lllama
*/
import "C"
