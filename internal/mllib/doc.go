// Package mllib provides the generic service strategy that wraps a
// machine-learning backend into a uniform service unit.
//
// Files by concern:
//
//   - lib.go: Lib, the strategy parameterized by input connector, output
//     connector and model descriptor; capability flags, training flag, Move.
//   - measures.go: current measures and per-iteration history, each under
//     its own mutex.
//   - service.go: Service, the lifecycle contract backends satisfy by
//     embedding *Lib.
//   - errors.go: the two error kinds (bad parameter, internal).
//
// Lib guarantees the training flag is correct and visible; whether predict
// may run during training is decided by the caller (see manager.Predict).
package mllib
