// Package connector holds the input and output connectors backends are
// parameterized with. Input connectors turn request "data" into backend
// values; output connectors turn backend values into the "predictions"
// payload.
package connector
