// Package manager keeps the set of named services and routes front-end
// requests to their backends. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, backend registration, Close.
//   - config.go: ManagerConfig and package defaults.
//   - types.go: service entries, training jobs and their states.
//   - errors.go: error types and helpers (IsNotFound, IsServiceExists, ...).
//   - admission.go: per-service prediction queueing.
//   - create.go / delete.go: service lifecycle.
//   - train.go: training jobs (async by default) and their status.
//   - predict.go: prediction entry point and the offline/online gate.
//   - status_report.go: Info, List and ServerInfo.
//   - metrics.go, events.go: observability.
//
// Front-ends (httpapi, cliapi) should use public methods only.
package manager
