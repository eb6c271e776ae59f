// Package health serves liveness and readiness probes for long-running
// formzone commands such as watch.
//
// # Endpoints
//
//   - /health: liveness, 200 while the process is up
//   - /ready: readiness, 200 when every registered check passes, 503 otherwise
//   - /version: build information
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("output_csv", health.FileCheck(csvPath))
//	checker.RegisterCheck("history", health.HistoryCheck(storage))
//
//	mux := http.NewServeMux()
//	health.Mount(mux, checker, health.VersionInfo{Version: "0.1.0"})
//
// Checks run concurrently, each bounded by the checker's timeout. A check
// that times out counts as unhealthy.
package health
