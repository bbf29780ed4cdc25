// Package resource implements the Controller for limits shared between
// clustering runs.
//
// The Controller governs two resource types:
//
//   - Workers: bound the number of worker spans running at the same time,
//     across every engine that shares the controller
//   - Memory: account the per-worker accumulator memory of a run against a
//     hard limit (non-blocking, fail-fast)
//
// # Worker Limits
//
//	rc := resource.NewController(resource.Config{
//	    MaxWorkers: 4,
//	})
//
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
// # Memory Management
//
// AcquireMemory is non-blocking and returns ErrMemoryLimitExceeded
// immediately if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(n); err != nil {
//	    // ErrMemoryLimitExceeded - caller decides what to do
//	}
//	defer rc.ReleaseMemory(n)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
