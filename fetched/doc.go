// Package fetched provides Cell, a reactive container for the latest result
// of an asynchronous load.
//
// A Cell tracks three pieces of state: the last loaded value (if any), whether
// a load is in flight, and the error of the last failed load. Observers
// subscribe to receive a Snapshot after every change.
//
// # Reload semantics
//
// At most one load runs per cell. A Reload issued while another is in flight
// joins it and returns the same outcome; no second request is made.
//
// A failed load keeps the previous value so callers can keep showing it as
// stale, and records the error. A successful load clears the error.
//
// # Usage
//
//	cell := fetched.New(func(ctx context.Context) ([]Box, error) {
//		return client.ListBoxes(ctx)
//	})
//	cancel := cell.Subscribe(func(s fetched.Snapshot[[]Box]) {
//		render(s)
//	})
//	defer cancel()
//
//	if err := cell.Reload(ctx); err != nil {
//		// transport failure, cell.Err() returns the same error
//	}
package fetched
