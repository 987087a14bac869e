// Package resource provides typed handle tables.
//
// Native code cannot hold Go pointers, so values that must be reachable from
// a C callback (command records, delete hooks) are parked in a Table and
// referenced by a small integer Handle instead. The handle travels through
// the foreign runtime as an opaque clientData word and is resolved back to
// the Go value when the runtime calls in.
//
//	table := resource.NewTable[*command]()
//
//	h := table.Insert(cmd)
//	cmd, ok := table.Get(h)
//	cmd, ok = table.Remove(h)
//
// Handle 0 is never issued. Removed slots are reused, so a stale handle may
// later resolve to a different value; owners remove a handle exactly once.
//
// # Observers
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    switch e.Type {
//	    case resource.EventCreated:
//	    case resource.EventDropped:
//	    }
//	}))
package resource
