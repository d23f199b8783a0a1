// Package pte exposes the network providers of the public transport
// enabler library as Go types.
//
// Every entity wraps one foreign object through a global reference and
// reads its properties lazily: the first accessor call crosses into the
// VM, later calls return the cached value. Child entities such as the
// line of a departure are owned by their parent and released with it;
// call Retain on a child to keep it longer.
//
// Queries are blocking:
//
//	deps, err := provider.QueryDepartures("900100003", time.Time{}, 10, pte.QueryEquivs)
//	if err != nil {
//		return err
//	}
//	defer deps.Release()
//
// The Async variants run the same query on a task.Pool worker thread and
// return a task.Future. Status codes other than OK map to errors from
// package errors; use errors.KindOf to branch on them.
package pte
