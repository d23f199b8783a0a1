// Package refs provides handle tables with lifecycle observers.
//
// A Table maps small integer handles to Go values. Handle 0 is never
// issued, so it can stand for null in the reference encodings built on
// top of a table:
//
//	table := refs.NewTable()
//	h := table.Insert(kindLocal, obj)
//	v, ok := table.Get(h)
//	table.Remove(h)
//
// Slots carry a Kind tag so one table can hold different reference
// classes, and GetKind refuses a handle of the wrong kind.
//
// Observers receive EventCreated and EventDropped for every slot.
// Counter is a ready-made observer that tracks live, peak and total
// slots per kind:
//
//	var c refs.Counter
//	table.Subscribe(&c)
//	...
//	live := c.Live(kindLocal)
//
// Values implementing Dropper are notified when their slot is removed
// or the table is closed.
package refs
