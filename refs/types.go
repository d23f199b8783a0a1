package refs

// Handle is an opaque slot in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Kind tags what a slot holds, e.g. a local or a global reference.
type Kind uint8

// EventType is the lifecycle notification type.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

// Event represents a slot lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Kind   Kind
	Type   EventType
}

// Observer receives notifications about slot lifecycle events.
type Observer interface {
	OnRefEvent(Event)
}

// Dropper is implemented by values that release something when their slot is removed.
type Dropper interface {
	Drop()
}
