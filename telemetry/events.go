// Package telemetry provides colony statistics, bookmarking, and snapshots.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventPickup EventType = iota
	EventDelivery
	EventBirth
	EventStarvation
	EventRegrowth
)

func (t EventType) String() string {
	switch t {
	case EventPickup:
		return "pickup"
	case EventDelivery:
		return "delivery"
	case EventBirth:
		return "birth"
	case EventStarvation:
		return "starvation"
	case EventRegrowth:
		return "regrowth"
	}
	return "unknown"
}

// Event represents a single telemetry event.
type Event struct {
	Type  EventType
	Tick  int32
	AntID uint32 // Zero for regrowth events

	X, Y int
}

// NewPickupEvent creates a food pickup event at the source cell.
func NewPickupEvent(tick int32, antID uint32, x, y int) Event {
	return Event{Type: EventPickup, Tick: tick, AntID: antID, X: x, Y: y}
}

// NewDeliveryEvent creates a delivery event at the nest.
func NewDeliveryEvent(tick int32, antID uint32, x, y int) Event {
	return Event{Type: EventDelivery, Tick: tick, AntID: antID, X: x, Y: y}
}

// NewBirthEvent creates a birth event.
func NewBirthEvent(tick int32, antID uint32, x, y int) Event {
	return Event{Type: EventBirth, Tick: tick, AntID: antID, X: x, Y: y}
}

// NewStarvationEvent creates a death event for a starved ant.
func NewStarvationEvent(tick int32, antID uint32, x, y int) Event {
	return Event{Type: EventStarvation, Tick: tick, AntID: antID, X: x, Y: y}
}

// NewRegrowthEvent creates a patch regrowth event.
func NewRegrowthEvent(tick int32, x, y int) Event {
	return Event{Type: EventRegrowth, Tick: tick, X: x, Y: y}
}
