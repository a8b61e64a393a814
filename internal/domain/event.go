package domain

import "time"

type EventType string

const (
	EventTraining EventType = "Entrenamiento"
	EventRide     EventType = "Rodada"
)

// Event is the read model the reminder dispatcher works from. Event and
// route editing live outside this service; only identity, the route name
// and the start instant matter here.
type Event struct {
	ID           string
	Type         EventType
	RouteID      string
	RouteName    string
	MeetingPoint string
	StartsAt     time.Time
}
