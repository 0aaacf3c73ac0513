package engine

// EventType tags each concrete Event variant for switch-on-tag dispatch in
// the metrics/event-log layer (spec §9: dynamic-typed event dispatch becomes
// tagged variants in a systems language).
type EventType string

const (
	EventTypeTrainArrival         EventType = "TrainArrival"
	EventTypeCollectionWake       EventType = "CollectionWake"
	EventTypeCollectionMoveDone   EventType = "CollectionMoveDone"
	EventTypeWorkshopWake         EventType = "WorkshopWake"
	EventTypeWorkshopMoveInDone   EventType = "WorkshopMoveInDone"
	EventTypeWorkshopRetrofitDone EventType = "WorkshopRetrofitDone"
	EventTypeWorkshopMoveOutDone  EventType = "WorkshopMoveOutDone"
	EventTypeParkingWake          EventType = "ParkingWake"
	EventTypeParkingMoveDone      EventType = "ParkingMoveDone"
	EventTypeGenericDelay         EventType = "GenericDelay"
)
