package engine

import "github.com/popupsim/popupsim/sim"

// Event is one scheduled resumption point in the cooperative scheduler
// (spec §4.1). Each concrete type below is one of the tagged variants the
// dynamic-typed dispatch in the original collapses into (spec §9).
type Event interface {
	Timestamp() float64
	EventID() uint64
	Type() EventType
	Execute(s *Simulation)
}

// BaseEvent carries the fields every event shares.
type BaseEvent struct {
	timestamp float64
	eventID   uint64
	eventType EventType
}

func newBaseEvent(timestamp float64, eventType EventType, eventID uint64) BaseEvent {
	return BaseEvent{timestamp: timestamp, eventType: eventType, eventID: eventID}
}

func (e *BaseEvent) Timestamp() float64 { return e.timestamp }
func (e *BaseEvent) EventID() uint64    { return e.eventID }
func (e *BaseEvent) Type() EventType    { return e.eventType }

// TrainArrivalEvent fires at a train's scheduled arrival time; the arrival
// coordinator classifies and distributes its wagons (spec §4.9).
type TrainArrivalEvent struct {
	BaseEvent
	TrainIndex int
}

func (e *TrainArrivalEvent) Execute(s *Simulation) { s.handleTrainArrival(e) }

// CollectionWakeEvent resumes the collection coordinator for one collection
// track: check the FIFO, try to form and move a batch (spec §4.10).
type CollectionWakeEvent struct {
	BaseEvent
	Track string
}

func (e *CollectionWakeEvent) Execute(s *Simulation) { s.handleCollectionWake(e) }

// CollectionMoveDoneEvent fires after a collection->retrofit route duration
// elapses; completes the move (decouple, release locomotive).
type CollectionMoveDoneEvent struct {
	BaseEvent
	Move *collectionMove
}

func (e *CollectionMoveDoneEvent) Execute(s *Simulation) { s.handleCollectionMoveDone(e) }

// collectionMove carries the state a CollectionMoveDoneEvent needs to
// complete a batch's transport from a collection track to a retrofit track.
type collectionMove struct {
	Loco       *sim.Locomotive
	Wagons     []*sim.Wagon
	FromTrack  string
	ToTrack    string
	Amount     float64
	WagonCount int
}

// WorkshopWakeEvent resumes the workshop coordinator: check the
// coordination service, scan retrofit tracks, try to admit a batch
// (spec §4.11).
type WorkshopWakeEvent struct {
	BaseEvent
}

func (e *WorkshopWakeEvent) Execute(s *Simulation) { s.handleWorkshopWake(e) }

// WorkshopMoveInDoneEvent fires after the retrofit->workshop transport
// completes; admits wagons to bays.
type WorkshopMoveInDoneEvent struct {
	BaseEvent
	Move *workshopMoveIn
}

func (e *WorkshopMoveInDoneEvent) Execute(s *Simulation) { s.handleWorkshopMoveInDone(e) }

// workshopMoveIn carries the state needed to admit a batch arriving at a
// workshop track into individual retrofit bays.
type workshopMoveIn struct {
	Loco       *sim.Locomotive
	Wagons     []*sim.Wagon
	FromTrack  string
	Workshop   string
	Amount     float64
	WagonCount int
}

// WorkshopRetrofitDoneEvent fires after wagon_retrofit_time elapses for a
// bay admission; releases the bay and queues the wagon for delivery.
type WorkshopRetrofitDoneEvent struct {
	BaseEvent
	Workshop string
	WagonID  string
}

func (e *WorkshopRetrofitDoneEvent) Execute(s *Simulation) { s.handleWorkshopRetrofitDone(e) }

// WorkshopMoveOutDoneEvent fires after the workshop->retrofitted transport
// completes.
type WorkshopMoveOutDoneEvent struct {
	BaseEvent
	Move *workshopMoveOut
}

func (e *WorkshopMoveOutDoneEvent) Execute(s *Simulation) { s.handleWorkshopMoveOutDone(e) }

// workshopMoveOut carries the state needed to deliver one retrofitted wagon
// from its workshop track to a retrofitted-holding track.
type workshopMoveOut struct {
	Loco      *sim.Locomotive
	Wagon     *sim.Wagon
	FromTrack string
	ToTrack   string
}

// ParkingWakeEvent resumes the parking coordinator: evaluate the threshold,
// critical and idle-timer triggers (spec §4.12). IdleTriggered marks a wake
// raised by the periodic idle timer, which fires regardless of accumulator
// level; wakes raised reactively (e.g. a wagon just arrived on a retrofitted
// track) still have to clear the threshold check.
type ParkingWakeEvent struct {
	BaseEvent
	IdleTriggered bool
}

func (e *ParkingWakeEvent) Execute(s *Simulation) { s.handleParkingWake(e) }

// ParkingMoveDoneEvent fires after the retrofitted->parking transport
// completes.
type ParkingMoveDoneEvent struct {
	BaseEvent
	Move *parkingMove
}

func (e *ParkingMoveDoneEvent) Execute(s *Simulation) { s.handleParkingMoveDone(e) }

// parkingMove carries the state needed to complete a batch's transport from
// a retrofitted-holding track to a parking track.
type parkingMove struct {
	Loco       *sim.Locomotive
	Wagons     []*sim.Wagon
	FromTrack  string
	ToTrack    string
	Amount     float64
	WagonCount int
}
