package orders

import "github.com/zulandar/stationmaster/internal/models"

// Car-order lifecycle events.
const (
	EventAssign  = "assign"  // a switch list commits the order to a train
	EventDepart  = "depart"  // the car leaves its origin
	EventDeliver = "deliver" // the train completes and the car arrives
	EventRevert  = "revert"  // cancellation or session cleanup releases the order
)

// transitions is the car-order state machine, keyed by current status then event.
var transitions = map[string]map[string]string{
	models.OrderPending: {
		EventAssign: models.OrderAssigned,
	},
	models.OrderAssigned: {
		EventDepart:  models.OrderInTransit,
		EventDeliver: models.OrderDelivered,
		EventRevert:  models.OrderPending,
	},
	models.OrderInTransit: {
		EventDeliver: models.OrderDelivered,
		EventRevert:  models.OrderPending,
	},
}

// Transition returns the status an order moves to for the given event, or
// ok=false when the event is not valid from the current status.
func Transition(current, event string) (next string, ok bool) {
	next, ok = transitions[current][event]
	return next, ok
}
