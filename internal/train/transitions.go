package train

import "github.com/zulandar/stationmaster/internal/models"

// Train lifecycle events.
const (
	EventGenerate = "generate" // switch-list generation starts the run
	EventComplete = "complete" // the run finished and cars moved
	EventCancel   = "cancel"   // the run was abandoned before completion
)

// transitions is the train state machine, keyed by current status then event.
// Completed and Cancelled are terminal.
var transitions = map[string]map[string]string{
	models.TrainPlanned: {
		EventGenerate: models.TrainInProgress,
		EventCancel:   models.TrainCancelled,
	},
	models.TrainInProgress: {
		EventComplete: models.TrainCompleted,
		EventCancel:   models.TrainCancelled,
	},
}

// Transition returns the status a train moves to for the given event, or
// ok=false when the event is not valid from the current status.
func Transition(current, event string) (next string, ok bool) {
	next, ok = transitions[current][event]
	return next, ok
}
