package lifecycle

import (
	"placement/portal/internal/config"
	"placement/portal/internal/model"
)

// TransitionPolicy decides which status changes are accepted.
type TransitionPolicy interface {
	Allows(from, to model.ApplicationStatus) bool
}

// Permissive accepts any change between recognized statuses, including
// reopening a decided application.
type Permissive struct{}

func (Permissive) Allows(from, to model.ApplicationStatus) bool {
	return true
}

// OneWay only lets a pending application be decided.
type OneWay struct{}

func (OneWay) Allows(from, to model.ApplicationStatus) bool {
	if from != model.StatusPending {
		return false
	}
	switch to {
	case model.StatusSelected, model.StatusRejected:
		return true
	default:
		return false
	}
}

func PolicyFromConfig(name string) TransitionPolicy {
	if name == config.TransitionsOneWay {
		return OneWay{}
	}
	return Permissive{}
}
