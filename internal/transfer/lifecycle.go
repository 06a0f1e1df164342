package transfer

import (
	"fmt"

	"github.com/Elver581/traspasos/internal/model"
)

// Status is a transfer record's lifecycle state.
type Status string

// Transfer statuses.
const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// Action is an actor-triggered status transition.
type Action string

// Lifecycle actions.
const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionComplete Action = "complete"
)

// transitions maps each status to the actions allowed from it and the status
// each action leads to. Completed and rejected are terminal.
var transitions = map[Status]map[Action]Status{
	StatusPending: {
		ActionApprove: StatusApproved,
		ActionReject:  StatusRejected,
	},
	StatusApproved: {
		ActionComplete: StatusCompleted,
	},
}

// actionOrder fixes the order actions are reported in.
var actionOrder = []Action{ActionApprove, ActionReject, ActionComplete}

// Next returns the status that applying action to status leads to.
// Actions not allowed from the current status fail with ErrInvalidTransition,
// regardless of what a client rendered.
func Next(status Status, action Action) (Status, error) {
	next, ok := transitions[status][action]
	if !ok {
		return "", fmt.Errorf("cannot %s a %s transfer: %w", action, status, ErrInvalidTransition)
	}
	return next, nil
}

// AllowedActions returns the actions available from a status, in stable order.
// Terminal and unknown statuses return nil.
func AllowedActions(status Status) []Action {
	available := transitions[status]
	if len(available) == 0 {
		return nil
	}

	var actions []Action
	for _, a := range actionOrder {
		if _, ok := available[a]; ok {
			actions = append(actions, a)
		}
	}
	return actions
}

// AllowedActionsFor returns the actions the given role may take from a status.
// Lifecycle actions are reserved for managers and above; other roles only
// draft and submit requests.
func AllowedActionsFor(role string, status Status) []Action {
	if !model.RoleAtLeast(role, model.RoleManager) {
		return nil
	}
	return AllowedActions(status)
}

// ValidStatus reports whether s is a known transfer status.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// ValidAction reports whether a is a known lifecycle action.
func ValidAction(a string) bool {
	switch Action(a) {
	case ActionApprove, ActionReject, ActionComplete:
		return true
	}
	return false
}
