// Package lifecycle holds the status state machine shared by the supplier,
// qualification and evaluation modules.
package lifecycle

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrIllegalTransition is matched by every TransitionError.
var ErrIllegalTransition = errors.New("illegal status transition")

// ErrUnknownAction is returned by Fire for an action the machine does not define.
var ErrUnknownAction = errors.New("unknown lifecycle action")

// Status is any string-backed status enum.
type Status interface{ ~string }

// Action is a named transition from one of From to To. Message is the
// reason reported when the current status is not in From.
type Action[S Status] struct {
	Name    string
	From    []S
	To      S
	Message string
}

// Machine is a table of named, guarded status transitions.
type Machine[S Status] struct {
	entity      string
	actions     map[string]Action[S]
	transitions map[S][]S
}

// New creates a machine for the named entity kind. states lists every
// status so that terminal ones appear in the transition table.
func New[S Status](entity string, states []S, actions ...Action[S]) *Machine[S] {
	m := &Machine[S]{
		entity:      entity,
		actions:     make(map[string]Action[S], len(actions)),
		transitions: make(map[S][]S, len(states)),
	}
	for _, s := range states {
		m.transitions[s] = nil
	}
	for _, a := range actions {
		m.actions[a.Name] = a
		for _, from := range a.From {
			if !slices.Contains(m.transitions[from], a.To) {
				m.transitions[from] = append(m.transitions[from], a.To)
			}
		}
	}
	return m
}

// Entity returns the entity kind the machine guards.
func (m *Machine[S]) Entity() string { return m.entity }

// CanTransition returns true if some action moves current to next.
func (m *Machine[S]) CanTransition(current, next S) bool {
	allowed, ok := m.transitions[current]
	if !ok {
		return false
	}
	return slices.Contains(allowed, next)
}

// Next returns the statuses reachable from current.
func (m *Machine[S]) Next(current S) []S {
	return slices.Clone(m.transitions[current])
}

// IsTerminal reports whether current has no outgoing transitions.
func (m *Machine[S]) IsTerminal(current S) bool {
	return len(m.transitions[current]) == 0
}

// Fire checks the named action against current and returns the target status.
// It never changes anything; callers assign the result on success.
func (m *Machine[S]) Fire(action string, current S) (S, error) {
	a, ok := m.actions[action]
	if !ok {
		return current, fmt.Errorf("%s %q: %w", m.entity, action, ErrUnknownAction)
	}
	if slices.Contains(a.From, current) {
		return a.To, nil
	}
	required := make([]string, len(a.From))
	for i, s := range a.From {
		required[i] = string(s)
	}
	return current, &TransitionError{
		Entity:   m.entity,
		Action:   action,
		Current:  string(current),
		Required: required,
		Message:  a.Message,
	}
}

// TransitionError reports a guarded transition whose precondition failed.
type TransitionError struct {
	Entity   string   `json:"entity"`
	Action   string   `json:"action"`
	Current  string   `json:"current"`
	Required []string `json:"required"`
	Message  string   `json:"message"`
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s from %s (requires %s): %s",
		e.Entity, e.Action, e.Current, strings.Join(e.Required, "|"), e.Message)
}

// Is makes errors.Is(err, ErrIllegalTransition) true.
func (e *TransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

// AsTransitionError extracts a TransitionError from err.
func AsTransitionError(err error) (*TransitionError, bool) {
	var te *TransitionError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
