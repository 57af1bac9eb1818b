package workflows

// Actor identifies who is requesting a transition.
type Actor string

const (
	ActorAdmin Actor = "admin"
	ActorOwner Actor = "owner"
)

// StateMachine enforces project review status transitions per actor
type StateMachine struct {
	states             []string
	allowedTransitions map[Actor]map[string][]string
}

// NewStateMachine creates the review state machine.
// Admins may re-evaluate any status into any status, including the one it is
// already in. Owners may only resubmit a project that was sent back.
func NewStateMachine() *StateMachine {
	states := []string{"pending", "approved", "rejected", "changes_requested"}

	admin := make(map[string][]string, len(states))
	for _, from := range states {
		admin[from] = append([]string(nil), states...)
	}

	return &StateMachine{
		states: states,
		allowedTransitions: map[Actor]map[string][]string{
			ActorAdmin: admin,
			ActorOwner: {
				"changes_requested": {"pending"},
			},
		},
	}
}

// IsState reports whether status is a known state.
func (sm *StateMachine) IsState(status string) bool {
	for _, s := range sm.states {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition checks if a status transition is allowed for the actor
func (sm *StateMachine) CanTransition(actor Actor, from, to string) bool {
	for _, allowedTo := range sm.GetAllowedTransitions(actor, from) {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(actor Actor, from string) []string {
	byState, exists := sm.allowedTransitions[actor]
	if !exists {
		return []string{}
	}
	allowed, exists := byState[from]
	if !exists {
		return []string{}
	}
	return allowed
}
