package session

import (
	"unitctl/internal/systemd"
)

// ActionPhase is the lifecycle stage of the pending action.
type ActionPhase int

const (
	ActionIdle ActionPhase = iota
	ActionConfirming
	ActionExecuting
	ActionSettled
)

// ActionResult is the settled outcome of one action execution.
type ActionResult struct {
	OK      bool
	Message string
}

// Orchestrator owns the confirm/execute/settle lifecycle for at most one
// in-flight action. Execution happens out-of-band; results come back on
// one-shot channels consumed by non-blocking polls, so a hung external call
// simply leaves the orchestrator in the executing phase until the user
// dismisses it.
type Orchestrator struct {
	phase  ActionPhase
	action systemd.Action
	// unit is the target name; empty for host-wide actions.
	unit   string
	result ActionResult

	resultCh  chan ActionResult
	refreshCh chan refreshOutcome
}

type refreshOutcome struct {
	units []systemd.Unit
	err   error
}

// NewOrchestrator returns an idle orchestrator.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{}
}

// Phase returns the current lifecycle stage.
func (o *Orchestrator) Phase() ActionPhase {
	return o.phase
}

// Action returns the pending action kind.
func (o *Orchestrator) Action() systemd.Action {
	return o.action
}

// Unit returns the pending target name, empty for host-wide actions.
func (o *Orchestrator) Unit() string {
	return o.unit
}

// Result returns the settled outcome; meaningful only in ActionSettled.
func (o *Orchestrator) Result() ActionResult {
	return o.result
}

// Confirm stages an action for user confirmation. Only valid from idle.
func (o *Orchestrator) Confirm(action systemd.Action, unit string) bool {
	if o.phase != ActionIdle {
		return false
	}
	o.phase = ActionConfirming
	o.action = action
	if action.HostWide() {
		unit = ""
	}
	o.unit = unit
	return true
}

// Execute launches the confirmed action in the background and returns
// immediately. Each execution gets fresh buffered channels so a result from
// a dismissed execution can never be mistaken for the current one. After the
// action settles, a best-effort inventory refresh runs and is delivered on
// the second channel; its failure never affects the settled result.
func (o *Orchestrator) Execute(run func(systemd.Action, string) (string, error), refresh func() ([]systemd.Unit, error)) {
	if o.phase != ActionConfirming {
		return
	}
	o.phase = ActionExecuting

	resultCh := make(chan ActionResult, 1)
	refreshCh := make(chan refreshOutcome, 1)
	o.resultCh = resultCh
	o.refreshCh = refreshCh

	action, unit := o.action, o.unit
	go func() {
		msg, err := run(action, unit)
		if err != nil {
			resultCh <- ActionResult{OK: false, Message: err.Error()}
		} else {
			resultCh <- ActionResult{OK: true, Message: msg}
		}
		units, rerr := refresh()
		refreshCh <- refreshOutcome{units: units, err: rerr}
	}()
}

// Poll consumes a pending execution result without blocking. It returns true
// when the action settled on this call.
func (o *Orchestrator) Poll() bool {
	if o.phase != ActionExecuting || o.resultCh == nil {
		return false
	}
	select {
	case result := <-o.resultCh:
		o.result = result
		o.phase = ActionSettled
		o.resultCh = nil
		return true
	default:
		return false
	}
}

// PollRefresh consumes the post-action inventory refresh without blocking.
func (o *Orchestrator) PollRefresh() ([]systemd.Unit, error, bool) {
	if o.refreshCh == nil {
		return nil, nil, false
	}
	select {
	case outcome := <-o.refreshCh:
		o.refreshCh = nil
		return outcome.units, outcome.err, true
	default:
		return nil, nil, false
	}
}

// Busy reports whether an execution result is still outstanding.
func (o *Orchestrator) Busy() bool {
	return o.phase == ActionExecuting
}

// Dismiss clears every pending-action field and returns to idle. Valid from
// any phase; dismissing an executing action abandons its channels (the
// background goroutine completes into buffered channels and is collected).
func (o *Orchestrator) Dismiss() {
	o.phase = ActionIdle
	o.action = 0
	o.unit = ""
	o.result = ActionResult{}
	o.resultCh = nil
	o.refreshCh = nil
}
