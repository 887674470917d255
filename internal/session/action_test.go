package session

import (
	"errors"
	"testing"
	"time"

	"unitctl/internal/systemd"
)

// pollUntil spins the non-blocking poll until it reports settlement or the
// deadline passes.
func pollUntil(t *testing.T, o *Orchestrator) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if o.Poll() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("action did not settle in time")
}

func pollRefreshUntil(t *testing.T, o *Orchestrator) ([]systemd.Unit, error) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if units, err, ok := o.PollRefresh(); ok {
			return units, err
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("refresh did not arrive in time")
	return nil, nil
}

func TestLifecycleSuccess(t *testing.T) {
	o := NewOrchestrator()
	if o.Phase() != ActionIdle {
		t.Fatal("new orchestrator should be idle")
	}

	if !o.Confirm(systemd.ActionRestart, "nginx.service") {
		t.Fatal("Confirm from idle should succeed")
	}
	if o.Phase() != ActionConfirming {
		t.Fatalf("phase = %v, want confirming", o.Phase())
	}

	o.Execute(
		func(a systemd.Action, unit string) (string, error) {
			if a != systemd.ActionRestart || unit != "nginx.service" {
				t.Errorf("run got %v %q", a, unit)
			}
			return "Restart succeeded for nginx.service", nil
		},
		func() ([]systemd.Unit, error) {
			return []systemd.Unit{{Name: "nginx.service", Sub: "running"}}, nil
		},
	)
	if o.Phase() != ActionExecuting || !o.Busy() {
		t.Fatalf("phase = %v, want executing", o.Phase())
	}

	pollUntil(t, o)
	if o.Phase() != ActionSettled {
		t.Fatalf("phase = %v, want settled", o.Phase())
	}
	result := o.Result()
	if !result.OK || result.Message != "Restart succeeded for nginx.service" {
		t.Fatalf("result = %+v", result)
	}

	units, err := pollRefreshUntil(t, o)
	if err != nil || len(units) != 1 {
		t.Fatalf("refresh = %v, %v", units, err)
	}

	o.Dismiss()
	if o.Phase() != ActionIdle {
		t.Fatal("Dismiss should return to idle")
	}
}

func TestLifecycleFailure(t *testing.T) {
	o := NewOrchestrator()
	o.Confirm(systemd.ActionStop, "bad.service")
	o.Execute(
		func(systemd.Action, string) (string, error) {
			return "", errors.New("Stop failed: unit not loaded")
		},
		func() ([]systemd.Unit, error) { return nil, errors.New("refresh down") },
	)
	pollUntil(t, o)
	result := o.Result()
	if result.OK || result.Message != "Stop failed: unit not loaded" {
		t.Fatalf("result = %+v", result)
	}
	// The failed refresh is still delivered; the caller decides to drop it.
	if _, err := pollRefreshUntil(t, o); err == nil {
		t.Fatal("expected refresh error")
	}
}

func TestConfirmOnlyFromIdle(t *testing.T) {
	o := NewOrchestrator()
	o.Confirm(systemd.ActionStart, "a.service")
	if o.Confirm(systemd.ActionStop, "b.service") {
		t.Fatal("second Confirm should be rejected")
	}
	if o.Unit() != "a.service" {
		t.Fatalf("unit = %q, want a.service", o.Unit())
	}
}

func TestHostWideActionDropsUnit(t *testing.T) {
	o := NewOrchestrator()
	o.Confirm(systemd.ActionDaemonReload, "nginx.service")
	if o.Unit() != "" {
		t.Fatalf("unit = %q, want empty for host-wide action", o.Unit())
	}
}

func TestExecuteRequiresConfirming(t *testing.T) {
	o := NewOrchestrator()
	o.Execute(
		func(systemd.Action, string) (string, error) { return "", nil },
		func() ([]systemd.Unit, error) { return nil, nil },
	)
	if o.Phase() != ActionIdle {
		t.Fatal("Execute from idle must be a no-op")
	}
}

func TestHungCallStaysExecutingUntilDismiss(t *testing.T) {
	o := NewOrchestrator()
	o.Confirm(systemd.ActionStart, "slow.service")
	release := make(chan struct{})
	o.Execute(
		func(systemd.Action, string) (string, error) {
			<-release
			return "done", nil
		},
		func() ([]systemd.Unit, error) { return nil, nil },
	)

	for i := 0; i < 5; i++ {
		if o.Poll() {
			t.Fatal("hung call must not settle")
		}
	}
	if o.Phase() != ActionExecuting {
		t.Fatalf("phase = %v, want executing", o.Phase())
	}

	o.Dismiss()
	if o.Phase() != ActionIdle {
		t.Fatal("Dismiss must work from executing")
	}
	close(release)

	// The abandoned goroutine completes into its buffered channels; nothing
	// leaks into the reset orchestrator.
	time.Sleep(10 * time.Millisecond)
	if o.Poll() {
		t.Fatal("stale result must not settle a dismissed orchestrator")
	}
	if _, _, ok := o.PollRefresh(); ok {
		t.Fatal("stale refresh must not be delivered")
	}
}

func TestStaleResultCannotLeakIntoNextExecution(t *testing.T) {
	o := NewOrchestrator()
	o.Confirm(systemd.ActionStart, "first.service")
	release := make(chan struct{})
	o.Execute(
		func(systemd.Action, string) (string, error) {
			<-release
			return "stale", nil
		},
		func() ([]systemd.Unit, error) { return nil, nil },
	)
	o.Dismiss()

	o.Confirm(systemd.ActionStop, "second.service")
	o.Execute(
		func(systemd.Action, string) (string, error) { return "fresh", nil },
		func() ([]systemd.Unit, error) { return nil, nil },
	)
	close(release)

	pollUntil(t, o)
	if got := o.Result().Message; got != "fresh" {
		t.Fatalf("result = %q, want fresh", got)
	}
}
