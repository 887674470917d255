package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"unitctl/internal/config"
	"unitctl/internal/logx"
	"unitctl/internal/systemd"
)

// fakeUnitSource records the scope and category each call was made with.
type fakeUnitSource struct {
	mu           sync.Mutex
	actionScope  systemd.Scope
	listScope    systemd.Scope
	listCategory systemd.Category

	// block delays RunAction until closed; ran and listed signal completion.
	block  chan struct{}
	ran    chan struct{}
	listed chan struct{}
}

func (f *fakeUnitSource) ListUnits(_ context.Context, category systemd.Category, scope systemd.Scope) ([]systemd.Unit, error) {
	f.mu.Lock()
	f.listCategory = category
	f.listScope = scope
	f.mu.Unlock()
	if f.listed != nil {
		close(f.listed)
	}
	return nil, nil
}

func (f *fakeUnitSource) Properties(context.Context, string, systemd.Scope) systemd.Properties {
	return systemd.Properties{}
}

func (f *fakeUnitSource) RunAction(_ context.Context, _ systemd.Action, _ string, scope systemd.Scope) (string, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.actionScope = scope
	f.mu.Unlock()
	if f.ran != nil {
		close(f.ran)
	}
	return "ok", nil
}

func (f *fakeUnitSource) UnitFile(context.Context, string, systemd.Scope) ([]string, error) {
	return nil, nil
}

type fakeJournal struct{}

func (fakeJournal) Recent(_ context.Context, name string, _ systemd.Scope, _ int, _ systemd.Filter) ([]systemd.Record, error) {
	return []systemd.Record{{Message: "log for " + name, Cursor: "c1"}}, nil
}

func (fakeJournal) Since(context.Context, string, string, systemd.Scope, systemd.Filter) ([]systemd.Record, error) {
	return nil, nil
}

func newTestModel(src systemd.UnitSource) Model {
	cfg := config.Config{
		PollInterval: time.Second,
		LogLimit:     100,
		Scope:        "system",
		Category:     "service",
	}
	m := New(context.Background(), src, fakeJournal{}, cfg, logx.Nop())
	m.width = 80
	m.height = 24
	return m
}

func keyPress(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	next, _ := m.handleKey(msg)
	return next.(Model)
}

func waitClosed(t *testing.T, ch chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s did not complete in time", what)
	}
}

// The execution closures capture plain copies of scope and category. A scope
// flip after dismissing a slow action must not leak into the still-running
// goroutine, which would otherwise read session fields owned by the update
// loop.
func TestExecutionSnapshotsScopeAndCategory(t *testing.T) {
	src := &fakeUnitSource{
		block:  make(chan struct{}),
		ran:    make(chan struct{}),
		listed: make(chan struct{}),
	}
	m := newTestModel(src)
	m.sess.Filter().Replace([]systemd.Unit{{Name: "a.service", Sub: "running"}})

	m.sess.OpenActionPicker()
	m.sess.ConfirmPicker()
	m = keyPress(t, m, tea.KeyMsg{Type: tea.KeyEnter}) // launch Stop

	// Walk away from the slow call, then mutate the session on this side.
	m = keyPress(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m.sess.ToggleScope()
	m.sess.SetCategory(systemd.CategoryTimer)

	close(src.block)
	waitClosed(t, src.ran, "action")
	waitClosed(t, src.listed, "refresh")

	src.mu.Lock()
	defer src.mu.Unlock()
	if src.actionScope != systemd.ScopeSystem {
		t.Fatalf("action scope = %v, want the scope at launch", src.actionScope)
	}
	if src.listScope != systemd.ScopeSystem || src.listCategory != systemd.CategoryService {
		t.Fatalf("refresh = %v/%v, want launch-time scope and category", src.listScope, src.listCategory)
	}
}

func TestSelectionMoveLoadsLogsImmediately(t *testing.T) {
	m := newTestModel(&fakeUnitSource{})
	m.sess.Filter().Replace([]systemd.Unit{
		{Name: "a.service", Sub: "running"},
		{Name: "b.service", Sub: "running"},
	})

	next, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("moving the selection must issue a log load without waiting for the tick")
	}
	load, ok := cmd().(logLoadMsg)
	if !ok || load.unit != "b.service" {
		t.Fatalf("command produced %+v, want a load for b.service", load)
	}
	if m.sess.LogUnit() != "b.service" {
		t.Fatalf("log unit = %q, want b.service", m.sess.LogUnit())
	}
}

func TestSeverityChangeLoadsLogsImmediately(t *testing.T) {
	m := newTestModel(&fakeUnitSource{})
	m.sess.Filter().Replace([]systemd.Unit{{Name: "a.service", Sub: "running"}})
	m.sess.BeginLogLoad("a.service")
	m.sess.Logs().Load(nil)

	m.sess.OpenSeverityPicker()
	for m.sess.Picker().Selected() != "err" {
		m.sess.Picker().Next()
	}
	next, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("a changed log filter must reload right away")
	}
	if _, ok := cmd().(logLoadMsg); !ok {
		t.Fatal("expected a log load command")
	}
}

func TestLogSeparatorWidthWithWideRunes(t *testing.T) {
	m := newTestModel(&fakeUnitSource{})
	m.width = 60
	m.sess.Filter().Replace([]systemd.Unit{{Name: "日本語バックアップ.service", Sub: "running"}})
	m.sess.BeginLogLoad("日本語バックアップ.service")

	if got := lipgloss.Width(m.renderLogSeparator()); got != 60 {
		t.Fatalf("separator width = %d, want 60", got)
	}
}
