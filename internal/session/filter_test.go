package session

import (
	"errors"
	"testing"

	"unitctl/internal/systemd"
)

func testUnits() []systemd.Unit {
	return []systemd.Unit{
		{Name: "nginx.service", Sub: "running", Description: "Web server", FileState: "enabled"},
		{Name: "postgres.service", Sub: "dead", Description: "Database", FileState: "disabled"},
		{Name: "redis.service", Sub: "running", Description: "Cache", FileState: "enabled"},
		{Name: "cron.service", Sub: "failed", Description: "Scheduler", FileState: "static"},
	}
}

func filteredNames(f *FilterEngine) []string {
	var names []string
	for _, idx := range f.FilteredIndices() {
		names = append(names, f.Units()[idx].Name)
	}
	return names
}

func TestReplaceSelectsTop(t *testing.T) {
	f := NewFilterEngine()
	if _, ok := f.SelectedUnit(); ok {
		t.Fatal("empty engine should have no selection")
	}
	f.Replace(testUnits())
	u, ok := f.SelectedUnit()
	if !ok || u.Name != "nginx.service" {
		t.Fatalf("selection = %q, %v; want nginx.service, true", u.Name, ok)
	}
}

func TestPredicatesCompose(t *testing.T) {
	cases := []struct {
		name      string
		query     string
		subState  string
		fileState string
		want      []string
	}{
		{name: "none", want: []string{"nginx.service", "postgres.service", "redis.service", "cron.service"}},
		{name: "query only", query: "re", want: []string{"postgres.service", "redis.service"}},
		{name: "substate only", subState: "running", want: []string{"nginx.service", "redis.service"}},
		{name: "filestate only", fileState: "enabled", want: []string{"nginx.service", "redis.service"}},
		{name: "query and substate", query: "re", subState: "running", want: []string{"redis.service"}},
		{name: "all three", query: "re", subState: "running", fileState: "enabled", want: []string{"redis.service"}},
		{name: "conjunction excludes", query: "cron", subState: "running", want: nil},
		{name: "query matches description", query: "database", want: []string{"postgres.service"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFilterEngine()
			f.Replace(testUnits())
			f.SetQuery(tc.query)
			f.SetSubState(tc.subState)
			f.SetFileState(tc.fileState)
			got := filteredNames(f)
			if len(got) != len(tc.want) {
				t.Fatalf("filtered = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("filtered = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestQueryIsCaseInsensitive(t *testing.T) {
	f := NewFilterEngine()
	f.Replace(testUnits())
	f.SetQuery("NGINX")
	if got := filteredNames(f); len(got) != 1 || got[0] != "nginx.service" {
		t.Fatalf("filtered = %v, want [nginx.service]", got)
	}
}

func TestSelectionFollowsUnitAcrossPredicateChange(t *testing.T) {
	f := NewFilterEngine()
	f.Replace(testUnits())
	f.Select(2) // redis.service

	f.SetSubState("running")
	u, ok := f.SelectedUnit()
	if !ok || u.Name != "redis.service" {
		t.Fatalf("selection = %q; want redis.service", u.Name)
	}

	// The selected unit no longer matches; cursor falls back to the top.
	f.SetSubState("failed")
	u, ok = f.SelectedUnit()
	if !ok || u.Name != "cron.service" {
		t.Fatalf("selection = %q; want cron.service", u.Name)
	}
}

func TestSelectionFollowsUnitAcrossReplace(t *testing.T) {
	f := NewFilterEngine()
	f.Replace(testUnits())
	f.Select(1) // postgres.service

	// postgres moves position in the refreshed snapshot.
	f.Replace([]systemd.Unit{
		{Name: "redis.service", Sub: "running"},
		{Name: "nginx.service", Sub: "running"},
		{Name: "postgres.service", Sub: "running"},
	})
	u, ok := f.SelectedUnit()
	if !ok || u.Name != "postgres.service" {
		t.Fatalf("selection = %q; want postgres.service", u.Name)
	}

	// The selected unit disappears entirely; selection resets to the top.
	f.Replace([]systemd.Unit{{Name: "nginx.service", Sub: "running"}})
	u, ok = f.SelectedUnit()
	if !ok || u.Name != "nginx.service" {
		t.Fatalf("selection = %q; want nginx.service", u.Name)
	}
}

func TestFilteredIndicesStayOrdered(t *testing.T) {
	units := []systemd.Unit{
		{Name: "c.service", Sub: "running"},
		{Name: "a.service", Sub: "dead"},
		{Name: "b.service", Sub: "running"},
	}
	f := NewFilterEngine()
	f.Replace(units)
	f.SetSubState("running")
	idx := f.FilteredIndices()
	if len(idx) != 2 || idx[0] != 0 || idx[1] != 2 {
		t.Fatalf("indices = %v, want [0 2]", idx)
	}
}

func TestNavigationWrapsAndClamps(t *testing.T) {
	f := NewFilterEngine()
	f.Replace(testUnits())

	f.Bottom()
	f.Next()
	if pos, _ := f.Selection(); pos != 0 {
		t.Fatalf("Next past end = %d, want wrap to 0", pos)
	}
	f.Prev()
	if pos, _ := f.Selection(); pos != 3 {
		t.Fatalf("Prev past start = %d, want wrap to 3", pos)
	}

	f.Top()
	f.PageUp(10)
	if pos, _ := f.Selection(); pos != 0 {
		t.Fatalf("PageUp clamped = %d, want 0", pos)
	}
	f.PageDown(10)
	if pos, _ := f.Selection(); pos != 3 {
		t.Fatalf("PageDown clamped = %d, want 3", pos)
	}
}

func TestNavigationOnEmptyView(t *testing.T) {
	f := NewFilterEngine()
	f.Replace(testUnits())
	f.SetQuery("no-such-unit")
	f.Next()
	f.Prev()
	f.Top()
	f.Bottom()
	f.PageDown(5)
	if _, ok := f.Selection(); ok {
		t.Fatal("empty view should have no selection")
	}
}

func TestFilteredPositionResolvesToOriginalUnit(t *testing.T) {
	f := NewFilterEngine()
	f.Replace([]systemd.Unit{
		{Name: "a.service", Sub: "running"},
		{Name: "b.service", Sub: "dead"},
		{Name: "c.service", Sub: "running"},
	})
	f.SetSubState("running")
	idx := f.FilteredIndices()
	if len(idx) != 2 || idx[0] != 0 || idx[1] != 2 {
		t.Fatalf("indices = %v, want [0 2]", idx)
	}
	f.Select(1)
	u, ok := f.SelectedUnit()
	if !ok || u.Name != "c.service" {
		t.Fatalf("selection = %q, want c.service", u.Name)
	}
}

func TestErrorKeepsSnapshot(t *testing.T) {
	f := NewFilterEngine()
	f.Replace(testUnits())
	f.SetError(errors.New("boom"))
	if f.Err() == nil {
		t.Fatal("expected pending error")
	}
	if len(f.Units()) != 4 {
		t.Fatal("snapshot should survive an error")
	}
	f.Replace(testUnits())
	if f.Err() != nil {
		t.Fatal("successful refresh should clear the error")
	}
}

func TestClearPredicates(t *testing.T) {
	f := NewFilterEngine()
	f.Replace(testUnits())
	f.SetQuery("redis")
	f.SetSubState("running")
	f.SetFileState("enabled")
	f.ClearPredicates()
	if f.Len() != 4 {
		t.Fatalf("Len = %d after clear, want 4", f.Len())
	}
	// Selection stays on the previously selected unit.
	if u, _ := f.SelectedUnit(); u.Name != "redis.service" {
		t.Fatalf("selection = %q, want redis.service", u.Name)
	}
}
