package systemd

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseJournalLine(t *testing.T) {
	cases := []struct {
		name string
		line string
		want Record
	}{
		{
			name: "full entry",
			line: `{"MESSAGE":"Started nginx","PRIORITY":"6","__REALTIME_TIMESTAMP":"1700000000000000","_PID":"1234","SYSLOG_IDENTIFIER":"systemd","_BOOT_ID":"boot1","_SYSTEMD_INVOCATION_ID":"inv1","__CURSOR":"cur1"}`,
			want: Record{
				Timestamp:    1700000000000000,
				Priority:     6,
				PID:          "1234",
				Identifier:   "systemd",
				Message:      "Started nginx",
				BootID:       "boot1",
				InvocationID: "inv1",
				Cursor:       "cur1",
			},
		},
		{
			name: "byte array message",
			line: `{"MESSAGE":[104,105],"PRIORITY":"3"}`,
			want: Record{Priority: 3, Message: "hi"},
		},
		{
			name: "missing optional fields",
			line: `{"MESSAGE":"bare"}`,
			want: Record{Priority: -1, Message: "bare"},
		},
		{
			name: "invalid json becomes raw record",
			line: `-- No entries --`,
			want: Record{Priority: -1, Message: "-- No entries --"},
		},
		{
			name: "non numeric priority ignored",
			line: `{"MESSAGE":"x","PRIORITY":"warn"}`,
			want: Record{Priority: -1, Message: "x"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseJournalLine(tc.line); got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func fakeRunner(t *testing.T, wantName string, wantArgs []string, stdout string, err error) runner {
	t.Helper()
	return func(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
		if name != wantName {
			t.Errorf("command = %q, want %q", name, wantName)
		}
		if strings.Join(args, " ") != strings.Join(wantArgs, " ") {
			t.Errorf("args = %v, want %v", args, wantArgs)
		}
		return []byte(stdout), nil, err
	}
}

func TestRecentArgs(t *testing.T) {
	cases := []struct {
		name   string
		scope  Scope
		filter Filter
		want   []string
	}{
		{
			name:   "system no filter",
			scope:  ScopeSystem,
			filter: NoFilter,
			want:   []string{"-u", "nginx.service", "--no-pager", "--output=json", "-n", "100"},
		},
		{
			name:   "user scope",
			scope:  ScopeUser,
			filter: NoFilter,
			want:   []string{"--user-unit", "nginx.service", "--no-pager", "--output=json", "-n", "100"},
		},
		{
			name:   "severity and range",
			scope:  ScopeSystem,
			filter: Filter{MinPriority: 3, Range: RangeOneHour},
			want:   []string{"-u", "nginx.service", "--no-pager", "--output=json", "-p", "3", "--since", "1 hour ago", "-n", "100"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Client{
				run: fakeRunner(t, "journalctl", tc.want, `{"MESSAGE":"ok"}`+"\n", nil),
				log: zerolog.Nop(),
			}
			records, err := c.Recent(context.Background(), "nginx.service", tc.scope, 100, tc.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(records) != 1 || records[0].Message != "ok" {
				t.Fatalf("records = %+v", records)
			}
		})
	}
}

func TestSinceUsesCursor(t *testing.T) {
	want := []string{"-u", "a.service", "--no-pager", "--output=json", "--after-cursor=abc"}
	c := &Client{
		run: fakeRunner(t, "journalctl", want, "", nil),
		log: zerolog.Nop(),
	}
	records, err := c.Since(context.Background(), "a.service", "abc", ScopeSystem, NoFilter)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("records = %+v, want none", records)
	}
}

func TestFetchJournalSkipsBlankLines(t *testing.T) {
	out := `{"MESSAGE":"one"}` + "\n\n" + `{"MESSAGE":"two"}` + "\n"
	c := &Client{
		run: func(context.Context, string, ...string) ([]byte, []byte, error) {
			return []byte(out), nil, nil
		},
		log: zerolog.Nop(),
	}
	records, err := c.Recent(context.Background(), "x.service", ScopeSystem, 10, NoFilter)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
}
