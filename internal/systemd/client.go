package systemd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// UnitSource is the inventory side of the service manager: unit lists,
// property fact sheets, unit file content, and lifecycle actions.
// Implemented by *Client; the session layer only sees this interface.
type UnitSource interface {
	ListUnits(ctx context.Context, category Category, scope Scope) ([]Unit, error)
	Properties(ctx context.Context, name string, scope Scope) Properties
	RunAction(ctx context.Context, action Action, name string, scope Scope) (string, error)
	UnitFile(ctx context.Context, name string, scope Scope) ([]string, error)
}

// JournalSource is the log side: bounded recent fetches and cursor-resumed
// incremental fetches.
type JournalSource interface {
	Recent(ctx context.Context, name string, scope Scope, limit int, filter Filter) ([]Record, error)
	Since(ctx context.Context, name, cursor string, scope Scope, filter Filter) ([]Record, error)
}

var (
	_ UnitSource    = (*Client)(nil)
	_ JournalSource = (*Client)(nil)
)

// runner executes an external command and returns stdout, stderr and the
// execution error. Tests substitute this to avoid spawning processes.
type runner func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

const commandTimeout = 10 * time.Second

// Client drives systemctl and journalctl.
type Client struct {
	run runner
	log zerolog.Logger
}

// NewClient builds a Client that shells out to the host binaries.
func NewClient(log zerolog.Logger) *Client {
	return &Client{run: execRunner, log: log}
}

func scopeArgs(scope Scope) []string {
	if scope == ScopeUser {
		return []string{"--user"}
	}
	return nil
}

// ListUnits fetches the inventory for one category, merging per-category
// detail and enablement state. The merges are best-effort; only the primary
// list-units call can fail the refresh.
func (c *Client) ListUnits(ctx context.Context, category Category, scope Scope) ([]Unit, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	args := append(scopeArgs(scope),
		"list-units", "--type="+category.TypeArg(), "--all", "--no-pager", "--output=json")
	stdout, stderr, err := c.run(ctx, "systemctl", args...)
	if err != nil {
		c.log.Warn().Err(err).Str("stderr", strings.TrimSpace(string(stderr))).Msg("list-units failed")
		return nil, fmt.Errorf("systemctl list-units: %s", firstLine(stderr, err))
	}

	var units []Unit
	if err := json.Unmarshal(stdout, &units); err != nil {
		return nil, fmt.Errorf("parse list-units output: %w", err)
	}

	switch category {
	case CategoryTimer:
		c.mergeTimerDetails(ctx, units, scope)
	case CategorySocket:
		c.mergeSocketDetails(ctx, units, scope)
	}
	c.mergeFileStates(ctx, units, category, scope)

	return units, nil
}

type timerEntry struct {
	Unit string `json:"unit"`
	Next uint64 `json:"next"`
}

func (c *Client) mergeTimerDetails(ctx context.Context, units []Unit, scope Scope) {
	args := append(scopeArgs(scope), "list-timers", "--all", "--no-pager", "--output=json")
	stdout, _, err := c.run(ctx, "systemctl", args...)
	if err != nil {
		return
	}
	var entries []timerEntry
	if err := json.Unmarshal(stdout, &entries); err != nil {
		return
	}
	byName := make(map[string]timerEntry, len(entries))
	for _, e := range entries {
		byName[e.Unit] = e
	}
	now := time.Now()
	for i := range units {
		e, ok := byName[units[i].Name]
		if !ok {
			continue
		}
		if e.Next == 0 {
			units[i].Detail = "next: n/a"
		} else {
			units[i].Detail = "next: " + FormatRelative(e.Next, now)
		}
	}
}

type socketEntry struct {
	Unit   string `json:"unit"`
	Listen string `json:"listen"`
}

func (c *Client) mergeSocketDetails(ctx context.Context, units []Unit, scope Scope) {
	args := append(scopeArgs(scope), "list-sockets", "--all", "--no-pager", "--output=json")
	stdout, _, err := c.run(ctx, "systemctl", args...)
	if err != nil {
		return
	}
	var entries []socketEntry
	if err := json.Unmarshal(stdout, &entries); err != nil {
		return
	}
	byName := make(map[string]string, len(entries))
	for _, e := range entries {
		byName[e.Unit] = e.Listen
	}
	for i := range units {
		if listen, ok := byName[units[i].Name]; ok {
			units[i].Detail = listen
		}
	}
}

type unitFileEntry struct {
	UnitFile string `json:"unit_file"`
	State    string `json:"state"`
}

func (c *Client) mergeFileStates(ctx context.Context, units []Unit, category Category, scope Scope) {
	args := append(scopeArgs(scope),
		"list-unit-files", "--type="+category.TypeArg(), "--no-pager", "--output=json")
	stdout, _, err := c.run(ctx, "systemctl", args...)
	if err != nil {
		return
	}
	var entries []unitFileEntry
	if err := json.Unmarshal(stdout, &entries); err != nil {
		return
	}
	states := make(map[string]string, len(entries))
	for _, e := range entries {
		// unit_file may be a full path; match on the base name.
		name := e.UnitFile
		if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
			name = name[idx+1:]
		}
		states[name] = e.State
	}
	for i := range units {
		if state, ok := states[units[i].Name]; ok {
			units[i].FileState = state
		}
	}
}

// RunAction issues a lifecycle verb. Host-wide actions (daemon-reload) omit
// the unit name. The returned string is a human-readable success message.
func (c *Client) RunAction(ctx context.Context, action Action, name string, scope Scope) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	args := append(scopeArgs(scope), action.Verb())
	if !action.HostWide() {
		args = append(args, name)
	}
	_, stderr, err := c.run(ctx, "systemctl", args...)
	if err != nil {
		c.log.Warn().Err(err).Str("action", action.Verb()).Str("unit", name).Msg("action failed")
		return "", fmt.Errorf("%s failed: %s", action.Label(), firstLine(stderr, err))
	}
	c.log.Info().Str("action", action.Verb()).Str("unit", name).Msg("action succeeded")
	return fmt.Sprintf("%s succeeded for %s", action.Label(), name), nil
}

// UnitFile returns the unit file content via systemctl cat.
func (c *Client) UnitFile(ctx context.Context, name string, scope Scope) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	args := append(scopeArgs(scope), "cat", name, "--no-pager")
	stdout, stderr, err := c.run(ctx, "systemctl", args...)
	if err != nil {
		return nil, fmt.Errorf("systemctl cat: %s", firstLine(stderr, err))
	}
	return strings.Split(strings.TrimRight(string(stdout), "\n"), "\n"), nil
}

func firstLine(stderr []byte, err error) string {
	if s := strings.TrimSpace(string(stderr)); s != "" {
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			s = s[:idx]
		}
		return s
	}
	return err.Error()
}

// Properties is the on-demand fact sheet for one unit, parsed from
// systemctl show. The zero value stands in when the fetch fails.
type Properties struct {
	FragmentPath           string
	UnitFileState          string
	ActiveState            string
	ActiveEnterTimestamp   string
	SubState               string
	LoadState              string
	Description            string
	MainPID                uint32
	ExecMainStartTimestamp string
	MemoryCurrent          *uint64
	CPUUsageNSec           *uint64

	Requires    []string
	Wants       []string
	After       []string
	Before      []string
	Conflicts   []string
	TriggeredBy []string
	Triggers    []string

	TimersCalendar      []string
	TimersMonotonic     []string
	LastTrigger         string
	Result              string
	NextElapse          string
	Persistent          string
	AccuracyUSec        string
	RandomizedDelayUSec string

	Paths string

	Listen       string
	Accept       string
	NConnections string
	NAccepted    string
}

// Properties fetches the fact sheet for a unit. Failures degrade to the zero
// value; the caller never sees an error.
func (c *Client) Properties(ctx context.Context, name string, scope Scope) Properties {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	args := append(scopeArgs(scope), "show", name, "--no-pager")
	stdout, _, err := c.run(ctx, "systemctl", args...)
	if err != nil {
		c.log.Debug().Err(err).Str("unit", name).Msg("show failed")
		return Properties{}
	}
	return parseProperties(string(stdout))
}

func parseProperties(output string) Properties {
	kv := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		if key, value, ok := strings.Cut(line, "="); ok {
			kv[key] = value
		}
	}

	optionalUint := func(key string) *uint64 {
		v := kv[key]
		if v == "" || v == "[not set]" || v == "infinity" {
			return nil
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil
		}
		return &n
	}
	deps := func(key string) []string {
		if kv[key] == "" {
			return nil
		}
		return strings.Fields(kv[key])
	}
	pid, _ := strconv.ParseUint(kv["MainPID"], 10, 32)

	return Properties{
		FragmentPath:           kv["FragmentPath"],
		UnitFileState:          kv["UnitFileState"],
		ActiveState:            kv["ActiveState"],
		ActiveEnterTimestamp:   kv["ActiveEnterTimestamp"],
		SubState:               kv["SubState"],
		LoadState:              kv["LoadState"],
		Description:            kv["Description"],
		MainPID:                uint32(pid),
		ExecMainStartTimestamp: kv["ExecMainStartTimestamp"],
		MemoryCurrent:          optionalUint("MemoryCurrent"),
		CPUUsageNSec:           optionalUint("CPUUsageNSec"),
		Requires:               deps("Requires"),
		Wants:                  deps("Wants"),
		After:                  deps("After"),
		Before:                 deps("Before"),
		Conflicts:              deps("Conflicts"),
		TriggeredBy:            deps("TriggeredBy"),
		Triggers:               deps("Triggers"),
		TimersCalendar:         parseTimerSpecs(kv["TimersCalendar"]),
		TimersMonotonic:        parseTimerSpecs(kv["TimersMonotonic"]),
		LastTrigger:            kv["LastTriggerUSec"],
		Result:                 kv["Result"],
		NextElapse:             kv["NextElapseUSecRealtime"],
		Persistent:             kv["Persistent"],
		AccuracyUSec:           kv["AccuracyUSec"],
		RandomizedDelayUSec:    kv["RandomizedDelayUSec"],
		Paths:                  kv["Paths"],
		Listen:                 kv["Listen"],
		Accept:                 kv["Accept"],
		NConnections:           kv["NConnections"],
		NAccepted:              kv["NAccepted"],
	}
}

// parseTimerSpecs extracts the schedule expressions from systemctl's
// "{ OnCalendar=... ; next_elapse=... }{ ... }" encoding.
func parseTimerSpecs(raw string) []string {
	if raw == "" {
		return nil
	}
	var specs []string
	for _, chunk := range strings.Split(raw, "}") {
		chunk = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(chunk), "{"))
		if chunk == "" {
			continue
		}
		spec, _, _ := strings.Cut(chunk, ";")
		spec = strings.TrimSpace(spec)
		if spec != "" {
			specs = append(specs, spec)
		}
	}
	return specs
}
