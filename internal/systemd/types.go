package systemd

import (
	"fmt"
	"time"
)

// Category selects which kind of unit the inventory lists.
type Category int

const (
	CategoryService Category = iota
	CategoryTimer
	CategorySocket
	CategoryTarget
	CategoryPath
)

// Categories lists every selectable category in picker order.
var Categories = [...]Category{
	CategoryService,
	CategoryTimer,
	CategorySocket,
	CategoryTarget,
	CategoryPath,
}

// Label returns the plural display name for the category.
func (c Category) Label() string {
	switch c {
	case CategoryTimer:
		return "Timers"
	case CategorySocket:
		return "Sockets"
	case CategoryTarget:
		return "Targets"
	case CategoryPath:
		return "Paths"
	default:
		return "Services"
	}
}

// TypeArg returns the value passed to systemctl --type.
func (c Category) TypeArg() string {
	switch c {
	case CategoryTimer:
		return "timer"
	case CategorySocket:
		return "socket"
	case CategoryTarget:
		return "target"
	case CategoryPath:
		return "path"
	default:
		return "service"
	}
}

// SubStateOptions returns the sub-state filter choices for the category.
// The first entry is always "All".
func (c Category) SubStateOptions() []string {
	switch c {
	case CategoryTimer:
		return []string{"All", "waiting", "running", "elapsed"}
	case CategorySocket:
		return []string{"All", "listening", "running", "failed"}
	case CategoryTarget:
		return []string{"All", "active", "inactive"}
	case CategoryPath:
		return []string{"All", "waiting", "running", "failed"}
	default:
		return []string{"All", "running", "exited", "failed", "dead"}
	}
}

// Scope selects the system-wide or per-user unit namespace.
type Scope int

const (
	ScopeSystem Scope = iota
	ScopeUser
)

// Label returns the display name for the scope.
func (s Scope) Label() string {
	if s == ScopeUser {
		return "user"
	}
	return "system"
}

// Unit is one row of the inventory. Snapshots are immutable; a refresh
// replaces the whole slice.
type Unit struct {
	Name        string `json:"unit"`
	Load        string `json:"load"`
	Active      string `json:"active"`
	Sub         string `json:"sub"`
	Description string `json:"description"`

	// Detail carries category-specific extra info (timer next-elapse,
	// socket listen address). FileState is the enablement state from
	// list-unit-files. Both are merged after the list-units call.
	Detail    string `json:"-"`
	FileState string `json:"-"`
}

// FileStateOptions are the enablement filter choices.
var FileStateOptions = []string{"All", "enabled", "disabled", "static", "masked", "indirect"}

// Action is a lifecycle verb issued to the service manager.
type Action int

const (
	ActionStart Action = iota
	ActionStop
	ActionRestart
	ActionReload
	ActionEnable
	ActionDisable
	ActionDaemonReload
)

// Label returns the display name for the action.
func (a Action) Label() string {
	switch a {
	case ActionStop:
		return "Stop"
	case ActionRestart:
		return "Restart"
	case ActionReload:
		return "Reload"
	case ActionEnable:
		return "Enable"
	case ActionDisable:
		return "Disable"
	case ActionDaemonReload:
		return "Daemon Reload"
	default:
		return "Start"
	}
}

// Verb returns the systemctl subcommand for the action.
func (a Action) Verb() string {
	switch a {
	case ActionStop:
		return "stop"
	case ActionRestart:
		return "restart"
	case ActionReload:
		return "reload"
	case ActionEnable:
		return "enable"
	case ActionDisable:
		return "disable"
	case ActionDaemonReload:
		return "daemon-reload"
	default:
		return "start"
	}
}

// ProgressLabel returns the in-flight status text shown while the action runs.
func (a Action) ProgressLabel() string {
	switch a {
	case ActionStop:
		return "Stopping..."
	case ActionRestart:
		return "Restarting..."
	case ActionReload:
		return "Reloading..."
	case ActionEnable:
		return "Enabling..."
	case ActionDisable:
		return "Disabling..."
	case ActionDaemonReload:
		return "Reloading daemon..."
	default:
		return "Starting..."
	}
}

// HostWide reports whether the action targets the manager rather than a unit.
func (a Action) HostWide() bool {
	return a == ActionDaemonReload
}

// ConfirmPrompt builds the confirmation question for the action.
func (a Action) ConfirmPrompt(unitName string) string {
	if a == ActionDaemonReload {
		return "Reload systemd daemon configuration?"
	}
	return fmt.Sprintf("%s %s?", a.Label(), unitName)
}

// AvailableActions returns the actions offered for a unit given its current
// sub-state and enablement state. Daemon reload is always offered last.
func AvailableActions(subState, fileState string) []Action {
	var actions []Action
	switch subState {
	case "running", "active", "listening", "waiting":
		actions = append(actions, ActionStop, ActionRestart, ActionReload)
	case "dead", "failed", "inactive", "exited":
		actions = append(actions, ActionStart)
	default:
		actions = append(actions, ActionStart, ActionStop)
	}
	switch fileState {
	case "enabled":
		actions = append(actions, ActionDisable)
	case "disabled":
		actions = append(actions, ActionEnable)
	}
	return append(actions, ActionDaemonReload)
}

// TimeRange bounds journal queries to a relative window.
type TimeRange int

const (
	RangeAll TimeRange = iota
	RangeFifteenMinutes
	RangeOneHour
	RangeOneDay
	RangeSevenDays
	RangeToday
)

// TimeRanges lists every range in picker order.
var TimeRanges = [...]TimeRange{
	RangeAll,
	RangeFifteenMinutes,
	RangeOneHour,
	RangeOneDay,
	RangeSevenDays,
	RangeToday,
}

// Label returns the display name for the range.
func (r TimeRange) Label() string {
	switch r {
	case RangeFifteenMinutes:
		return "Last 15 minutes"
	case RangeOneHour:
		return "Last 1 hour"
	case RangeOneDay:
		return "Last 24 hours"
	case RangeSevenDays:
		return "Last 7 days"
	case RangeToday:
		return "Today"
	default:
		return "All"
	}
}

// SinceArg returns the journalctl --since value, or "" for no bound.
func (r TimeRange) SinceArg() string {
	switch r {
	case RangeFifteenMinutes:
		return "15 min ago"
	case RangeOneHour:
		return "1 hour ago"
	case RangeOneDay:
		return "1 day ago"
	case RangeSevenDays:
		return "7 days ago"
	case RangeToday:
		return "today"
	default:
		return ""
	}
}

// PriorityLabels maps syslog priorities 0-7 to their names.
var PriorityLabels = [8]string{"emerg", "alert", "crit", "err", "warning", "notice", "info", "debug"}

// PriorityLabel returns the name for a syslog priority, or "unknown".
func PriorityLabel(p int) string {
	if p >= 0 && p < len(PriorityLabels) {
		return PriorityLabels[p]
	}
	return "unknown"
}

// Record is one journal entry. Optional fields are pointers or empty strings;
// a line that failed structured parsing carries only Message.
type Record struct {
	// Timestamp is microseconds since the epoch, 0 when unknown.
	Timestamp int64
	// Priority is the syslog severity 0-7, -1 when unknown.
	Priority int
	PID      string
	// Identifier is the syslog identifier, usually the process name.
	Identifier string
	Message    string
	// BootID and InvocationID distinguish reboots and individual service
	// runs inside the stream.
	BootID       string
	InvocationID string
	// Cursor is the opaque resume token for tailing, empty when absent.
	Cursor string
}

// FormatTimestamp renders the record timestamp like journalctl's short
// format, or "" when the record has none.
func (r Record) FormatTimestamp() string {
	if r.Timestamp == 0 {
		return ""
	}
	secs := r.Timestamp / 1_000_000
	nsecs := (r.Timestamp % 1_000_000) * 1000
	return time.Unix(secs, nsecs).Format("Jan 02 15:04:05")
}

// Filter narrows journal queries by severity and time window.
type Filter struct {
	// MinPriority is the maximum numeric priority to include (journalctl -p
	// semantics: 0 is most severe). -1 means no severity filter.
	MinPriority int
	Range       TimeRange
}

// NoFilter matches every record.
var NoFilter = Filter{MinPriority: -1, Range: RangeAll}

// FormatRelative renders the delta from now to a future microsecond
// timestamp, like "2d 4h" or "35m 10s". Past timestamps render "elapsed".
func FormatRelative(targetUS uint64, now time.Time) string {
	nowUS := uint64(now.UnixMicro())
	if targetUS <= nowUS {
		return "elapsed"
	}
	diff := (targetUS - nowUS) / 1_000_000
	days := diff / 86400
	hours := (diff % 86400) / 3600
	minutes := (diff % 3600) / 60
	seconds := diff % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// FormatBytes renders a byte count with a binary-unit suffix.
func FormatBytes(bytes uint64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatCPUTime renders accumulated CPU nanoseconds as seconds or minutes.
func FormatCPUTime(nsec uint64) string {
	secs := float64(nsec) / 1e9
	if secs >= 60 {
		return fmt.Sprintf("%.1fmin", secs/60)
	}
	return fmt.Sprintf("%.3fs", secs)
}
