package systemd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Recent fetches up to limit of the newest records for a unit under the
// given filter. Records arrive oldest first, as journalctl emits them.
func (c *Client) Recent(ctx context.Context, name string, scope Scope, limit int, filter Filter) ([]Record, error) {
	args := journalArgs(name, scope, filter)
	args = append(args, "-n", strconv.Itoa(limit))
	return c.fetchJournal(ctx, args)
}

// Since fetches only records after the given continuity cursor.
func (c *Client) Since(ctx context.Context, name, cursor string, scope Scope, filter Filter) ([]Record, error) {
	args := journalArgs(name, scope, filter)
	args = append(args, "--after-cursor="+cursor)
	return c.fetchJournal(ctx, args)
}

func journalArgs(name string, scope Scope, filter Filter) []string {
	unitFlag := "-u"
	if scope == ScopeUser {
		unitFlag = "--user-unit"
	}
	args := []string{unitFlag, name, "--no-pager", "--output=json"}
	if filter.MinPriority >= 0 {
		args = append(args, "-p", strconv.Itoa(filter.MinPriority))
	}
	if since := filter.Range.SinceArg(); since != "" {
		args = append(args, "--since", since)
	}
	return args
}

func (c *Client) fetchJournal(ctx context.Context, args []string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	stdout, stderr, err := c.run(ctx, "journalctl", args...)
	if err != nil {
		c.log.Warn().Err(err).Msg("journalctl failed")
		return nil, fmt.Errorf("journalctl: %s", firstLine(stderr, err))
	}

	var records []Record
	for _, line := range strings.Split(string(stdout), "\n") {
		if line == "" {
			continue
		}
		records = append(records, ParseJournalLine(line))
	}
	return records, nil
}

// journalEntry mirrors the journalctl JSON export fields we consume. MESSAGE
// is raw because the journal encodes non-UTF-8 payloads as byte arrays.
type journalEntry struct {
	Message      json.RawMessage `json:"MESSAGE"`
	Priority     string          `json:"PRIORITY"`
	Realtime     string          `json:"__REALTIME_TIMESTAMP"`
	PID          string          `json:"_PID"`
	Identifier   string          `json:"SYSLOG_IDENTIFIER"`
	BootID       string          `json:"_BOOT_ID"`
	InvocationID string          `json:"_SYSTEMD_INVOCATION_ID"`
	Cursor       string          `json:"__CURSOR"`
}

// ParseJournalLine converts one JSON export line into a Record. A line that
// is not valid JSON is surfaced as a raw-text record rather than dropped.
func ParseJournalLine(line string) Record {
	rec := Record{Priority: -1, Message: line}

	var entry journalEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return rec
	}

	rec.Message = decodeMessage(entry.Message, line)
	if p, err := strconv.Atoi(entry.Priority); err == nil {
		rec.Priority = p
	}
	if ts, err := strconv.ParseInt(entry.Realtime, 10, 64); err == nil {
		rec.Timestamp = ts
	}
	rec.PID = entry.PID
	rec.Identifier = entry.Identifier
	rec.BootID = entry.BootID
	rec.InvocationID = entry.InvocationID
	rec.Cursor = entry.Cursor
	return rec
}

func decodeMessage(raw json.RawMessage, fallback string) string {
	if len(raw) == 0 {
		return fallback
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// Byte-array form for messages that are not valid UTF-8.
	var nums []int
	if err := json.Unmarshal(raw, &nums); err == nil {
		buf := make([]byte, len(nums))
		for i, n := range nums {
			buf[i] = byte(n)
		}
		return string(buf)
	}
	return fallback
}
