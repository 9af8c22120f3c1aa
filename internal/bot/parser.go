package bot

import (
	"strconv"
	"strings"
)

// Grammar defaults for the create-request command:
// request [blood-group] [location] [units] [urgency]
const (
	DefaultBloodGroup = "B+"
	DefaultLocation   = "Unknown"
	DefaultUnits      = 1
	DefaultUrgency    = "normal"
)

// rule pairs a predicate with a command constructor. Rules are evaluated in
// order and the first match wins, so no unit can classify as two commands.
type rule struct {
	match func(lower string) bool
	build func(raw, lower string) Command
}

var rules = []rule{
	{
		match: func(l string) bool { return l == "help" || l == "menu" },
		build: func(raw, _ string) Command { return Command{Kind: KindHelp, Raw: raw} },
	},
	{
		match: func(l string) bool { return strings.Contains(l, "donate") },
		build: func(raw, _ string) Command { return Command{Kind: KindDonate, Raw: raw} },
	},
	{
		match: func(l string) bool { return strings.HasPrefix(l, "bg ") },
		build: buildSetBloodGroup,
	},
	{
		match: func(l string) bool { return strings.HasPrefix(l, "loc ") },
		build: buildSetLocation,
	},
	{
		match: func(l string) bool { return l == "status" },
		build: func(raw, _ string) Command { return Command{Kind: KindStatus, Raw: raw} },
	},
	{
		match: func(l string) bool { return l == "1" || l == "yes" || l == "y" },
		build: func(raw, _ string) Command { return Command{Kind: KindConfirm, Raw: raw} },
	},
	{
		match: func(l string) bool { return l == "2" || l == "no" || l == "n" },
		build: func(raw, _ string) Command { return Command{Kind: KindDecline, Raw: raw} },
	},
	{
		match: func(l string) bool { return strings.HasPrefix(l, "request") },
		build: buildCreateRequest,
	},
}

// Split breaks an inbound message body into its ordered command units, one
// per non-empty line. A single message may carry several commands.
func Split(body string) []string {
	var units []string
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			units = append(units, trimmed)
		}
	}
	return units
}

// Classify maps one command unit to its tagged variant. Unrecognized input
// classifies as KindUnknown; the dispatcher answers it with the help text
// rather than an error.
func Classify(unit string) Command {
	raw := strings.TrimSpace(unit)
	lower := strings.ToLower(raw)

	for _, r := range rules {
		if r.match(lower) {
			return r.build(raw, lower)
		}
	}
	return Command{Kind: KindUnknown, Raw: raw}
}

func buildSetBloodGroup(raw, _ string) Command {
	fields := strings.Fields(raw)
	bg := DefaultBloodGroup
	if len(fields) > 1 {
		bg = strings.ToUpper(fields[1])
	}
	return Command{Kind: KindSetBloodGroup, Raw: raw, BloodGroup: bg}
}

func buildSetLocation(raw, _ string) Command {
	// Location keeps the sender's casing and may contain spaces.
	loc := strings.TrimSpace(raw[len("loc "):])
	return Command{Kind: KindSetLocation, Raw: raw, Location: loc}
}

// buildCreateRequest parses "request B+ Pune 2 urgent" positionally.
// Missing tokens fall back to defaults; a non-numeric or non-positive unit
// count falls back to 1. Blood-group validity is checked by the dispatcher,
// not here.
func buildCreateRequest(raw, _ string) Command {
	fields := strings.Fields(raw)

	cmd := Command{
		Kind:       KindCreateRequest,
		Raw:        raw,
		BloodGroup: DefaultBloodGroup,
		Location:   DefaultLocation,
		Units:      DefaultUnits,
		Urgency:    DefaultUrgency,
	}

	if len(fields) > 1 {
		cmd.BloodGroup = strings.ToUpper(fields[1])
	}
	if len(fields) > 2 {
		cmd.Location = fields[2]
	}
	if len(fields) > 3 {
		if units, err := strconv.Atoi(fields[3]); err == nil && units >= 1 {
			cmd.Units = units
		}
	}
	if len(fields) > 4 {
		cmd.Urgency = strings.ToLower(fields[4])
	}

	return cmd
}
