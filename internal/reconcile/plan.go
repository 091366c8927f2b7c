package reconcile

import (
	"fmt"
	"strings"

	"github.com/180254/razerctl/internal/openrazer"
)

// Property names as they appear in plans, logs, the run history, and MQTT
// change events.
const (
	PropDPI                 = "dpi"
	PropDPIStages           = "dpi_stages"
	PropPollRate            = "poll_rate"
	PropIdleTime            = "idle_time"
	PropLowBatteryThreshold = "low_battery_threshold"
	PropLogoBrightness      = "logo_brightness"
	PropLogoEffect          = "logo_effect"
)

// UnknownValue marks a current value the device can write but not report.
const UnknownValue = "?"

// Change is one drifted property: what it reads now and what it should be.
type Change struct {
	Property string `json:"property"`
	Current  string `json:"current"`
	Desired  string `json:"desired"`

	// lighting marks changes that require effect sync to be disabled first.
	lighting bool

	// apply performs the device write for this change.
	apply func() error
}

// Plan is the set of writes that would bring one device in line with its
// desired settings. An empty plan means the device already matches.
type Plan struct {
	Serial  string   `json:"serial"`
	Name    string   `json:"name"`
	Changes []Change `json:"changes,omitempty"`
}

// Empty reports whether the plan contains no changes.
func (p *Plan) Empty() bool {
	return len(p.Changes) == 0
}

// Summary renders the plan as a single human-readable line, e.g.
// "dpi 800x800->1200x1200, poll_rate 500->1000".
func (p *Plan) Summary() string {
	if p.Empty() {
		return "in sync"
	}
	parts := make([]string, len(p.Changes))
	for i, c := range p.Changes {
		parts[i] = fmt.Sprintf("%s %s->%s", c.Property, c.Current, c.Desired)
	}
	return strings.Join(parts, ", ")
}

// add appends a change to the plan.
func (p *Plan) add(c Change) {
	p.Changes = append(p.Changes, c)
}

// formatDPI renders a dpi pair the way the daemon tracks it.
func formatDPI(x, y int) string {
	return fmt.Sprintf("%dx%d", x, y)
}

// formatStages renders a stage list with the active stage index.
func formatStages(active int, stages []openrazer.DPIStage) string {
	parts := make([]string, len(stages))
	for i, s := range stages {
		parts[i] = formatDPI(s.X, s.Y)
	}
	return fmt.Sprintf("#%d[%s]", active, strings.Join(parts, " "))
}
