package hostprobe

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// CheckFunc answers one yes/no capability question. detail is free text that
// ends up in the diagnostic trail.
type CheckFunc func() (enabled bool, detail string, err error)

// ProbeMethod is one way of answering a capability question.
type ProbeMethod struct {
	Name  string
	Check CheckFunc
}

// Prerequisite gates a whole chain: when it is not satisfied, no method runs.
type Prerequisite struct {
	Name  string
	Check func() (bool, error)
}

// ProbeOutcome is the result of a probe. Diagnostics explains every attempt,
// including the ones that failed, because no single method is trustworthy on
// its own (restricted privileges give false negatives, nested virtualization
// gives false positives).
type ProbeOutcome struct {
	Enabled     bool     `json:"enabled"`
	Diagnostics []string `json:"diagnostics"`
}

// Probe runs methods in order and stops at the first one reporting the
// feature as enabled. Errors and negative answers are never conclusive: the
// chain moves on to the next method.
func Probe(methods ...ProbeMethod) ProbeOutcome {
	diags := make([]string, 0, len(methods)+1)
	for i, m := range methods {
		enabled, line := attempt(i, m)
		diags = append(diags, line)
		if enabled {
			return ProbeOutcome{Enabled: true, Diagnostics: diags}
		}
	}
	diags = append(diags, fmt.Sprintf("no method confirmed enablement (%d tried)", len(methods)))
	return ProbeOutcome{Enabled: false, Diagnostics: diags}
}

// ProbeGated checks prereq first. If it is not satisfied, the outcome is
// negative with a single diagnostic line and none of methods is invoked.
func ProbeGated(prereq Prerequisite, methods ...ProbeMethod) ProbeOutcome {
	ok, err := prereq.Check()
	switch {
	case err != nil:
		log.Debug().Err(err).Str("prerequisite", prereq.Name).Msg("hostprobe prerequisite failed")
		return ProbeOutcome{Diagnostics: []string{fmt.Sprintf("prerequisite %s: error: %v", prereq.Name, err)}}
	case !ok:
		log.Debug().Str("prerequisite", prereq.Name).Msg("hostprobe prerequisite not satisfied")
		return ProbeOutcome{Diagnostics: []string{fmt.Sprintf("prerequisite %s: not satisfied, skipping all methods", prereq.Name)}}
	}
	return Probe(methods...)
}

func attempt(i int, m ProbeMethod) (enabled bool, line string) {
	if m.Check == nil {
		return false, fmt.Sprintf("[%d] %s: error: no check configured", i, m.Name)
	}
	enabled, detail, err := m.Check()
	ev := log.Debug().Int("attempt", i).Str("method", m.Name).Bool("enabled", enabled)
	if err != nil {
		ev.Err(err).Msg("hostprobe probe method failed")
		return false, fmt.Sprintf("[%d] %s: error: %v", i, m.Name, err)
	}
	ev.Str("detail", detail).Msg("hostprobe probe method answered")

	state := "not enabled"
	if enabled {
		state = "enabled"
	}
	if detail != "" {
		return enabled, fmt.Sprintf("[%d] %s: %s (%s)", i, m.Name, state, detail)
	}
	return enabled, fmt.Sprintf("[%d] %s: %s", i, m.Name, state)
}
