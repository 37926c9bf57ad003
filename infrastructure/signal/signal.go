// Package signal parses the inline control channel of dialogue replies.
// The completion service marks phase readiness by embedding a JSON block in
// <extract> tags; this package is the only place that scans reply text.
package signal

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrMalformedSignal indicates an extract block whose payload is not valid
// JSON. Callers treat it as "not ready", never as a turn failure.
var ErrMalformedSignal = errors.New("malformed extraction signal")

// Control is the parsed readiness signal of one reply.
type Control struct {
	// Phase echoes the phase label the service believes it is completing.
	Phase string `json:"phase"`

	// Ready reports whether the phase has gathered enough signal to run
	// its extraction steps.
	Ready bool `json:"ready"`

	// SelectedIndex carries the 0-based research question choice during
	// question sharpening. Nil when the signal does not select.
	SelectedIndex *int `json:"selected_index"`
}

var extractPattern = regexp.MustCompile(`(?s)<extract>(.*?)</extract>`)

// Split separates the user-visible reply from its control signal. Every
// extract block is stripped from the returned text, whether or not its
// payload parses; the first block's payload is the signal. A reply without a
// block returns (reply, nil, nil).
func Split(reply string) (string, *Control, error) {
	match := extractPattern.FindStringSubmatchIndex(reply)
	if match == nil {
		return strings.TrimSpace(reply), nil, nil
	}

	clean := strings.TrimSpace(extractPattern.ReplaceAllString(reply, ""))
	payload := strings.TrimSpace(reply[match[2]:match[3]])

	var ctl Control
	if err := json.Unmarshal([]byte(payload), &ctl); err != nil {
		return clean, nil, ErrMalformedSignal
	}
	return clean, &ctl, nil
}
