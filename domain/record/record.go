// Package record defines the ten-field persistent record schema and the
// interface to the external record store.
package record

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/felixgeelhaar/framing-go/domain/framing"
)

// TextLimit is the maximum number of characters the record store accepts per
// text value. Writes beyond the cap are truncated; the round trip is lossy
// past this point.
const TextLimit = 2000

// ProjectNameLimit bounds the derived project name.
const ProjectNameLimit = 100

// Record is the ten-field schema of the persistent record store. Absent
// fields default to the empty string.
type Record struct {
	ProjectName  string `json:"Project Name"`
	Owner        string `json:"Owner"`
	ResearchType string `json:"Research Type"`
	Background   string `json:"Background"`
	Purpose      string `json:"Purpose"`
	RQ           string `json:"RQ"`
	Method       string `json:"Method"`
	Result       string `json:"Result"`
	Contribution string `json:"Contribution"`
	Year         string `json:"Year"`
}

// FromArtifact maps a framing artifact to the record schema. The project
// name is derived from the raw input: truncated to ProjectNameLimit with
// trailing punctuation trimmed. Year is the current year.
func FromArtifact(a *framing.Artifact, owner string) Record {
	return Record{
		ProjectName:  ProjectName(a.RawInput),
		Owner:        owner,
		ResearchType: string(a.Mode),
		Background:   a.Tension.Background(),
		Purpose:      a.ResearchPosition,
		RQ:           a.SelectedRQ,
		Method:       a.Method,
		Result:       a.ExpectedResult(),
		Contribution: a.Contribution,
		Year:         strconv.Itoa(time.Now().Year()),
	}
}

// ProjectName derives a bounded title from raw input text. The limit counts
// runes, not bytes; CJK input must not be split mid-character.
func ProjectName(raw string) string {
	name := truncateRunes(strings.TrimSpace(raw), ProjectNameLimit)
	name = strings.TrimRight(name, "?!. ")
	return strings.TrimSpace(name)
}

// Truncate caps a text value at the store's character limit.
func Truncate(s string) string {
	return truncateRunes(s, TextLimit)
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
