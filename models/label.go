package models

import "strings"

// LabelSections lists the openFDA label fields combined into the indexed
// text, in output order.
var LabelSections = []string{
	"indications_and_usage",
	"dosage_and_administration",
	"warnings",
	"warnings_and_cautions",
	"adverse_reactions",
	"contraindications",
	"drug_interactions",
	"pregnancy",
	"breastfeeding",
	"overdosage",
	"clinical_pharmacology",
	"how_supplied",
}

// FetchStatus tells a found label apart from a miss and from a failed lookup.
type FetchStatus int

const (
	FetchFound FetchStatus = iota
	FetchNotFound
	FetchFailed
)

func (s FetchStatus) String() string {
	switch s {
	case FetchFound:
		return "found"
	case FetchNotFound:
		return "not_found"
	case FetchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FetchResult is the outcome of one label lookup. Text is set only for
// FetchFound (and may be empty); Err only for FetchFailed.
type FetchResult struct {
	Status FetchStatus
	Text   string
	Err    error
}

// HasText reports whether the result carries label text worth indexing.
func (r FetchResult) HasText() bool {
	return r.Status == FetchFound && strings.TrimSpace(r.Text) != ""
}
