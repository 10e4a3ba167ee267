package models

// Outcome classifies how a drug-info request ended.
type Outcome string

const (
	OutcomeAnswered      Outcome = "answered"
	OutcomeNotFound      Outcome = "not_found"
	OutcomePipelineError Outcome = "pipeline_error"
)

// DrugInfoResult is what the drug-info page renders.
type DrugInfoResult struct {
	Outcome Outcome `json:"outcome"`
	Answer  string  `json:"answer,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// ReminderRecord is a reminder as confirmed back to the user. No field is
// validated or normalized.
type ReminderRecord struct {
	Medicine      string   `json:"medicine"`
	Dose          string   `json:"dose"`
	Frequency     string   `json:"frequency"`
	ReminderTimes []string `json:"reminder_times"`
}
