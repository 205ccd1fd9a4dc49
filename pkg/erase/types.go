package erase

// AttemptOutcome is the result of one tier.
type AttemptOutcome string

const (
	AttemptSuccess AttemptOutcome = "success"
	AttemptFailure AttemptOutcome = "failure"
)

// Attempt is one recorded tier against one disk. Attempts are never mutated
// once appended.
type Attempt struct {
	DiskID  string         `json:"disk_id" yaml:"disk_id"`
	Tier    int            `json:"tier" yaml:"tier"`
	Outcome AttemptOutcome `json:"outcome" yaml:"outcome"`
	Detail  string         `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Outcome is the tagged result of erasing one disk. Exhaustion is expected and
// is reported here rather than as an error.
type Outcome struct {
	Succeeded bool      `json:"succeeded" yaml:"succeeded"`
	Attempts  []Attempt `json:"attempts" yaml:"attempts"`
}

// SucceededAt returns the tier that succeeded, or 0.
func (o Outcome) SucceededAt() int {
	for _, a := range o.Attempts {
		if a.Outcome == AttemptSuccess {
			return a.Tier
		}
	}
	return 0
}
