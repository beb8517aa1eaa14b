package domain

// StepState classifies a report line.
type StepState string

const (
	StepDone    StepState = "done"
	StepPending StepState = "pending"
	StepTarget  StepState = "target"
	StepBlocked StepState = "blocked"
)

// ReportStep is one line of the path-to-target report.
type ReportStep struct {
	Status   string    `json:"status"`
	State    StepState `json:"state"`
	Platform string    `json:"platform,omitempty"`
	Entity   string    `json:"entity,omitempty"`
	Action   string    `json:"action,omitempty"`
	Event    string    `json:"event,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// PathReport is the user-visible summary of one resolution attempt.
type PathReport struct {
	Target  string       `json:"target"`
	Current string       `json:"current"`
	Ready   bool         `json:"ready"`
	Steps   []ReportStep `json:"steps"`
	Missing []Mismatch   `json:"missing,omitempty"`
}

// BuildReport derives a report from a resolved chain.
func BuildReport(target, current string, chain Chain, missing []Mismatch) *PathReport {
	rep := &PathReport{
		Target:  target,
		Current: current,
		Ready:   chain.Ready(),
		Missing: missing,
	}
	for _, s := range chain {
		rs := ReportStep{
			Status:   s.Status,
			Platform: s.Platform,
			Entity:   s.Entity,
			Action:   s.Action,
			Event:    s.Event,
		}
		switch {
		case s.LoadError != "" && !s.Complete:
			rs.State = StepBlocked
			rs.Detail = s.LoadError
		case s.Complete:
			rs.State = StepDone
		case s.IsTarget:
			rs.State = StepTarget
		default:
			rs.State = StepPending
		}
		rep.Steps = append(rep.Steps, rs)
	}
	return rep
}
