package state

type Status string

const (
	Initiated   Status = "initiated"
	InProgress  Status = "in_progress"
	UnderReview Status = "under_review"
	Completed   Status = "completed"

	// Done is a legacy alias of Completed still present in stored rows.
	Done Status = "done"
)

type Category uint

const (
	NotStarted Category = iota
	InProcess
	Finished
)

var displayLabels = map[Status]string{
	Initiated:   "Not Started",
	InProgress:  "In Progress",
	UnderReview: "Under Review",
	Completed:   "Done",
	Done:        "Done",
}

var ordinals = map[Status]int{
	Initiated:   0,
	InProgress:  1,
	UnderReview: 2,
	Completed:   3,
}

// Normalize maps the legacy alias onto the canonical status name.
func (s Status) Normalize() Status {
	if s == Done {
		return Completed
	}
	return s
}

func (s Status) IsValid() bool {
	_, found := ordinals[s.Normalize()]
	return found
}

// Ordinal returns the position of the status in the fulfillment lifecycle.
// Unknown statuses sort before everything.
func (s Status) Ordinal() int {
	if ordinal, found := ordinals[s.Normalize()]; found {
		return ordinal
	}
	return -1
}

func (s Status) Category() Category {
	switch s.Normalize() {
	case Initiated:
		return NotStarted
	case InProgress, UnderReview:
		return InProcess
	case Completed:
		return Finished
	}
	return NotStarted
}

// DisplayLabel returns the human label of the status. Unrecognized values
// pass through unchanged.
func (s Status) DisplayLabel() string {
	if label, found := displayLabels[s]; found {
		return label
	}
	return string(s)
}

// Aliases lists every stored spelling of the status.
func (s Status) Aliases() []Status {
	if s.Normalize() == Completed {
		return []Status{Completed, Done}
	}
	return []Status{s.Normalize()}
}

// AvailableTransition reports whether moving from one status to another is
// acceptable: both known, strictly forward, skipping stages allowed.
func AvailableTransition(from, to Status) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	return to.Ordinal() > from.Ordinal()
}
