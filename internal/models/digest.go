package models

import "time"

const DateLayout = "2006-01-02"

// DateWindow is the inclusive range of submission dates searched in one run
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w DateWindow) StartString() string {
	return w.Start.Format(DateLayout)
}

func (w DateWindow) EndString() string {
	return w.End.Format(DateLayout)
}

func (w DateWindow) String() string {
	return w.StartString() + " to " + w.EndString()
}
