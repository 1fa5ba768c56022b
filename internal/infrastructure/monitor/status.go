package monitor

import "time"

type Status struct {
	Dependencies map[string]bool `json:"dependencies"`
	LastCheck    time.Time       `json:"last_check"`
}

// Healthy reports whether every dependency passed its last check.
func (s Status) Healthy() bool {
	if len(s.Dependencies) == 0 {
		return false
	}
	for _, ok := range s.Dependencies {
		if !ok {
			return false
		}
	}
	return true
}
