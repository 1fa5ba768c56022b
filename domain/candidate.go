package domain

import "time"

// CandidateList holds generated task titles that have not been saved yet.
type CandidateList struct {
	Topic       string    `json:"topic"`
	Tasks       []string  `json:"tasks"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Contains reports whether title is still a pending candidate.
func (c *CandidateList) Contains(title string) bool {
	if c == nil {
		return false
	}
	for _, t := range c.Tasks {
		if t == title {
			return true
		}
	}
	return false
}

// Without returns a copy of the list with one occurrence of every title removed.
func (c *CandidateList) Without(titles []string) *CandidateList {
	if c == nil {
		return nil
	}
	pending := make(map[string]int, len(titles))
	for _, t := range titles {
		pending[t]++
	}
	kept := make([]string, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		if pending[t] > 0 {
			pending[t]--
			continue
		}
		kept = append(kept, t)
	}
	return &CandidateList{Topic: c.Topic, Tasks: kept, GeneratedAt: c.GeneratedAt}
}

func (c *CandidateList) IsEmpty() bool {
	return c == nil || len(c.Tasks) == 0
}
