package domain

import "time"

// ProgressRecord is the persisted/wire shape of UserProgress, shared by the
// HTTP API, the remote store and the in-memory fallback. The id lists are the
// only authoritative state crossing the persistence boundary; money,
// experience and achievement unlocks stay in the local snapshot cache.
// Level id lists are kept ascending by the writer as a convenience invariant.
type ProgressRecord struct {
	UserID            int      `json:"userId"`
	UnlockedLevels    []int    `json:"unlockedLevels"`
	CompletedLevels   []int    `json:"completedLevels"`
	CompletedMissions []string `json:"completedMissions"`
	UnlockedSkills    []string `json:"unlockedSkills"`
	LastUpdated       string   `json:"lastUpdated"` // ISO-8601
}

// NewProgressRecord returns the default record for a user: level 1 unlocked,
// all lists empty, timestamped now.
func NewProgressRecord(userID int) ProgressRecord {
	return ProgressRecord{
		UserID:            userID,
		UnlockedLevels:    []int{1},
		CompletedLevels:   []int{},
		CompletedMissions: []string{},
		UnlockedSkills:    []string{},
		LastUpdated:       time.Now().UTC().Format(time.RFC3339),
	}
}

// ToRecord projects the progress onto the wire shape.
func (p UserProgress) ToRecord() ProgressRecord {
	c := p.Clone()
	return ProgressRecord{
		UserID:            c.UserID,
		UnlockedLevels:    c.UnlockedLevels,
		CompletedLevels:   c.CompletedLevels,
		CompletedMissions: c.CompletedMissions,
		UnlockedSkills:    c.UnlockedSkills,
		LastUpdated:       c.LastUpdated.UTC().Format(time.RFC3339),
	}
}

// ApplyRecord overwrites the id lists from the record. Money and experience
// are left untouched: the record does not carry them.
func (p *UserProgress) ApplyRecord(rec ProgressRecord) {
	p.UserID = rec.UserID
	p.UnlockedLevels = append([]int(nil), rec.UnlockedLevels...)
	p.CompletedLevels = append([]int(nil), rec.CompletedLevels...)
	p.CompletedMissions = append([]string(nil), rec.CompletedMissions...)
	p.UnlockedSkills = append([]string(nil), rec.UnlockedSkills...)
	if ts, err := time.Parse(time.RFC3339, rec.LastUpdated); err == nil {
		p.LastUpdated = ts
	}
	if p.UnlockedLevels == nil {
		p.UnlockedLevels = []int{}
	}
	if p.CompletedLevels == nil {
		p.CompletedLevels = []int{}
	}
	if p.CompletedMissions == nil {
		p.CompletedMissions = []string{}
	}
	if p.UnlockedSkills == nil {
		p.UnlockedSkills = []string{}
	}
}

// Clone returns a deep copy of the record.
func (r ProgressRecord) Clone() ProgressRecord {
	out := r
	out.UnlockedLevels = append([]int(nil), r.UnlockedLevels...)
	out.CompletedLevels = append([]int(nil), r.CompletedLevels...)
	out.CompletedMissions = append([]string(nil), r.CompletedMissions...)
	out.UnlockedSkills = append([]string(nil), r.UnlockedSkills...)
	return out
}

// Touch refreshes the last-updated timestamp.
func (r *ProgressRecord) Touch() {
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
}
