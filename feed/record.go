package feed

import "time"

// Record is one sanitized queue reading.
type Record struct {
	ID        any       `json:"id"`
	TimeAdded time.Time `json:"timeAdded"`
	LineSize  float64   `json:"lineSize"`
	PartySize float64   `json:"partySize"`
	CreatedAt any       `json:"createdAt"`
	UpdatedAt any       `json:"updatedAt"`
}

// AvgPartySize returns PartySize/LineSize, or false when the line is empty.
func (r Record) AvgPartySize() (float64, bool) {
	if r.LineSize <= 0 {
		return 0, false
	}
	return r.PartySize / r.LineSize, true
}
