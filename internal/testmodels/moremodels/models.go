// Package moremodels holds fixtures living outside the testmodels package,
// used to exercise cross-package type discovery.
package moremodels

// Venue is the place a game happens at.
type Venue struct {
	// City is the venue's city.
	City string `json:"city"`
}

// Medal is a prize awarded at a venue.
// It implements testmodels.Prize without importing it.
type Medal struct {
	Place int `json:"place"`
}

func (m Medal) Worth() float64 { return float64(m.Place) }
