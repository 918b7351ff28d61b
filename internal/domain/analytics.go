package domain

import "time"

type Location struct {
	Country string `json:"country,omitempty" bson:"country,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
}

func (l Location) IsZero() bool {
	return l.Country == "" && l.City == ""
}

// ClickEvent is one successful public resolution of a link.
type ClickEvent struct {
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	IP        string    `json:"ip" bson:"ip"`
	UserAgent string    `json:"userAgent" bson:"userAgent"`
	Referrer  string    `json:"referrer,omitempty" bson:"referrer,omitempty"`
	Device    string    `json:"device,omitempty" bson:"device,omitempty"`
	Location  Location  `json:"location" bson:"location"`
}

// Hit carries the request attributes captured at redirect time, before enrichment.
type Hit struct {
	At          time.Time
	IP          string
	UserAgent   string
	Referrer    string
	CountryHint string
}
