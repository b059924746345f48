package model

import "time"

// SearchCriteria is the per-session search form state shared between views.
type SearchCriteria struct {
	Mode      string    `json:"mode" validate:"omitempty,oneof=flight train bus"`
	From      string    `json:"from,omitempty" validate:"omitempty,max=80"`
	To        string    `json:"to,omitempty" validate:"omitempty,max=80"`
	Date      string    `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	FareClass string    `json:"fare_class,omitempty" validate:"omitempty,max=40"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Apply merges the non-empty fields of next into c. Changing the transport
// mode first drops the route, date and class carried over from c.
func (c SearchCriteria) Apply(next SearchCriteria) SearchCriteria {
	out := c
	if next.Mode != "" && next.Mode != c.Mode {
		out = SearchCriteria{Mode: next.Mode}
	}
	if next.From != "" {
		out.From = next.From
	}
	if next.To != "" {
		out.To = next.To
	}
	if next.Date != "" {
		out.Date = next.Date
	}
	if next.FareClass != "" {
		out.FareClass = next.FareClass
	}
	return out
}
