package models

import "time"

// Station is a coffee washing station (CWS).
type Station struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SiteCollection is a collection point feeding a station.
type SiteCollection struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	StationID int       `json:"cwsId"`
	CreatedAt time.Time `json:"createdAt"`
}
