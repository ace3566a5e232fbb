package model

// HafasResponse is the portion of the HAFAS departures payload this system
// reads. The API nulls out fields freely, so anything optional is a pointer;
// records missing a direction or a departure time are skipped downstream.
type HafasResponse struct {
	Departures []HafasDeparture `json:"departures"`
}

type HafasDeparture struct {
	Line      HafasLine `json:"line"`
	Direction *string   `json:"direction"`
	When      *string   `json:"when"`
	Platform  *string   `json:"platform"`
	Delay     *int      `json:"delay"`
}

type HafasLine struct {
	Name string `json:"name"`
}
