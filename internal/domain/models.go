package domain

// PlayerRef is one anchor harvested from a listing page. There is no
// identity beyond the URL; the same player may appear on several pages.
type PlayerRef struct {
	Name string
	URL  string
}

// Player is one extracted detail page. Missing lists the fixed page
// elements that were absent; the record is still usable without them.
type Player struct {
	ID      string
	Fields  *Record
	Missing []string
}

// PriceSample is one flattened point of a per-platform price series.
type PriceSample struct {
	PlayerID string
	Platform string
	Date     string // YYYY-MM-DD
	Price    int64
}

// RatedID pairs a player id with its card rating, as read back from the
// aggregated player table. Rating is -1 when the column was not numeric.
type RatedID struct {
	ID     string
	Rating float64
}
