package domain

// A named delivery destination with fixed coordinates.
// Lots are reference data: loaded once from the lot repository and never mutated.
type Lot struct {
	ID     string
	Coords Coordinates
}

// LotIDs returns the identifiers of lots in order.
func LotIDs(lots []Lot) []string {
	ids := make([]string, 0, len(lots))
	for _, l := range lots {
		ids = append(ids, l.ID)
	}
	return ids
}
