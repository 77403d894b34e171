package domain

// A dispatch vehicle, identified by its licence plate.
type Vehicle struct {
	ID   string
	Name string
}

// The fleet is fixed at two vehicles sharing one depot.
const FleetSize = 2
