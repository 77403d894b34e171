package services

import "lot-dispatch-service/internal/domain"

// Number of assign/recompute rounds. Fixed so outputs stay reproducible.
const PartitionRounds = 10

// PartitionLots splits lots into two spatially compact groups using 2-means.
//
// The two initial references are the farthest-apart pair of lots; each round assigns
// every lot to the nearer reference (ties go to the first) and moves each reference to
// the centroid of its lots. A reference left without lots keeps its previous position.
// Input order is preserved inside each group. Identifiers are assumed distinct.
func PartitionLots(lots []domain.Lot) ([]domain.Lot, []domain.Lot) {
	if len(lots) < 2 {
		return append([]domain.Lot(nil), lots...), []domain.Lot{}
	}

	refs := farthestPair(lots)

	var groups [2][]int
	for round := 0; round < PartitionRounds; round++ {
		groups = [2][]int{}
		for i, l := range lots {
			if l.Coords.Euclidean(refs[0]) <= l.Coords.Euclidean(refs[1]) {
				groups[0] = append(groups[0], i)
			} else {
				groups[1] = append(groups[1], i)
			}
		}

		for g, idx := range groups {
			points := make([]domain.Coordinates, 0, len(idx))
			for _, i := range idx {
				points = append(points, lots[i].Coords)
			}
			// Empty group: keep the previous reference instead of an undefined centroid.
			if c, ok := domain.Centroid(points); ok {
				refs[g] = c
			}
		}
	}

	a := make([]domain.Lot, 0, len(groups[0]))
	for _, i := range groups[0] {
		a = append(a, lots[i])
	}
	b := make([]domain.Lot, 0, len(groups[1]))
	for _, i := range groups[1] {
		b = append(b, lots[i])
	}

	return a, b
}

// farthestPair returns the coordinates of the first pair found with maximum
// Euclidean distance, scanning i < j in input order.
func farthestPair(lots []domain.Lot) [2]domain.Coordinates {
	best := -1.0
	refs := [2]domain.Coordinates{lots[0].Coords, lots[1].Coords}

	for i := 0; i < len(lots); i++ {
		for j := i + 1; j < len(lots); j++ {
			d := lots[i].Coords.Euclidean(lots[j].Coords)
			if d > best {
				best = d
				refs = [2]domain.Coordinates{lots[i].Coords, lots[j].Coords}
			}
		}
	}

	return refs
}
