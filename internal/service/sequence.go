package service

import (
	"fleetops/internal/domain"
	"fleetops/internal/geo"
)

// SequenceDeliveries orders a cluster's dropoffs with a nearest-neighbor
// heuristic starting from the vehicle's current location: at each step the
// closest remaining dropoff is visited next. Ties go to the earlier order
// in the remaining list, which keeps the result deterministic. The output
// contains every input order exactly once.
//
// This is a greedy approximation; it makes no global optimality claim.
func SequenceDeliveries(start domain.Location, orders []*domain.Order) []*domain.Order {
	if len(orders) <= 1 {
		return append([]*domain.Order(nil), orders...)
	}

	remaining := append([]*domain.Order(nil), orders...)
	sequenced := make([]*domain.Order, 0, len(orders))
	position := start

	for len(remaining) > 0 {
		best := 0
		bestDist := geo.Distance(position, remaining[0].Dropoff)
		for i := 1; i < len(remaining); i++ {
			// Strict less-than: the first order wins ties.
			if d := geo.Distance(position, remaining[i].Dropoff); d < bestDist {
				best = i
				bestDist = d
			}
		}

		next := remaining[best]
		sequenced = append(sequenced, next)
		position = next.Dropoff
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	return sequenced
}
