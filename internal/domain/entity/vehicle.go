package entity

// DefaultPerformanceScore is used when a vehicle record omits performance_score.
const DefaultPerformanceScore = 0.70

// Vehicle is a candidate carrier with its current committed workload.
type Vehicle struct {
	VehicleID        string     `json:"vehicle_id"`
	DriverName       string     `json:"driver_name"`
	Location         Coordinate `json:"location"`
	Capacity         int        `json:"capacity"`
	MaxWeightKg      float64    `json:"max_weight_kg"`
	PerformanceScore float64    `json:"performance_score"`
	CurrentOrders    []Order    `json:"current_orders"`
}

// ClampedPerformanceScore returns PerformanceScore clipped to [0, 1],
// falling back to DefaultPerformanceScore when unset (zero value).
func (v Vehicle) ClampedPerformanceScore() float64 {
	score := v.PerformanceScore
	if score == 0 {
		return DefaultPerformanceScore
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}

	return score
}

// CommittedWeightKg sums the weight of all currently committed orders.
func (v Vehicle) CommittedWeightKg() float64 {
	var total float64
	for _, o := range v.CurrentOrders {
		total += o.WeightKg
	}

	return total
}

// AvailableCapacity returns remaining slot count (can be negative only if
// invariants were already violated upstream; callers should treat <=0 as
// unavailable).
func (v Vehicle) AvailableCapacity() int {
	return v.Capacity - len(v.CurrentOrders)
}

// AvailableWeightKg returns remaining weight budget in kilograms.
func (v Vehicle) AvailableWeightKg() float64 {
	return v.MaxWeightKg - v.CommittedWeightKg()
}

// Available reports whether the vehicle has at least one unit of capacity
// and one kilogram of weight budget remaining.
func (v Vehicle) Available() bool {
	return v.AvailableCapacity() >= 1 && v.AvailableWeightKg() >= 1
}

// CanAccept reports whether the vehicle has enough remaining capacity and
// weight budget to take on an order of the given weight, without regard to
// feasibility of the route (that's the evaluator's job).
func (v Vehicle) CanAccept(weightKg float64) bool {
	return v.AvailableCapacity() >= 1 && v.AvailableWeightKg() >= weightKg
}

// WithOrder returns a copy of the vehicle with order appended to its
// committed orders. Used by the batch dispatcher to advance fleet state
// without mutating the caller's original slice element.
func (v Vehicle) WithOrder(o Order) Vehicle {
	next := v
	next.CurrentOrders = make([]Order, len(v.CurrentOrders)+1)
	copy(next.CurrentOrders, v.CurrentOrders)
	next.CurrentOrders[len(v.CurrentOrders)] = o

	return next
}
