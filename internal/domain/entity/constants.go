package entity

import "time"

// ServiceTimeMin is the fixed per-stop overhead (minutes) representing
// non-driving activity at each delivery. Model-level constant; never inline
// the literal 5 elsewhere.
const ServiceTimeMin float64 = 5

// DefaultSearchRadiusMeters bounds on-demand graph construction around a
// point outside the preloaded bounding box.
const DefaultSearchRadiusMeters float64 = 5000

// DefaultAvgSpeedKPH is used only when a shortest-path query fails, to
// produce an approximate great-circle-based duration estimate.
const DefaultAvgSpeedKPH float64 = 30

// ServiceTime returns ServiceTimeMin as a time.Duration.
func ServiceTime() time.Duration {
	return time.Duration(ServiceTimeMin * float64(time.Minute))
}
