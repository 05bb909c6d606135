package model

// WeightedAverageRow is a derived reporting row, one per evaluated
// (area, cycle) pair of a classroom. The weighted average is already
// scaled by the pair's Percentage when the row is produced; the
// aggregator only folds rows into per-area totals.
type WeightedAverageRow struct {
	AreaID          uint    `json:"area_id"`
	AreaName        string  `json:"area_name"`
	CycleID         uint    `json:"cycle_id"`
	CycleLabel      string  `json:"cycle_label"`
	WeightedAverage float64 `json:"weighted_average"`
}
