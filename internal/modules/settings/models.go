package settings

// Setting keys.
const (
	KeyWeightScale     = "budget_weight_scale"
	KeySolverTimeLimit = "solver_time_limit_seconds"
	KeySolverMaxNodes  = "solver_max_nodes"
	KeySavingsFloorPct = "savings_floor_pct"
	KeyNeedsCeilingPct = "needs_ceiling_pct"
	KeyWantsCeilingPct = "wants_ceiling_pct"
)

// Definition describes the accepted values of one setting.
type Definition struct {
	Default     float64
	Min         float64
	Max         float64
	Integer     bool
	Description string
}

// Definitions lists every known setting. Keys outside this table are rejected.
var Definitions = map[string]Definition{
	KeyWeightScale: {
		Default:     1000,
		Min:         1,
		Max:         100000,
		Integer:     true,
		Description: "Scale of the inverse-allocation weights: weight = round(scale / (current + 1)), at least 1.",
	},
	KeySolverTimeLimit: {
		Default:     10,
		Min:         0,
		Max:         3600,
		Description: "Wall-clock limit of one optimization in seconds. 0 disables the limit.",
	},
	KeySolverMaxNodes: {
		Default:     0,
		Min:         0,
		Max:         1e12,
		Integer:     true,
		Description: "Search node limit of one optimization. 0 disables the limit.",
	},
	KeySavingsFloorPct: {
		Default:     20,
		Min:         0,
		Max:         100,
		Integer:     true,
		Description: "Minimum share of income that must go to monthly_savings, in percent.",
	},
	KeyNeedsCeilingPct: {
		Default:     50,
		Min:         0,
		Max:         100,
		Integer:     true,
		Description: "Maximum share of income that total_needs may take, in percent.",
	},
	KeyWantsCeilingPct: {
		Default:     30,
		Min:         0,
		Max:         100,
		Integer:     true,
		Description: "Maximum share of income that total_wants may take, in percent.",
	},
}

// SettingUpdate represents a setting value update request
type SettingUpdate struct {
	Value interface{} `json:"value"`
}

// SettingView is one setting as reported by the API.
type SettingView struct {
	Key         string  `json:"key"`
	Value       float64 `json:"value"`
	Default     float64 `json:"default"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Stored      bool    `json:"stored"`
	Description string  `json:"description"`
}
