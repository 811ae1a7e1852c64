// Package diagnostics derives the advisory performance bars and running
// total shown next to a build. Scores carry no gating logic.
package diagnostics

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/hwdepot/rigbuilder/category"
	"github.com/hwdepot/rigbuilder/internal/build"
)

// Health is the tri-state stability indicator.
type Health string

const (
	HealthNone    Health = "none"
	HealthStable  Health = "stable"
	HealthNominal Health = "nominal"
)

// Fixed weighting policy.
const (
	processorShare = 0.70
	boardShare     = 0.15
	coolerShare    = 0.15

	graphicsShare = 0.95
	psuShare      = 0.05

	memoryShare      = 0.80
	multiModuleBonus = 20.0
	powerSupplyBase  = 60.0
	coolerDivisor    = 5.0
	fansDivisor      = 10.0
	nominalThreshold = 80.0
	maxScore         = 100.0
)

// Snapshot is recomputed from a build on every change and never stored.
type Snapshot struct {
	ProcessingOutput int             `json:"processingOutput"`
	GraphicalLoad    int             `json:"graphicalLoad"`
	DataRegistry     int             `json:"dataRegistry"`
	EngineHealth     Health          `json:"engineHealth"`
	StabilityScore   int             `json:"stabilityScore"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
}

// Compute derives the snapshot for state.
func Compute(state build.State) Snapshot {
	processing := processorShare*weight(state, category.Processor) +
		boardShare*weight(state, category.Motherboard) +
		coolerShare*weight(state, category.Cooler)

	graphical := graphicsShare*weight(state, category.Graphics) +
		psuShare*weight(state, category.PowerSupply)

	data := memoryShare * weight(state, category.Memory)
	if state.Selection(category.Memory).Quantity() > 1 {
		data += multiModuleBonus
	}
	data = math.Min(maxScore, data)

	base := 0.0
	if !state.Selection(category.PowerSupply).IsEmpty() {
		base = powerSupplyBase
	}
	stability := math.Min(maxScore, base+weight(state, category.Cooler)/coolerDivisor+weight(state, category.Fans)/fansDivisor)

	return Snapshot{
		ProcessingOutput: round(processing),
		GraphicalLoad:    round(graphical),
		DataRegistry:     round(data),
		EngineHealth:     health(stability),
		StabilityScore:   round(stability),
		TotalPrice:       state.Total(),
	}
}

func health(stability float64) Health {
	switch {
	case stability == 0:
		return HealthNone
	case stability > nominalThreshold:
		return HealthNominal
	default:
		return HealthStable
	}
}

// weight is the performance weight of the single item held by cat, or 0.
func weight(state build.State, cat category.Category) float64 {
	item, ok := state.Selection(cat).Item()
	if !ok {
		return 0
	}
	return float64(item.PerformanceWeight)
}

func round(v float64) int {
	return int(math.Round(v))
}
