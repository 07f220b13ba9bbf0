/**
 * @description
 * Consumable supply levels for the receipt printer. Levels live on a 0-100
 * scale and are classified into three bands that drive customer warnings
 * and the terminal's out-of-service state.
 */

package domain

// SupplyCapacity is the level of a freshly refilled consumable.
const SupplyCapacity = 100

// SupplyBand classifies the printer supply state.
type SupplyBand string

const (
	SupplyHealthy  SupplyBand = "healthy"
	SupplyLow      SupplyBand = "low"
	SupplyDepleted SupplyBand = "depleted"
)

// Consumables holds the printer's paper and ink levels.
type Consumables struct {
	Paper int `json:"paper"`
	Ink   int `json:"ink"`
}

// Depleted reports whether either supply is exhausted. One empty supply is
// enough to stop receipts, and with them all cash operations.
func (c Consumables) Depleted() bool {
	return c.Paper <= 0 || c.Ink <= 0
}

// Band classifies the worse of the two supplies. Depleted wins over low,
// low over healthy; a supply is low when it is at or below lowThreshold.
func (c Consumables) Band(lowThreshold int) SupplyBand {
	switch {
	case c.Depleted():
		return SupplyDepleted
	case c.Paper <= lowThreshold || c.Ink <= lowThreshold:
		return SupplyLow
	default:
		return SupplyHealthy
	}
}

// Consume applies one print's fixed costs and returns the new levels,
// floored at zero.
func (c Consumables) Consume(paperCost, inkCost int) Consumables {
	next := Consumables{Paper: c.Paper - paperCost, Ink: c.Ink - inkCost}
	if next.Paper < 0 {
		next.Paper = 0
	}
	if next.Ink < 0 {
		next.Ink = 0
	}
	return next
}

// ClampLevel forces a level into the valid [0, SupplyCapacity] range.
func ClampLevel(v int) int {
	if v < 0 {
		return 0
	}
	if v > SupplyCapacity {
		return SupplyCapacity
	}
	return v
}
