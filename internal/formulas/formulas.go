// Package formulas computes weight, critical slots and cost for equipment
// whose size depends on the unit carrying it.
package formulas

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/JustinWhittecar/bvcore/internal/catalog"
)

var ErrUnknownEquipment = errors.New("no formula for equipment")

// Params describes the unit the equipment is mounted on.
type Params struct {
	Tonnage float64 `json:"tonnage"`
	// EngineWeight is only used by the supercharger.
	EngineWeight float64 `json:"engine_weight,omitempty"`
	// DirectFireTonnage is the weight of direct-fire weapons, for the
	// targeting computer.
	DirectFireTonnage float64          `json:"direct_fire_tonnage,omitempty"`
	TechBase          catalog.TechBase `json:"tech_base"`
}

type Result struct {
	ID            string  `json:"id"`
	Weight        float64 `json:"weight"`
	CriticalSlots int     `json:"critical_slots"`
	Cost          float64 `json:"cost"`
}

type formula func(p Params) Result

var formulas = map[string]formula{
	"targeting-computer": targetingComputer,
	"masc":               masc,
	"supercharger":       supercharger,
	"tsm":                tsm,
	"partial-wing":       partialWing,
}

// IDs lists the equipment ids with a formula.
func IDs() []string {
	ids := make([]string, 0, len(formulas))
	for id := range formulas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Calculate evaluates the formula for id. A "clan-" prefix selects the
// Clan variant regardless of p.TechBase.
func Calculate(id string, p Params) (Result, error) {
	base, clan := strings.CutPrefix(id, "clan-")
	if clan {
		p.TechBase = catalog.Clan
	}
	f, ok := formulas[base]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownEquipment, id)
	}
	r := f(p)
	r.ID = id
	return r, nil
}

func targetingComputer(p Params) Result {
	div := 4.0
	if p.TechBase == catalog.Clan {
		div = 5
	}
	w := math.Ceil(p.DirectFireTonnage / div)
	return Result{Weight: w, CriticalSlots: int(w), Cost: w * 10000}
}

func masc(p Params) Result {
	div := 20.0
	if p.TechBase == catalog.Clan {
		div = 25
	}
	w := math.Round(p.Tonnage / div)
	return Result{Weight: w, CriticalSlots: int(w), Cost: p.Tonnage * 1000}
}

func supercharger(p Params) Result {
	return Result{
		Weight:        halfTon(p.EngineWeight / 10),
		CriticalSlots: 1,
		Cost:          p.EngineWeight * 10000,
	}
}

func tsm(p Params) Result {
	return Result{CriticalSlots: 6, Cost: p.Tonnage * 16000}
}

func partialWing(p Params) Result {
	pct := 0.07
	if p.TechBase == catalog.Clan {
		pct = 0.05
	}
	w := halfTon(p.Tonnage * pct)
	return Result{Weight: w, CriticalSlots: 6, Cost: w * 50000}
}

// halfTon rounds up to the next half ton. The tolerance absorbs float
// error in percentage products such as 50*0.07.
func halfTon(w float64) float64 {
	return math.Ceil(w*2-1e-9) / 2
}
