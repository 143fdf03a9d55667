package bvcalc

import "sort"

const (
	// baselineMovementHeat is the running heat assumed by the heat
	// efficiency threshold.
	baselineMovementHeat = 2

	targetingComputerBonus = 1.25
	rearArcFactor          = 0.5
	// heatPenaltyFactor applies only to weapons flagged HeatPenalty that
	// fall past the threshold.
	heatPenaltyFactor = 0.5
	tsmWeightFactor   = 1.5
)

// OffensiveWeapon is a weapon with its resolved standalone BV and heat.
type OffensiveWeapon struct {
	ID          string   `json:"id"`
	BattleValue float64  `json:"battle_value"`
	Heat        int      `json:"heat"`
	RearMounted bool     `json:"rear_mounted,omitempty"`
	DirectFire  bool     `json:"direct_fire,omitempty"`
	Location    Location `json:"location,omitempty"`
	// HeatPenalty marks a weapon that counts half when it fires past the
	// heat threshold. Unflagged weapons always count in full.
	HeatPenalty bool `json:"heat_penalty,omitempty"`
}

type OffensiveConfig struct {
	Weapons         []OffensiveWeapon
	Tonnage         int
	WalkMP          int
	RunMP           int
	JumpMP          int
	HeatDissipation int
	// AmmoBV is already capped per weapon type.
	AmmoBV            float64
	TargetingComputer bool
	TSM               bool
}

// WeaponValue records how one weapon contributed to the offensive rating.
type WeaponValue struct {
	ID             string  `json:"id"`
	BaseBV         float64 `json:"base_bv"`
	ModifiedBV     float64 `json:"modified_bv"`
	Heat           int     `json:"heat"`
	CumulativeHeat int     `json:"cumulative_heat"`
	Rear           bool    `json:"rear,omitempty"`
	// BeyondThreshold is set once the heat accumulated before this weapon
	// has reached the threshold.
	BeyondThreshold bool    `json:"beyond_threshold,omitempty"`
	HeatPenalty     bool    `json:"heat_penalty,omitempty"`
	Halved          bool    `json:"halved,omitempty"`
	Value           float64 `json:"value"`
}

type OffensiveResult struct {
	Weapons          []WeaponValue `json:"weapons"`
	WeaponBV         float64       `json:"weapon_bv"`
	AmmoBV           float64       `json:"ammo_bv"`
	WeightBonus      float64       `json:"weight_bonus"`
	HeatThreshold    int           `json:"heat_threshold"`
	SpeedFactor      float64       `json:"speed_factor"`
	TotalOffensiveBV float64       `json:"total_offensive_bv"`
}

// HeatThreshold is the cumulative weapon heat a unit can carry at full
// value.
func HeatThreshold(heatDissipation int) int {
	return 6 + heatDissipation - baselineMovementHeat
}

// CalculateOffensiveBVWithHeatTracking computes the offensive battle
// rating. Weapons are ordered by standalone BV, highest first, with ties in
// input order, and heat is accumulated along that order. A weapon is past
// the threshold when the heat accumulated before it has reached
// HeatThreshold, so the weapon that crosses it is not. Past the threshold a
// weapon still counts in full unless it is flagged HeatPenalty.
func CalculateOffensiveBVWithHeatTracking(cfg OffensiveConfig) OffensiveResult {
	r := OffensiveResult{
		Weapons:       modifiedWeapons(cfg),
		AmmoBV:        cfg.AmmoBV,
		WeightBonus:   weightBonus(cfg),
		HeatThreshold: HeatThreshold(cfg.HeatDissipation),
		SpeedFactor:   SpeedFactor(cfg.RunMP, cfg.JumpMP),
	}
	sort.SliceStable(r.Weapons, func(i, j int) bool {
		return r.Weapons[i].BaseBV > r.Weapons[j].BaseBV
	})

	heat := 0
	for i := range r.Weapons {
		w := &r.Weapons[i]
		w.Value = w.ModifiedBV
		if heat >= r.HeatThreshold {
			w.BeyondThreshold = true
			if w.HeatPenalty {
				w.Halved = true
				w.Value *= heatPenaltyFactor
			}
		}
		heat += w.Heat
		w.CumulativeHeat = heat
		r.WeaponBV += w.Value
	}
	r.TotalOffensiveBV = (r.WeaponBV + r.AmmoBV + r.WeightBonus) * r.SpeedFactor
	return r
}

// CalculateOffensiveBV is the heat-unaware rating: every weapon counts at
// its modified BV and the speed factor is capped.
func CalculateOffensiveBV(cfg OffensiveConfig) OffensiveResult {
	r := OffensiveResult{
		Weapons:       modifiedWeapons(cfg),
		AmmoBV:        cfg.AmmoBV,
		WeightBonus:   weightBonus(cfg),
		HeatThreshold: HeatThreshold(cfg.HeatDissipation),
		SpeedFactor:   LegacySpeedFactor(cfg.RunMP, cfg.JumpMP),
	}
	heat := 0
	for i := range r.Weapons {
		w := &r.Weapons[i]
		w.Value = w.ModifiedBV
		heat += w.Heat
		w.CumulativeHeat = heat
		r.WeaponBV += w.Value
	}
	r.TotalOffensiveBV = (r.WeaponBV + r.AmmoBV + r.WeightBonus) * r.SpeedFactor
	return r
}

func weightBonus(cfg OffensiveConfig) float64 {
	if cfg.TSM {
		return float64(cfg.Tonnage) * tsmWeightFactor
	}
	return float64(cfg.Tonnage)
}

// modifiedWeapons applies the targeting-computer bonus and the rear-arc
// rule. Rear-mounted weapons count half unless their total BV exceeds the
// front arc's, in which case the arcs trade places.
func modifiedWeapons(cfg OffensiveConfig) []WeaponValue {
	out := make([]WeaponValue, len(cfg.Weapons))
	var front, rear float64
	for i, w := range cfg.Weapons {
		bv := max(w.BattleValue, 0)
		mod := bv
		if cfg.TargetingComputer && w.DirectFire {
			mod *= targetingComputerBonus
		}
		out[i] = WeaponValue{
			ID:          w.ID,
			BaseBV:      bv,
			ModifiedBV:  mod,
			Heat:        max(w.Heat, 0),
			Rear:        w.RearMounted,
			HeatPenalty: w.HeatPenalty,
		}
		if w.RearMounted {
			rear += mod
		} else {
			front += mod
		}
	}
	halveRear := rear <= front
	for i := range out {
		if out[i].Rear == halveRear {
			out[i].ModifiedBV *= rearArcFactor
		}
	}
	return out
}
