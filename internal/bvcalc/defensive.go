package bvcalc

type DefensiveConfig struct {
	TotalArmorPoints     int
	TotalStructurePoints int
	Tonnage              int
	RunMP                int
	JumpMP               int
	Armor                ArmorType
	Structure            StructureType
	Gyro                 GyroType
	Engine               EngineType
	// DefensiveEquipmentBV is the BV of AMS, ECM, probes and similar gear.
	DefensiveEquipmentBV float64
	ExplosivePenalties   float64
}

type DefensiveResult struct {
	ArmorBV              float64 `json:"armor_bv"`
	StructureBV          float64 `json:"structure_bv"`
	GyroBV               float64 `json:"gyro_bv"`
	DefensiveEquipmentBV float64 `json:"defensive_equipment_bv"`
	ExplosivePenalties   float64 `json:"explosive_penalties"`
	TMM                  int     `json:"tmm"`
	DefensiveFactor      float64 `json:"defensive_factor"`
	TotalDefensiveBV     float64 `json:"total_defensive_bv"`
}

// CalculateDefensiveBV computes the defensive battle rating. Nothing is
// rounded here; the aggregate total is rounded once.
func CalculateDefensiveBV(cfg DefensiveConfig) DefensiveResult {
	r := DefensiveResult{
		ArmorBV:              float64(cfg.TotalArmorPoints) * 2.5 * cfg.Armor.Multiplier(),
		StructureBV:          float64(cfg.TotalStructurePoints) * 1.5 * cfg.Structure.Multiplier() * cfg.Engine.Multiplier(),
		GyroBV:               float64(cfg.Tonnage) * cfg.Gyro.Multiplier(),
		DefensiveEquipmentBV: cfg.DefensiveEquipmentBV,
		ExplosivePenalties:   cfg.ExplosivePenalties,
		TMM:                  TMM(max(cfg.RunMP, cfg.JumpMP)),
	}
	r.DefensiveFactor = DefensiveFactor(r.TMM)
	subtotal := r.ArmorBV + r.StructureBV + r.GyroBV + r.DefensiveEquipmentBV - r.ExplosivePenalties
	r.TotalDefensiveBV = subtotal * r.DefensiveFactor
	return r
}
