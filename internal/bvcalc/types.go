package bvcalc

import (
	"fmt"
	"strings"
)

// Location is a BattleMech hit location.
type Location string

const (
	Head        Location = "HD"
	CenterTorso Location = "CT"
	LeftTorso   Location = "LT"
	RightTorso  Location = "RT"
	LeftArm     Location = "LA"
	RightArm    Location = "RA"
	LeftLeg     Location = "LL"
	RightLeg    Location = "RL"
)

// Locations lists every biped location in record-sheet order.
var Locations = []Location{Head, CenterTorso, LeftTorso, RightTorso, LeftArm, RightArm, LeftLeg, RightLeg}

func (l Location) isSideTorso() bool { return l == LeftTorso || l == RightTorso }
func (l Location) isArm() bool       { return l == LeftArm || l == RightArm }

// pairedTorso is the torso an arm's explosion transfers into.
func (l Location) pairedTorso() Location {
	if l == LeftArm {
		return LeftTorso
	}
	return RightTorso
}

// ParseLocation accepts abbreviations and MTF location names. Quad legs
// map onto the arm and leg slots they occupy on the record sheet.
func ParseLocation(s string) (Location, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hd", "h", "head":
		return Head, nil
	case "ct", "center torso", "centre torso":
		return CenterTorso, nil
	case "lt", "left torso":
		return LeftTorso, nil
	case "rt", "right torso":
		return RightTorso, nil
	case "la", "left arm", "fll", "front left leg":
		return LeftArm, nil
	case "ra", "right arm", "frl", "front right leg":
		return RightArm, nil
	case "ll", "left leg", "rll", "rear left leg":
		return LeftLeg, nil
	case "rl", "right leg", "rrl", "rear right leg":
		return RightLeg, nil
	}
	return "", fmt.Errorf("unknown location %q", s)
}

func (l *Location) UnmarshalText(b []byte) error {
	v, err := ParseLocation(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

const unknownType = "Unknown"

// ArmorType is the armor construction of a unit.
type ArmorType int

const (
	ArmorStandard ArmorType = iota
	ArmorFerroFibrous
	ArmorLightFerroFibrous
	ArmorHeavyFerroFibrous
	ArmorStealth
	ArmorReactive
	ArmorReflective
	ArmorHardened
	ArmorIndustrial
	ArmorHeavyIndustrial
	ArmorCommercial
	ArmorPrimitive
)

var armorTypes = [...]struct {
	name string
	mult float64
}{
	ArmorStandard:          {"Standard", 1.0},
	ArmorFerroFibrous:      {"Ferro-Fibrous", 1.0},
	ArmorLightFerroFibrous: {"Light Ferro-Fibrous", 1.0},
	ArmorHeavyFerroFibrous: {"Heavy Ferro-Fibrous", 1.0},
	ArmorStealth:           {"Stealth", 1.0},
	ArmorReactive:          {"Reactive", 1.5},
	ArmorReflective:        {"Reflective", 1.0},
	ArmorHardened:          {"Hardened", 2.0},
	ArmorIndustrial:        {"Industrial", 1.0},
	ArmorHeavyIndustrial:   {"Heavy Industrial", 1.0},
	ArmorCommercial:        {"Commercial", 0.5},
	ArmorPrimitive:         {"Primitive", 1.0},
}

func (a ArmorType) known() bool { return a >= 0 && int(a) < len(armorTypes) }

// Multiplier is 1 for an out-of-range value.
func (a ArmorType) Multiplier() float64 {
	if !a.known() {
		return 1.0
	}
	return armorTypes[a].mult
}

func (a ArmorType) String() string {
	if !a.known() {
		return unknownType
	}
	return armorTypes[a].name
}

// ParseArmorType reads MTF spellings such as "Ferro-Fibrous(Clan)" or
// "Standard(Inner Sphere)"; the tech-base suffix does not affect BV.
func ParseArmorType(s string) (ArmorType, error) {
	k := typeKey(s)
	k = strings.TrimPrefix(k, "is")
	k = strings.TrimPrefix(k, "clan")
	switch {
	case k == "" || strings.HasPrefix(k, "standard"):
		return ArmorStandard, nil
	case strings.HasPrefix(k, "lightferro"):
		return ArmorLightFerroFibrous, nil
	case strings.HasPrefix(k, "heavyferro"):
		return ArmorHeavyFerroFibrous, nil
	case strings.HasPrefix(k, "ferro"):
		return ArmorFerroFibrous, nil
	case strings.HasPrefix(k, "stealth"):
		return ArmorStealth, nil
	case strings.HasPrefix(k, "reactive"):
		return ArmorReactive, nil
	case strings.HasPrefix(k, "reflective"), strings.HasPrefix(k, "laserreflective"):
		return ArmorReflective, nil
	case strings.HasPrefix(k, "hardened"):
		return ArmorHardened, nil
	case strings.HasPrefix(k, "heavyindustrial"):
		return ArmorHeavyIndustrial, nil
	case strings.HasPrefix(k, "industrial"):
		return ArmorIndustrial, nil
	case strings.HasPrefix(k, "commercial"):
		return ArmorCommercial, nil
	case strings.HasPrefix(k, "primitive"):
		return ArmorPrimitive, nil
	}
	return ArmorStandard, fmt.Errorf("unknown armor type %q", s)
}

func (a *ArmorType) UnmarshalText(b []byte) error {
	v, err := ParseArmorType(string(b))
	*a = v
	return err
}

func (a ArmorType) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// StructureType is the internal structure construction of a unit.
type StructureType int

const (
	StructureStandard StructureType = iota
	StructureEndoSteel
	StructureEndoComposite
	StructureComposite
	StructureIndustrial
	StructureReinforced
)

var structureTypes = [...]struct {
	name string
	mult float64
}{
	StructureStandard:      {"Standard", 1.0},
	StructureEndoSteel:     {"Endo Steel", 1.0},
	StructureEndoComposite: {"Endo-Composite", 1.0},
	StructureComposite:     {"Composite", 0.5},
	StructureIndustrial:    {"Industrial", 0.5},
	StructureReinforced:    {"Reinforced", 2.0},
}

func (s StructureType) known() bool { return s >= 0 && int(s) < len(structureTypes) }

func (s StructureType) Multiplier() float64 {
	if !s.known() {
		return 1.0
	}
	return structureTypes[s].mult
}

func (s StructureType) String() string {
	if !s.known() {
		return unknownType
	}
	return structureTypes[s].name
}

func ParseStructureType(s string) (StructureType, error) {
	k := typeKey(s)
	k = strings.TrimPrefix(k, "is")
	k = strings.TrimPrefix(k, "clan")
	switch {
	case k == "" || strings.HasPrefix(k, "standard"):
		return StructureStandard, nil
	case strings.HasPrefix(k, "endocomposite"):
		return StructureEndoComposite, nil
	case strings.HasPrefix(k, "endo"):
		return StructureEndoSteel, nil
	case strings.HasPrefix(k, "composite"):
		return StructureComposite, nil
	case strings.HasPrefix(k, "industrial"):
		return StructureIndustrial, nil
	case strings.HasPrefix(k, "reinforced"):
		return StructureReinforced, nil
	}
	return StructureStandard, fmt.Errorf("unknown structure type %q", s)
}

func (s *StructureType) UnmarshalText(b []byte) error {
	v, err := ParseStructureType(string(b))
	*s = v
	return err
}

func (s StructureType) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// GyroType is the gyro construction of a unit.
type GyroType int

const (
	GyroStandard GyroType = iota
	GyroCompact
	GyroXL
	GyroHeavyDuty
)

var gyroTypes = [...]struct {
	name string
	mult float64
}{
	GyroStandard:  {"Standard", 0.5},
	GyroCompact:   {"Compact", 0.5},
	GyroXL:        {"XL", 0.5},
	GyroHeavyDuty: {"Heavy-Duty", 1.0},
}

func (g GyroType) known() bool { return g >= 0 && int(g) < len(gyroTypes) }

// Multiplier is applied per ton of unit weight. Out-of-range values use
// the standard gyro's.
func (g GyroType) Multiplier() float64 {
	if !g.known() {
		return gyroTypes[GyroStandard].mult
	}
	return gyroTypes[g].mult
}

func (g GyroType) String() string {
	if !g.known() {
		return unknownType
	}
	return gyroTypes[g].name
}

func ParseGyroType(s string) (GyroType, error) {
	k := strings.TrimSuffix(typeKey(s), "gyro")
	switch k {
	case "", "standard":
		return GyroStandard, nil
	case "compact":
		return GyroCompact, nil
	case "xl", "extralight":
		return GyroXL, nil
	case "heavyduty":
		return GyroHeavyDuty, nil
	}
	return GyroStandard, fmt.Errorf("unknown gyro type %q", s)
}

func (g *GyroType) UnmarshalText(b []byte) error {
	v, err := ParseGyroType(string(b))
	*g = v
	return err
}

func (g GyroType) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// EngineType is the engine construction of a unit.
type EngineType int

const (
	EngineStandard EngineType = iota
	EngineICE
	EngineFuelCell
	EngineFission
	EngineCompact
	EngineLight
	EngineXL
	EngineClanXL
	EngineXXL
	EngineClanXXL
)

var engineTypes = [...]struct {
	name      string
	mult      float64
	sideSlots int
}{
	EngineStandard: {"Fusion", 1.0, 0},
	EngineICE:      {"ICE", 1.0, 0},
	EngineFuelCell: {"Fuel Cell", 1.0, 0},
	EngineFission:  {"Fission", 1.0, 0},
	EngineCompact:  {"Compact", 1.0, 0},
	EngineLight:    {"Light", 0.75, 2},
	EngineXL:       {"XL", 0.75, 3},
	EngineClanXL:   {"XL (Clan)", 0.75, 2},
	EngineXXL:      {"XXL", 0.5, 6},
	EngineClanXXL:  {"XXL (Clan)", 0.5, 4},
}

func (e EngineType) known() bool { return e >= 0 && int(e) < len(engineTypes) }

// Multiplier applies to the structure term of defensive BV.
func (e EngineType) Multiplier() float64 {
	if !e.known() {
		return 1.0
	}
	return engineTypes[e].mult
}

func (e EngineType) String() string {
	if !e.known() {
		return unknownType
	}
	return engineTypes[e].name
}

// SideTorsoSlots is the number of critical slots the engine occupies in
// each side torso.
func (e EngineType) SideTorsoSlots() int {
	if !e.known() {
		return 0
	}
	return engineTypes[e].sideSlots
}

// ParseEngineType reads MTF engine descriptions such as
// "XL Engine(Clan)", "Light Fusion Engine" or "XXL Engine(IS)".
func ParseEngineType(s string) (EngineType, error) {
	k := typeKey(s)
	clan := strings.Contains(k, "clan")
	switch {
	case strings.Contains(k, "xxl"):
		if clan {
			return EngineClanXXL, nil
		}
		return EngineXXL, nil
	case strings.Contains(k, "xl"):
		if clan {
			return EngineClanXL, nil
		}
		return EngineXL, nil
	case strings.Contains(k, "light"):
		return EngineLight, nil
	case strings.Contains(k, "compact"):
		return EngineCompact, nil
	case strings.Contains(k, "ice"), strings.Contains(k, "internalcombustion"):
		return EngineICE, nil
	case strings.Contains(k, "fuelcell"):
		return EngineFuelCell, nil
	case strings.Contains(k, "fission"):
		return EngineFission, nil
	case k == "", strings.Contains(k, "fusion"), strings.Contains(k, "standard"), k == "engine", k == "engineis":
		return EngineStandard, nil
	}
	return EngineStandard, fmt.Errorf("unknown engine type %q", s)
}

func (e *EngineType) UnmarshalText(b []byte) error {
	v, err := ParseEngineType(string(b))
	*e = v
	return err
}

func (e EngineType) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// typeKey lowercases s and drops spaces, hyphens, parentheses and the
// "inner sphere" qualifier.
func typeKey(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "inner sphere", "")
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
