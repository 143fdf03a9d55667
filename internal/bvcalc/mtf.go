package bvcalc

import (
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/JustinWhittecar/bvcore/internal/catalog"
	"github.com/JustinWhittecar/bvcore/internal/equipment"
	"github.com/JustinWhittecar/bvcore/internal/ingestion"
)

// mtfArmorKeys maps MTF armor keys onto locations. Rear torso armor adds
// to the front location.
var mtfArmorKeys = map[string]Location{
	"HD": Head, "CT": CenterTorso, "LT": LeftTorso, "RT": RightTorso,
	"LA": LeftArm, "RA": RightArm, "LL": LeftLeg, "RL": RightLeg,
	"FLL": LeftArm, "FRL": RightArm, "RLL": LeftLeg, "RRL": RightLeg,
	"RTC": CenterTorso, "RTL": LeftTorso, "RTR": RightTorso,
}

// InputFromMTF builds an Input from a parsed .mtf file. Critical-slot
// names are resolved to group multi-slot items and to find ammo, CASE and
// targeting computers. Unknown construction types fall back to standard
// and are reported in the returned error; the Input is usable either way.
func (c *Calculator) InputFromMTF(m *ingestion.MTFData) (Input, error) {
	in := Input{
		Name:         m.FullName(),
		Tonnage:      m.Mass,
		Armor:        map[Location]int{},
		WalkMP:       m.WalkMP,
		JumpMP:       m.JumpMP,
		Quad:         m.IsQuad(),
		SmallCockpit: strings.Contains(strings.ToLower(m.Cockpit), "small"),
		TSM:          isTSM(m.Myomer),
	}

	var err, e error
	in.ArmorType, e = ParseArmorType(m.ArmorType)
	err = multierr.Append(err, e)
	in.StructureType, e = ParseStructureType(m.Structure)
	err = multierr.Append(err, e)
	in.GyroType, e = ParseGyroType(m.Gyro)
	err = multierr.Append(err, e)
	in.EngineType, e = ParseEngineType(m.EngineType)
	err = multierr.Append(err, e)

	for key, pts := range m.ArmorValues {
		if loc, ok := mtfArmorKeys[key]; ok {
			in.Armor[loc] += pts
		}
	}

	in.HeatDissipation = m.HeatSinkCount
	switch equipment.HeatSinkID(m.HeatSinkType) {
	case equipment.DoubleHeatSink, equipment.ClanDoubleHeatSink, equipment.LaserHeatSink:
		in.HeatDissipation *= 2
	}

	listed := map[string]bool{}
	for _, w := range m.Weapons {
		name, _ := splitWeaponCount(w.Name)
		listed[c.resolver.Resolve(name).ID] = true
	}
	crits := c.scanCriticals(m, listed)
	in.CASE = crits.caseLocs
	in.CASEII = crits.caseIILocs
	in.Ammo = crits.ammo
	in.Explosive = crits.explosive
	in.Equipment = crits.equipment
	in.TargetingComputer = crits.tc
	in.MASC = crits.masc
	in.TSM = in.TSM || crits.tsm

	if m.IsClan() {
		// Clan units carry CASE in every side torso and arm.
		for _, loc := range []Location{LeftTorso, RightTorso, LeftArm, RightArm} {
			if !containsLocation(in.CASE, loc) {
				in.CASE = append(in.CASE, loc)
			}
		}
	}

	frontAssigned := map[critKey]int{}
	for _, w := range m.Weapons {
		name, count := splitWeaponCount(w.Name)
		locName, rearTagged := strings.CutSuffix(strings.TrimSpace(w.Location), "(R)")
		loc, _ := ParseLocation(locName)
		id := c.resolver.Resolve(name).ID

		for range count {
			k := critKey{loc, id}
			rear := rearTagged
			// Weapons with rear crits in the location fill the front
			// mounts first.
			if !rear && crits.rear[k] > 0 && frontAssigned[k] >= crits.front[k] {
				rear = true
			}
			if !rear {
				frontAssigned[k]++
			}
			in.Weapons = append(in.Weapons, WeaponEntry{ID: name, RearMounted: rear, Location: loc})
		}
	}
	return in, err
}

type critKey struct {
	loc Location
	id  string
}

type critScan struct {
	caseLocs   []Location
	caseIILocs []Location
	ammo       []EquipmentEntry
	explosive  []EquipmentEntry
	equipment  []EquipmentEntry
	// front and rear count mounted items, not slots.
	front map[critKey]int
	rear  map[critKey]int
	tc    bool
	masc  bool
	tsm   bool
	// listed holds ids already in the weapons block.
	listed map[string]bool
}

// scanCriticals walks the location blocks. Consecutive slots holding the
// same item are one mount, split by the item's slot count.
func (c *Calculator) scanCriticals(m *ingestion.MTFData, listed map[string]bool) critScan {
	s := critScan{front: map[critKey]int{}, rear: map[critKey]int{}, listed: listed}

	for locName, items := range m.LocationEquipment {
		loc, err := ParseLocation(locName)
		if err != nil {
			continue
		}
		var run []string
		flush := func() {
			if len(run) > 0 {
				s.mount(c, loc, run)
			}
			run = nil
		}
		for _, item := range items {
			if isStructuralItem(item) {
				flush()
				continue
			}
			if len(run) > 0 && run[0] != item {
				flush()
			}
			run = append(run, item)
		}
		flush()
	}
	return s
}

// mount records a run of identical slots at loc.
func (s *critScan) mount(c *Calculator, loc Location, run []string) {
	name, rear := strings.CutSuffix(run[0], "(R)")
	name = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name), "(omnipod)"))

	res := c.resolver.Resolve(name)
	if !res.Resolved {
		return
	}
	e := res.Entry

	switch {
	case e.Category == catalog.CategoryAmmo:
		// every ammo slot is a separate ton
		for range run {
			s.ammo = append(s.ammo, EquipmentEntry{ID: e.ID, Location: loc, Slots: 1})
			if e.Explosive != catalog.ExplosiveNone {
				s.explosive = append(s.explosive, EquipmentEntry{ID: e.ID, Location: loc, Slots: 1, Category: e.Explosive})
			}
		}
		return
	case strings.HasSuffix(e.ID, "case-ii"):
		s.caseIILocs = append(s.caseIILocs, loc)
		return
	case strings.HasSuffix(e.ID, "case"):
		s.caseLocs = append(s.caseLocs, loc)
		return
	case strings.HasSuffix(e.ID, "targeting-computer"):
		s.tc = true
		return
	case strings.HasSuffix(e.ID, "masc"):
		s.masc = true
		return
	case e.ID == "tsm":
		s.tsm = true
		return
	}

	slots := max(e.CriticalSlots, 1)
	for left := len(run); left > 0; left -= slots {
		k := critKey{loc, e.ID}
		if rear {
			s.rear[k]++
		} else {
			s.front[k]++
		}
		if e.Explosive != catalog.ExplosiveNone {
			s.explosive = append(s.explosive, EquipmentEntry{ID: e.ID, Location: loc, Slots: min(slots, left), Category: e.Explosive})
		}
		if e.Category != catalog.CategoryWeapon && e.DefensiveBV > 0 && !s.listed[e.ID] {
			s.equipment = append(s.equipment, EquipmentEntry{ID: e.ID, Location: loc})
		}
	}
}

// splitWeaponCount strips a leading count such as "2 ISERMediumLaser".
func splitWeaponCount(name string) (string, int) {
	name = strings.TrimSpace(name)
	head, rest, ok := strings.Cut(name, " ")
	if !ok {
		return name, 1
	}
	n, err := strconv.Atoi(head)
	if err != nil || n < 1 {
		return name, 1
	}
	return strings.TrimSpace(rest), n
}

func isTSM(myomer string) bool {
	return strings.Contains(myomer, "TSM") || strings.Contains(myomer, "Triple Strength")
}

var structuralPrefixes = []string{
	"shoulder", "upper arm", "lower arm", "hand actuator",
	"hip", "upper leg", "lower leg", "foot actuator",
	"life support", "sensors", "cockpit", "small cockpit",
	"-empty-", "endo", "is endo", "cl endo", "clan endo",
	"ferro", "is ferro", "clan ferro", "cl ferro",
}

// isStructuralItem reports whether a critical slot holds construction
// rather than equipment. Heat sinks and jump jets count as structural;
// their effect comes from the header fields.
func isStructuralItem(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return true
	}
	for _, s := range structuralPrefixes {
		if strings.HasPrefix(n, s) {
			return true
		}
	}
	for _, s := range []string{"heat sink", "heatsink", "jump jet", "jumpjet", "engine", "gyro"} {
		if strings.Contains(n, s) {
			return true
		}
	}
	return false
}

func containsLocation(locs []Location, l Location) bool {
	for _, x := range locs {
		if x == l {
			return true
		}
	}
	return false
}
