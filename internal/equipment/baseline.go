package equipment

import (
	"strings"

	"github.com/JustinWhittecar/bvcore/internal/catalog"
)

// Canonical ids that resolve even when the catalog cannot be loaded.
const (
	JumpJetLight  = "jump-jet-light"
	JumpJetMedium = "jump-jet-medium"
	JumpJetHeavy  = "jump-jet-heavy"

	SingleHeatSink     = "single-heat-sink"
	DoubleHeatSink     = "double-heat-sink"
	ClanDoubleHeatSink = "clan-double-heat-sink"
	CompactHeatSink    = "compact-heat-sink"
	LaserHeatSink      = "laser-heat-sink"
)

var baseline = map[string]catalog.Entry{
	JumpJetLight:       {ID: JumpJetLight, Name: "Jump Jet", Category: catalog.CategoryJumpJet, Weight: 0.5, CriticalSlots: 1},
	JumpJetMedium:      {ID: JumpJetMedium, Name: "Jump Jet", Category: catalog.CategoryJumpJet, Weight: 1, CriticalSlots: 1},
	JumpJetHeavy:       {ID: JumpJetHeavy, Name: "Jump Jet", Category: catalog.CategoryJumpJet, Weight: 2, CriticalSlots: 1},
	SingleHeatSink:     {ID: SingleHeatSink, Name: "Heat Sink", Category: catalog.CategoryHeatSink, Weight: 1, CriticalSlots: 1},
	DoubleHeatSink:     {ID: DoubleHeatSink, Name: "Double Heat Sink", Category: catalog.CategoryHeatSink, Weight: 1, CriticalSlots: 3},
	ClanDoubleHeatSink: {ID: ClanDoubleHeatSink, Name: "Double Heat Sink", Category: catalog.CategoryHeatSink, Weight: 1, CriticalSlots: 2, TechBase: catalog.Clan},
	CompactHeatSink:    {ID: CompactHeatSink, Name: "Compact Heat Sink", Category: catalog.CategoryHeatSink, Weight: 1.5, CriticalSlots: 1},
	LaserHeatSink:      {ID: LaserHeatSink, Name: "Laser Heat Sink", Category: catalog.CategoryHeatSink, Weight: 1, CriticalSlots: 2, TechBase: catalog.Clan},
}

// JumpJetID returns the jump-jet id for a unit of the given tonnage.
func JumpJetID(tonnage int) string {
	switch {
	case tonnage <= 55:
		return JumpJetLight
	case tonnage <= 85:
		return JumpJetMedium
	default:
		return JumpJetHeavy
	}
}

// HeatSinkID maps an MTF heat-sink description ("Single", "Double",
// "IS Double", "Clan Double", "Compact", "Laser") to its id.
func HeatSinkID(kind string) string {
	k := strings.ToLower(kind)
	switch {
	case strings.Contains(k, "laser"):
		return LaserHeatSink
	case strings.Contains(k, "compact"):
		return CompactHeatSink
	case strings.Contains(k, "double"):
		if strings.Contains(k, "clan") || strings.HasPrefix(k, "cl") {
			return ClanDoubleHeatSink
		}
		return DoubleHeatSink
	default:
		return SingleHeatSink
	}
}
