// Package ingestion reads MegaMek unit files.
package ingestion

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
)

// MTFData holds the valuation-relevant fields of a MegaMek .mtf file.
type MTFData struct {
	Chassis  string
	Model    string
	MulID    int
	Config   string
	TechBase string
	Era      int

	Mass         int
	EngineRating int
	EngineType   string
	Structure    string
	Myomer       string
	Cockpit      string
	Gyro         string

	HeatSinkCount int
	HeatSinkType  string

	WalkMP int
	JumpMP int

	ArmorType string
	// ArmorValues is keyed by MTF abbreviation; rear torso armor uses
	// RTL, RTR and RTC.
	ArmorValues map[string]int

	// Weapons is the Weapons:N summary block.
	Weapons []WeaponEntry

	// LocationEquipment lists critical slots per location name
	// ("Left Arm", "Front Left Leg", ...), "-Empty-" included.
	LocationEquipment map[string][]string
}

// WeaponEntry is a weapon from the Weapons:N summary block.
type WeaponEntry struct {
	Name     string
	Location string
}

// ParseMTF reads a MegaMek .mtf file from disk.
func ParseMTF(path string) (*MTFData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse reads MTF content from r.
func Parse(r io.Reader) (*MTFData, error) {
	p := &mtfParser{data: &MTFData{
		ArmorValues:       make(map[string]int),
		LocationEquipment: make(map[string][]string),
	}}

	sc := bufio.NewScanner(r)
	// lore lines can be long
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		p.line(strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read mtf: %w", err)
	}
	if p.data.Chassis == "" {
		return nil, errors.New("missing chassis field")
	}
	return p.data, nil
}

// mtfParser tracks which block the current line belongs to: a location's
// critical slots, the weapons summary, or top-level fields.
type mtfParser struct {
	data     *MTFData
	location string
	weapons  bool
}

func (p *mtfParser) line(ln string) {
	if ln == "" || ln[0] == '#' {
		return
	}
	if loc := matchLocationHeader(ln); loc != "" {
		p.location, p.weapons = loc, false
		return
	}
	if strings.HasPrefix(strings.ToLower(ln), "weapons:") {
		p.location, p.weapons = "", true
		return
	}
	if p.location != "" && !isKeyLine(ln) {
		p.data.LocationEquipment[p.location] = append(p.data.LocationEquipment[p.location], ln)
		return
	}
	p.location = ""

	if p.weapons {
		if name, loc, ok := strings.Cut(ln, ","); ok {
			p.data.Weapons = append(p.data.Weapons, WeaponEntry{
				Name:     strings.TrimSpace(name),
				Location: strings.TrimSpace(loc),
			})
			return
		}
		p.weapons = false
	}

	key, val, ok := strings.Cut(ln, ":")
	if !ok {
		return
	}
	key = strings.ToLower(strings.TrimSpace(key))
	val = strings.TrimSpace(val)
	if set, ok := mtfFields[key]; ok {
		set(p.data, val)
		return
	}
	if loc, ok := strings.CutSuffix(key, " armor"); ok {
		p.data.ArmorValues[strings.ToUpper(loc)] = parseArmorValue(val)
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// mtfFields assigns the top-level "key:value" fields.
var mtfFields = map[string]func(*MTFData, string){
	"chassis":  func(d *MTFData, v string) { d.Chassis = v },
	"model":    func(d *MTFData, v string) { d.Model = v },
	"mul id":   func(d *MTFData, v string) { d.MulID = atoi(v) },
	"config":   func(d *MTFData, v string) { d.Config = v },
	"techbase": func(d *MTFData, v string) { d.TechBase = v },
	"era":      func(d *MTFData, v string) { d.Era = atoi(v) },
	"mass":     func(d *MTFData, v string) { d.Mass = atoi(v) },
	"engine": func(d *MTFData, v string) {
		d.EngineRating, d.EngineType = leadingCount(v)
	},
	"structure": func(d *MTFData, v string) { d.Structure = v },
	"myomer":    func(d *MTFData, v string) { d.Myomer = v },
	"cockpit":   func(d *MTFData, v string) { d.Cockpit = v },
	"gyro":      func(d *MTFData, v string) { d.Gyro = v },
	"heat sinks": func(d *MTFData, v string) {
		d.HeatSinkCount, d.HeatSinkType = leadingCount(v)
		if d.HeatSinkType == "" {
			d.HeatSinkType = "Single"
		}
	},
	"walk mp": func(d *MTFData, v string) { d.WalkMP = atoi(v) },
	"jump mp": func(d *MTFData, v string) { d.JumpMP = atoi(v) },
	"armor":   func(d *MTFData, v string) { d.ArmorType = v },
}

// isKeyLine reports whether line is a lowercase "key:value" field, which
// ends a location block.
func isKeyLine(line string) bool {
	key, _, ok := strings.Cut(line, ":")
	if !ok || key == "" {
		return false
	}
	for _, r := range key {
		if (r < 'a' || r > 'z') && r != ' ' {
			return false
		}
	}
	return true
}

// parseArmorValue reads "26" or a patchwork value such as
// "Reactive(Inner Sphere):26".
func parseArmorValue(val string) int {
	if i := strings.LastIndexByte(val, ':'); i >= 0 {
		val = val[i+1:]
	}
	return atoi(strings.TrimSpace(val))
}

var locationHeaders = []string{
	"Left Arm", "Right Arm", "Left Torso", "Right Torso", "Center Torso",
	"Head", "Left Leg", "Right Leg",
	"Front Left Leg", "Front Right Leg", "Rear Left Leg", "Rear Right Leg",
}

// matchLocationHeader returns the location named by a header line such
// as "Front Left Leg:", or "".
func matchLocationHeader(line string) string {
	if name, ok := strings.CutSuffix(line, ":"); ok && slices.Contains(locationHeaders, name) {
		return name
	}
	return ""
}

// leadingCount splits "300 Fusion Engine(IS)" into 300 and the rest.
func leadingCount(val string) (int, string) {
	n, rest, _ := strings.Cut(val, " ")
	return atoi(n), strings.TrimSpace(rest)
}

func (d *MTFData) TotalArmor() (n int) {
	for _, v := range d.ArmorValues {
		n += v
	}
	return n
}

// IsQuad reports whether the unit has four legs.
func (d *MTFData) IsQuad() bool {
	return strings.Contains(strings.ToLower(d.Config), "quad")
}

// IsClan reports whether the unit's primary tech base is Clan.
func (d *MTFData) IsClan() bool {
	return strings.Contains(strings.ToLower(d.TechBase), "clan")
}

// FullName is "Chassis Model", or the chassis alone.
func (d *MTFData) FullName() string {
	return strings.TrimSpace(d.Chassis + " " + d.Model)
}
