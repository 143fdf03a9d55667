package bvcalc

import "sort"

// AmmoBin is a ton (or fraction) of ammunition resolved against the
// catalog.
type AmmoBin struct {
	ID          string
	Feeds       string // weapon id the ammo is for
	BattleValue float64
}

// AmmoValue is the credited BV of all ammo for one weapon type.
type AmmoValue struct {
	Weapon   string  `json:"weapon"`
	AmmoBV   float64 `json:"ammo_bv"`
	WeaponBV float64 `json:"weapon_bv"`
	Credited float64 `json:"credited"`
}

// CapAmmoBV groups ammo by the weapon it feeds and credits each group at
// most the standalone BV of the matching weapons. Ammo for a weapon the
// unit does not carry is worth nothing.
func CapAmmoBV(bins []AmmoBin, weaponBV map[string]float64) (float64, []AmmoValue) {
	byWeapon := map[string]float64{}
	for _, b := range bins {
		byWeapon[b.Feeds] += max(b.BattleValue, 0)
	}
	weapons := make([]string, 0, len(byWeapon))
	for w := range byWeapon {
		weapons = append(weapons, w)
	}
	sort.Strings(weapons)

	total := 0.0
	out := make([]AmmoValue, 0, len(weapons))
	for _, w := range weapons {
		v := AmmoValue{Weapon: w, AmmoBV: byWeapon[w], WeaponBV: weaponBV[w]}
		v.Credited = min(v.AmmoBV, v.WeaponBV)
		total += v.Credited
		out = append(out, v)
	}
	return total, out
}
