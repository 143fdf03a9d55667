package equipment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustinWhittecar/bvcore/internal/catalog"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	tables, err := DefaultAliasTables()
	require.NoError(t, err)
	cache := catalog.NewCache(catalog.EmbeddedSource())
	require.NoError(t, cache.Load(context.Background()))
	return NewResolver(cache, tables)
}

func TestNormalize(t *testing.T) {
	r := newTestResolver(t)
	tests := []struct {
		in, want string
	}{
		{"medium-laser", "medium-laser"},
		{"Medium Laser", "medium-laser"},
		{"medium laser", "medium-laser"},
		{"ISMediumLaser", "medium-laser"},
		{"ISERMediumLaser", "er-medium-laser"},
		{"CLERMediumLaser", "clan-er-medium-laser"},
		{"Clan ER Medium Laser", "clan-er-medium-laser"},
		{"ER Medium Laser (Clan)", "clan-er-medium-laser"},
		{"clan-er-medium-laser", "clan-er-medium-laser"},
		{"cl-er-medium-laser", "clan-er-medium-laser"},
		{"ISLRM10", "lrm-10"},
		{"LRM 10", "lrm-10"},
		{"lrm-10", "lrm-10"},
		{"CLLRM20", "clan-lrm-20"},
		{"ISLBXAC10", "lb-10-x-ac"},
		{"lb-10x-ac", "lb-10-x-ac"},
		{"CLLBXAC10", "clan-lb-10-x-ac"},
		{"AC/20", "ac-20"},
		{"Autocannon/20", "ac-20"},
		{"ISMachine Gun", "machine-gun"},
		{"CLHeavyMediumLaser", "clan-heavy-medium-laser"},
		{"CLECMSuite", "clan-ecm-suite"},
		{"ISAntiMissileSystem", "anti-missile-system"},
		{"CLAMS", "clan-anti-missile-system"},
		{"IS Ammo AC/20", "ammo-ac-20"},
		{"Clan Ammo LRM-20", "clan-ammo-lrm-20"},
		{"ISDoubleHeatSink", "double-heat-sink"},
		{"CLDoubleHeatSink", "clan-double-heat-sink"},
		{"ISCASE", "case"},
		{"ISCASEII", "case-ii"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Normalize(tt.in))
		})
	}
}

func TestNormalizeInstanceCounters(t *testing.T) {
	r := newTestResolver(t)
	tests := []struct {
		in, want string
	}{
		{"medium-laser-2", "medium-laser"},
		{"3-medium-laser", "medium-laser"},
		{"3-medium-laser-2", "medium-laser"},
		{"clan-er-medium-laser-1", "clan-er-medium-laser"},
		{"1-ISMediumLaser", "medium-laser"},
		// the counter is only stripped when the unstripped form is unknown
		{"lrm-10", "lrm-10"},
		{"ac-20", "ac-20"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Normalize(tt.in), tt.in)
	}
}

func TestNormalizePassthrough(t *testing.T) {
	r := newTestResolver(t)
	assert.Equal(t, "warp-drive-mk-2", r.Normalize("WarpDrive MK2"))
	assert.Equal(t, "is-plasma-rifle", r.Normalize("ISPlasmaRifle"))

	res := r.ResolveBV("WarpDrive MK2")
	assert.Equal(t, BVResolution{}, res)
}

func TestNormalizeIdempotent(t *testing.T) {
	r := newTestResolver(t)
	tables, err := DefaultAliasTables()
	require.NoError(t, err)

	inputs := tables.Keys()
	for _, e := range r.Catalog().(catalog.Lister).Entries() {
		inputs = append(inputs, e.ID, e.Name)
	}
	for _, k := range tables.Keys() {
		inputs = append(inputs, "CL"+k, "IS"+k, "Clan "+k, k+" (Clan)", k+"-2", "4-"+k)
	}
	inputs = append(inputs, "", "  ", "???", "WarpDrive MK2", "Clan", "IS", "cl-", "12-")

	for _, in := range inputs {
		once := r.Normalize(in)
		assert.Equal(t, once, r.Normalize(once), "input %q", in)
	}
}

func TestTorpedoEquivalence(t *testing.T) {
	r := newTestResolver(t)
	pairs := [][2]string{
		{"lrt-5", "lrm-5"},
		{"lrt-10", "lrm-10"},
		{"lrt-15", "lrm-15"},
		{"lrt-20", "lrm-20"},
		{"srt-2", "srm-2"},
		{"srt-4", "srm-4"},
		{"srt-6", "srm-6"},
		{"LRT 10", "LRM 10"},
		{"CLLRT10", "CLLRM10"},
		{"clan-lrt-10", "clan-lrm-10"},
		{"Clan SRT 6", "Clan SRM 6"},
	}
	for _, p := range pairs {
		torp, rack := r.ResolveBV(p[0]), r.ResolveBV(p[1])
		require.True(t, rack.Resolved, p[1])
		assert.Equal(t, rack, torp, "%s vs %s", p[0], p[1])
	}
	assert.NotEqual(t, r.ResolveBV("lrt-10"), r.ResolveBV("clan-lrt-10"))
}

func TestTechBasesNeverCollide(t *testing.T) {
	r := newTestResolver(t)
	clan := r.Normalize("CLERMediumLaser")
	is := r.Normalize("ISERMediumLaser")
	assert.NotEqual(t, clan, is)

	assert.Equal(t, BVResolution{Resolved: true, BattleValue: 108, Heat: 5}, r.ResolveBV("CLERMediumLaser"))
	assert.Equal(t, BVResolution{Resolved: true, BattleValue: 62, Heat: 5}, r.ResolveBV("ISERMediumLaser"))
	// bare identifiers are Inner Sphere
	assert.Equal(t, r.ResolveBV("ISERMediumLaser"), r.ResolveBV("ER Medium Laser"))
}

func TestResolveBVClampsNegative(t *testing.T) {
	tables, err := DefaultAliasTables()
	require.NoError(t, err)
	cache := catalog.NewCache(catalog.StaticSource{
		{ID: "medium-laser", BattleValue: -4, Heat: -1},
	})
	r := NewResolver(cache, tables)
	assert.Equal(t, BVResolution{Resolved: true}, r.ResolveBV("Medium Laser"))
}

func TestResolverWithoutCatalog(t *testing.T) {
	tables, err := DefaultAliasTables()
	require.NoError(t, err)
	failing := catalog.NewCache(catalog.SourceFunc(func(context.Context) ([]catalog.Entry, error) {
		return nil, context.DeadlineExceeded
	}))
	for name, cat := range map[string]catalog.Catalog{"nil": nil, "failing": failing} {
		t.Run(name, func(t *testing.T) {
			r := NewResolver(cat, tables)
			assert.Equal(t, "medium-laser", r.Normalize("ISMediumLaser"))
			assert.False(t, r.ResolveBV("ISMediumLaser").Resolved)

			assert.Equal(t, JumpJetMedium, r.Normalize("jump-jet-medium-2"))
			assert.Equal(t, BVResolution{Resolved: true}, r.ResolveBV(JumpJetMedium))
			assert.Equal(t, ClanDoubleHeatSink, r.Normalize("CLDoubleHeatSink"))
			assert.True(t, r.ResolveBV("CLDoubleHeatSink").Resolved)
		})
	}
}

func TestJumpJetID(t *testing.T) {
	tests := []struct {
		tons int
		want string
	}{
		{20, JumpJetLight}, {55, JumpJetLight}, {60, JumpJetMedium},
		{85, JumpJetMedium}, {90, JumpJetHeavy}, {100, JumpJetHeavy},
	}
	for _, tt := range tests {
		if got := JumpJetID(tt.tons); got != tt.want {
			t.Errorf("JumpJetID(%d) = %q, want %q", tt.tons, got, tt.want)
		}
	}
}

func TestHeatSinkID(t *testing.T) {
	tests := map[string]string{
		"Single":      SingleHeatSink,
		"Double":      DoubleHeatSink,
		"IS Double":   DoubleHeatSink,
		"Clan Double": ClanDoubleHeatSink,
		"Compact":     CompactHeatSink,
		"Laser":       LaserHeatSink,
	}
	for in, want := range tests {
		if got := HeatSinkID(in); got != want {
			t.Errorf("HeatSinkID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAliasTablesExtend(t *testing.T) {
	base, err := NewAliasTables(map[string]string{"ISMediumLaser": "medium-laser"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ext, err := base.Extend(map[string]string{
		"ISMediumLaser": "large-laser", // existing key keeps its target
		"ISMedLas":      "medium-laser",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := ext.lookup("ISMediumLaser"); got != "medium-laser" {
		t.Errorf("ISMediumLaser -> %q, want medium-laser", got)
	}
	if got, _ := ext.lookup("ISMedLas"); got != "medium-laser" {
		t.Errorf("ISMedLas -> %q, want medium-laser", got)
	}
	if base.Len() != 1 || ext.Len() != 2 {
		t.Errorf("Len: base %d ext %d", base.Len(), ext.Len())
	}
}
