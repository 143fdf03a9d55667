package formulas

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JustinWhittecar/bvcore/internal/catalog"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		id   string
		p    Params
		want Result
	}{
		{"targeting-computer", Params{DirectFireTonnage: 13}, Result{ID: "targeting-computer", Weight: 4, CriticalSlots: 4, Cost: 40000}},
		{"targeting-computer", Params{DirectFireTonnage: 13, TechBase: catalog.Clan}, Result{ID: "targeting-computer", Weight: 3, CriticalSlots: 3, Cost: 30000}},
		{"clan-targeting-computer", Params{DirectFireTonnage: 10}, Result{ID: "clan-targeting-computer", Weight: 2, CriticalSlots: 2, Cost: 20000}},
		{"masc", Params{Tonnage: 50}, Result{ID: "masc", Weight: 3, CriticalSlots: 3, Cost: 50000}},
		{"clan-masc", Params{Tonnage: 50}, Result{ID: "clan-masc", Weight: 2, CriticalSlots: 2, Cost: 50000}},
		{"supercharger", Params{EngineWeight: 8.5}, Result{ID: "supercharger", Weight: 1, CriticalSlots: 1, Cost: 85000}},
		{"supercharger", Params{EngineWeight: 19}, Result{ID: "supercharger", Weight: 2, CriticalSlots: 1, Cost: 190000}},
		{"tsm", Params{Tonnage: 55}, Result{ID: "tsm", CriticalSlots: 6, Cost: 880000}},
		{"partial-wing", Params{Tonnage: 50}, Result{ID: "partial-wing", Weight: 3.5, CriticalSlots: 6, Cost: 175000}},
		{"partial-wing", Params{Tonnage: 50, TechBase: catalog.Clan}, Result{ID: "partial-wing", Weight: 2.5, CriticalSlots: 6, Cost: 125000}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := Calculate(tt.id, tt.p)
			if err != nil {
				t.Fatalf("Calculate(%q): %v", tt.id, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Calculate(%q) mismatch (-want +got):\n%s", tt.id, diff)
			}
		})
	}
}

func TestCalculateUnknown(t *testing.T) {
	_, err := Calculate("medium-laser", Params{Tonnage: 50})
	if !errors.Is(err, ErrUnknownEquipment) {
		t.Fatalf("err = %v, want ErrUnknownEquipment", err)
	}
}

func TestIDs(t *testing.T) {
	want := []string{"masc", "partial-wing", "supercharger", "targeting-computer", "tsm"}
	if diff := cmp.Diff(want, IDs()); diff != "" {
		t.Errorf("IDs mismatch (-want +got):\n%s", diff)
	}
}
