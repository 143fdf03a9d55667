package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/JustinWhittecar/bvcore/internal/formulas"
)

var formulaParams struct {
	tonnage, engineWeight, directFire float64
	tech                              string
}

var formulaCmd = &cobra.Command{
	Use:       "formula <id>",
	Short:     "Compute weight, slots and cost of variable-size equipment",
	Example:   "  bvctl formula masc --tonnage 85\n  bvctl formula clan-targeting-computer --direct-fire 22",
	Args:      cobra.ExactArgs(1),
	ValidArgs: formulas.IDs(),
	RunE:      runFormula,
}

func init() {
	f := formulaCmd.Flags()
	f.Float64Var(&formulaParams.tonnage, "tonnage", 0, "unit tonnage")
	f.Float64Var(&formulaParams.engineWeight, "engine-weight", 0, "engine weight (supercharger)")
	f.Float64Var(&formulaParams.directFire, "direct-fire", 0, "direct-fire weapon tonnage (targeting computer)")
	f.StringVar(&formulaParams.tech, "tech", "IS", "tech base (IS or Clan)")
}

func runFormula(cmd *cobra.Command, args []string) error {
	p := formulas.Params{
		Tonnage:           formulaParams.tonnage,
		EngineWeight:      formulaParams.engineWeight,
		DirectFireTonnage: formulaParams.directFire,
	}
	if err := p.TechBase.UnmarshalText([]byte(formulaParams.tech)); err != nil {
		return err
	}
	res, err := formulas.Calculate(args[0], p)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
