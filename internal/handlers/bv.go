package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/JustinWhittecar/bvcore/internal/bvcalc"
	"github.com/JustinWhittecar/bvcore/internal/formulas"
	"github.com/JustinWhittecar/bvcore/internal/ingestion"
)

const maxBodyBytes = 1 << 20

type BVHandler struct {
	Calc   *bvcalc.Calculator
	Logger *zap.Logger // must be non-nil
}

// BVResponse wraps a breakdown with the MTF conversion problems, if any.
type BVResponse struct {
	bvcalc.Breakdown
	Warnings []string `json:"warnings,omitempty"`
}

// Breakdown values a unit. The body is a JSON bvcalc.Input, or a MegaMek
// .mtf file when Content-Type is text/plain.
func (h *BVHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var (
		in       bvcalc.Input
		warnings []string
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/plain") {
		m, err := ingestion.Parse(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		in, err = h.Calc.InputFromMTF(m)
		if err != nil {
			warnings = splitErrors(err)
			h.Logger.Debug("mtf conversion warnings",
				zap.String("unit", m.FullName()),
				zap.Strings("warnings", warnings))
		}
	} else if err := json.NewDecoder(body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	b := h.Calc.GetBVBreakdown(in)
	writeJSON(w, http.StatusOK, BVResponse{Breakdown: b, Warnings: warnings})
}

// Formula evaluates a variable-size equipment formula. Query parameters:
// tonnage, engine_weight, direct_fire_tonnage, tech.
func (h *BVHandler) Formula(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var p formulas.Params
	for name, dst := range map[string]*float64{
		"tonnage":             &p.Tonnage,
		"engine_weight":       &p.EngineWeight,
		"direct_fire_tonnage": &p.DirectFireTonnage,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+name)
			return
		}
		*dst = f
	}
	if v := q.Get("tech"); v != "" {
		if err := p.TechBase.UnmarshalText([]byte(v)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	res, err := formulas.Calculate(r.PathValue("id"), p)
	if errors.Is(err, formulas.ErrUnknownEquipment) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Formulas lists the ids Formula accepts.
func (h *BVHandler) Formulas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, formulas.IDs())
}
