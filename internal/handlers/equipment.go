package handlers

import (
	"net/http"
	"strings"

	"github.com/JustinWhittecar/bvcore/internal/catalog"
	"github.com/JustinWhittecar/bvcore/internal/equipment"
)

const maxNameResults = 50

type EquipmentHandler struct {
	Resolver *equipment.Resolver
	Catalog  catalog.Lister
}

type EquipmentName struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Type     catalog.Category `json:"type"`
	TechBase catalog.TechBase `json:"tech_base"`
}

// Names lists catalog entries whose name or id contains q, up to 50 when
// filtering.
func (h *EquipmentHandler) Names(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	names := []EquipmentName{}
	for _, e := range h.Catalog.Entries() {
		if q != "" && !strings.Contains(strings.ToLower(e.Name), q) && !strings.Contains(e.ID, q) {
			continue
		}
		names = append(names, EquipmentName{ID: e.ID, Name: e.Name, Type: e.Category, TechBase: e.TechBase})
		if q != "" && len(names) == maxNameResults {
			break
		}
	}
	writeJSON(w, http.StatusOK, names)
}

// Resolve normalizes every ?id= parameter and reports the catalog entry it
// lands on.
func (h *EquipmentHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ids := r.URL.Query()["id"]
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	out := make([]equipment.Resolution, 0, len(ids))
	for _, id := range ids {
		out = append(out, h.Resolver.Resolve(id))
	}
	writeJSON(w, http.StatusOK, out)
}
