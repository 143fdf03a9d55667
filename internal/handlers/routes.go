package handlers

import "net/http"

// Register mounts the API on mux.
func Register(mux *http.ServeMux, eq *EquipmentHandler, bv *BVHandler) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Equipment
	mux.HandleFunc("GET /api/equipment", eq.Names)
	mux.HandleFunc("GET /api/equipment/resolve", eq.Resolve)

	// Valuation
	mux.HandleFunc("POST /api/bv", bv.Breakdown)
	mux.HandleFunc("GET /api/formulas", bv.Formulas)
	mux.HandleFunc("GET /api/formulas/{id}", bv.Formula)
}
