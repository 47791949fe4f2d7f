package api

import (
	"encoding/json"
	"net/http"

	"ngfw-form/preset"
)

func (h *handler) listDevices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(preset.Devices())
}
