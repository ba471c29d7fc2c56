package httpapi

import (
	"net/http"
	"time"
)

// Health answers GET /health with a static liveness response; it
// deliberately does not check the database or broker (spec §6.1 — a
// readiness probe that depended on downstream state would make the
// service unavailable in lockstep with its dependencies).
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}{Status: "ok", Timestamp: time.Now().UTC()})
}
