package httpx

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is satisfied by any dependency that exposes a Ping method
// (Database, RedisClient, EventBus and the Ratapay client qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Check is one named probe of the health endpoint. A failing Optional check
// marks the service degraded but keeps it in rotation.
type Check struct {
	Name     string
	Checker  HealthChecker
	Optional bool
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthHandler probes every check within a 2s budget. Status is "ok" when
// all pass, "degraded" (200) when only optional ones fail and "down" (503)
// when a required one fails.
func HealthHandler(checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		for _, c := range checks {
			if err := c.Checker.Ping(ctx); err != nil {
				resp.Checks[c.Name] = "unreachable"
				switch {
				case !c.Optional:
					resp.Status = "down"
				case resp.Status == "ok":
					resp.Status = "degraded"
				}
				continue
			}
			resp.Checks[c.Name] = "ok"
		}

		status := http.StatusOK
		if resp.Status == "down" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}
