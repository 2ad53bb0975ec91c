package httpx

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (database.Database, RedisClient, EventBus all qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// optional is implemented by checkers whose outage leaves the service usable,
// such as a Redis client that only backs the read cache.
type optional interface {
	Optional() bool
}

// HealthChecks holds the dependencies the health endpoint pings.
// A nil checker is reported as "disabled" and does not degrade the status;
// the memory backends run without a database or Redis.
type HealthChecks struct {
	Database HealthChecker
	Redis    HealthChecker
	EventBus HealthChecker
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
	EventBus string `json:"event_bus"`
}

// HealthHandler returns an http.HandlerFunc that pings every registered
// HealthChecker. A failing checker degrades the status unless it is optional.
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		check := func(c HealthChecker) string {
			if c == nil {
				return "disabled"
			}
			if err := c.Ping(ctx); err != nil {
				if o, ok := c.(optional); ok && o.Optional() {
					return "unreachable"
				}
				resp.Status = "degraded"
				return "unreachable"
			}
			return "ok"
		}
		resp.Database = check(checks.Database)
		resp.Redis = check(checks.Redis)
		resp.EventBus = check(checks.EventBus)

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}
