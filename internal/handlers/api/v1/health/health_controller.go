// ===============================
// FILE: internal/handlers/api/v1/health/health_controller.go
// ===============================

package health

import (
	"context"
	"net/http"
	"time"

	"vidtube/internal/response"
	"vidtube/internal/services"
	"vidtube/internal/utils/appinfo"
)

const checkTimeout = 5 * time.Second

// Checker reports dependency health
type Checker interface {
	HealthCheck(ctx context.Context) *services.ServiceHealth
}

// Report is the /health body
type Report struct {
	*services.ServiceHealth
	App appinfo.Info `json:"app"`
}

// HealthController serves the liveness banner and the dependency report
type HealthController struct {
	checker         Checker
	responseBuilder *response.Builder
}

// NewHealthController creates a new health controller
func NewHealthController(checker Checker, responseBuilder *response.Builder) *HealthController {
	return &HealthController{checker: checker, responseBuilder: responseBuilder}
}

// Root answers the plain liveness banner
func (c *HealthController) Root(w http.ResponseWriter, r *http.Request) {
	c.responseBuilder.WriteText(w, r, "Youtube clone is running...", http.StatusOK)
}

// Health godoc
// @Summary Database and cache health
// @Tags System
// @Produce json
// @Success 200 {object} Report
// @Failure 503 {object} Report
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	report := Report{ServiceHealth: c.checker.HealthCheck(ctx), App: appinfo.Get()}
	status := http.StatusOK
	if report.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.responseBuilder.WriteJSON(w, r, report, status)
}
