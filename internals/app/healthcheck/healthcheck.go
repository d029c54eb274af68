package healthcheck

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

type HealthCheckResponse struct {
	Status   string   `json:"status"`
	Services []string `json:"services"`
}

type Checker struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Checker {
	return &Checker{db: db}
}

// PingPostgres runs a trivial query against the pool.
func (h *Checker) PingPostgres(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return h.db.WithContext(ctx).Exec("SELECT 1").Error
}

func (h *Checker) checkPostgres(ctx context.Context) (string, bool) {
	if err := h.PingPostgres(ctx); err != nil {
		return "Postgres is not healthy", false
	}
	return "Postgres is healthy", true
}

func (h *Checker) HealthCheckHandler(c *gin.Context) {
	postgres, ok := h.checkPostgres(c.Request.Context())

	response := HealthCheckResponse{
		Status:   "Marketplace Service is healthy!",
		Services: []string{postgres},
	}
	status := http.StatusOK
	if !ok {
		response.Status = "Marketplace Service is degraded"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, response)
}
