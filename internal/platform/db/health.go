package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// poolHealth is the connection-pool section of the /health/db response.
type poolHealth struct {
	Total    int32  `json:"total"`
	Idle     int32  `json:"idle"`
	InUse    int32  `json:"in_use"`
	Max      int32  `json:"max"`
	WaitTime string `json:"wait_time"`
}

func snapshotPool(pool *pgxpool.Pool) poolHealth {
	st := pool.Stat()
	return poolHealth{
		Total:    st.TotalConns(),
		Idle:     st.IdleConns(),
		InUse:    st.AcquiredConns(),
		Max:      st.MaxConns(),
		WaitTime: st.AcquireDuration().String(),
	}
}

// HealthHandler reports database reachability and pool utilization. It backs
// /health/db; the plain /health endpoint never touches the database.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unreachable",
				"error":  err.Error(),
				"pool":   snapshotPool(pool),
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "ok",
			"pool":   snapshotPool(pool),
		})
	}
}
