package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservations/floor"
	"github.com/yeremiapane/table-reservations/services"
	"github.com/yeremiapane/table-reservations/utils"
)

type SweepController struct {
	Sweeper *services.Sweeper
	Hub     *floor.Hub
}

func NewSweepController(sweeper *services.Sweeper, hub *floor.Hub) *SweepController {
	return &SweepController{Sweeper: sweeper, Hub: hub}
}

// RunSweep -> expire past reservations then promote today's. Answers 204 when
// nothing changed.
func (sc *SweepController) RunSweep(c *gin.Context) {
	res, err := sc.Sweeper.Sweep(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !res.Changed() {
		c.Status(http.StatusNoContent)
		return
	}

	sc.Hub.Broadcast(floor.EventSweepCompleted, res)
	utils.RespondJSON(c, http.StatusOK, "Table states updated", res)
}

func (sc *SweepController) ExpireStale(c *gin.Context) {
	sc.runOne(c, "Past reservations expired", func(ctx context.Context) (services.SweepResult, error) {
		n, err := sc.Sweeper.ExpireStale(ctx)
		return services.SweepResult{Expired: n}, err
	})
}

func (sc *SweepController) PromoteToday(c *gin.Context) {
	sc.runOne(c, "Today's reservations promoted", func(ctx context.Context) (services.SweepResult, error) {
		n, err := sc.Sweeper.PromoteToday(ctx)
		return services.SweepResult{Promoted: n}, err
	})
}

func (sc *SweepController) GetMetrics(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Sweeper metrics", sc.Sweeper.Metrics())
}

func (sc *SweepController) runOne(c *gin.Context, message string, fn func(context.Context) (services.SweepResult, error)) {
	res, err := fn(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if res.Changed() {
		sc.Hub.Broadcast(floor.EventSweepCompleted, res)
	}
	utils.RespondJSON(c, http.StatusOK, message, res)
}
