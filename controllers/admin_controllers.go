package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservations/services"
	"github.com/yeremiapane/table-reservations/utils"
)

type AdminController struct {
	Reservations *services.ReservationService
	Clock        utils.Clock
}

func NewAdminController(reservations *services.ReservationService, clock utils.Clock) *AdminController {
	return &AdminController{Reservations: reservations, Clock: clock}
}

// GetHistory -> archived reservations between ?from= and ?to=, both default
// to today
func (ac *AdminController) GetHistory(c *gin.Context) {
	today := ac.Clock.Today()
	from := c.DefaultQuery("from", today)
	to := c.DefaultQuery("to", today)

	history, err := ac.Reservations.ListHistory(c.Request.Context(), from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation history", history)
}
