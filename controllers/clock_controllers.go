package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservations/utils"
)

type ClockController struct {
	Clock    utils.Clock
	Timezone string
}

func NewClockController(clock utils.Clock, timezone string) *ClockController {
	return &ClockController{Clock: clock, Timezone: timezone}
}

// GetCurrentDate -> the restaurant's date, which is what bookings and the
// sweeper compare against
func (cc *ClockController) GetCurrentDate(c *gin.Context) {
	now := cc.Clock.Now()
	utils.RespondJSON(c, http.StatusOK, "Current restaurant date", gin.H{
		"date":         cc.Clock.Today(),
		"time":         cc.Clock.NowTimeOfDay(),
		"display_date": utils.FormatDisplayDate(cc.Clock.Today()),
		"timezone":     cc.Timezone,
		"utc_offset":   now.Format("-07:00"),
	})
}
