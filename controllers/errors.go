package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservations/services"
	"github.com/yeremiapane/table-reservations/utils"
)

// respondServiceError maps service errors onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrTableNotFound), errors.Is(err, services.ErrReservationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidGrouping):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotGrouped),
		errors.Is(err, services.ErrTableOccupied),
		errors.Is(err, services.ErrAlreadyReservedForDate),
		errors.Is(err, services.ErrTimeConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		utils.ErrorLogger.WithField("path", c.FullPath()).Errorf("Request failed: %v", err)
		utils.RespondError(c, status, errors.New("internal storage error"))
		return
	}
	utils.RespondError(c, status, err)
}

func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", name, c.Param(name))
	}
	return uint(id), nil
}
