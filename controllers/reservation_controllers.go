package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservations/floor"
	"github.com/yeremiapane/table-reservations/services"
	"github.com/yeremiapane/table-reservations/utils"
)

type ReservationController struct {
	Reservations *services.ReservationService
	Tables       *services.TableService
	Hub          *floor.Hub
}

func NewReservationController(reservations *services.ReservationService, tables *services.TableService, hub *floor.Hub) *ReservationController {
	return &ReservationController{Reservations: reservations, Tables: tables, Hub: hub}
}

// CreateReservation -> book a table for a date and time
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req struct {
		TableID   uint    `json:"table_id" binding:"required"`
		Date      string  `json:"date" binding:"required"`
		Time      string  `json:"time" binding:"required"`
		PartySize int     `json:"party_size" binding:"required"`
		Requester string  `json:"requester" binding:"required"`
		Phone     *string `json:"phone"`
		Note      *string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation, err := rc.Reservations.Book(c.Request.Context(), services.BookRequest{
		TableID:   req.TableID,
		Date:      req.Date,
		Time:      req.Time,
		PartySize: req.PartySize,
		Requester: req.Requester,
		Phone:     req.Phone,
		Note:      req.Note,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	rc.Hub.Broadcast(floor.EventReservationCreate, reservation)
	rc.broadcastTable(c, reservation.TableID)
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", reservation)
}

// GetReservations -> all reservations, or one date with ?date=YYYY-MM-DD
func (rc *ReservationController) GetReservations(c *gin.Context) {
	list, err := rc.Reservations.ListByDate(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", list)
}

func (rc *ReservationController) GetReservationByID(c *gin.Context) {
	id, err := parseID(c, "reservation_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation, err := rc.Reservations.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", reservation)
}

func (rc *ReservationController) GetReservationsByTable(c *gin.Context) {
	id, err := parseID(c, "table_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	list, err := rc.Reservations.ListByTable(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations for table", list)
}

// ReleaseReservation -> guests left, archive the reservation and free the table
func (rc *ReservationController) ReleaseReservation(c *gin.Context) {
	id, err := parseID(c, "reservation_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	entry, err := rc.Reservations.Release(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	rc.Hub.Broadcast(floor.EventReservationRelease, entry)
	rc.broadcastTable(c, entry.Snapshot.TableID)
	utils.RespondJSON(c, http.StatusOK, "Reservation released", entry)
}

// DeleteReservation -> cancel without keeping history
func (rc *ReservationController) DeleteReservation(c *gin.Context) {
	id, err := parseID(c, "reservation_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation, err := rc.Reservations.Delete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	rc.Hub.Broadcast(floor.EventReservationDelete, reservation)
	rc.broadcastTable(c, reservation.TableID)
	utils.RespondJSON(c, http.StatusOK, "Reservation deleted", reservation)
}

func (rc *ReservationController) broadcastTable(c *gin.Context, tableID uint) {
	table, err := rc.Tables.Get(c.Request.Context(), tableID)
	if err != nil {
		return
	}
	rc.Hub.Broadcast(floor.EventTableUpdate, table)
}
