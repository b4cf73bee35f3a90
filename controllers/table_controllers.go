package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservations/floor"
	"github.com/yeremiapane/table-reservations/layout"
	"github.com/yeremiapane/table-reservations/services"
	"github.com/yeremiapane/table-reservations/utils"
)

type TableController struct {
	Tables *services.TableService
	Plan   layout.Provider
	Hub    *floor.Hub
}

func NewTableController(tables *services.TableService, plan layout.Provider, hub *floor.Hub) *TableController {
	return &TableController{Tables: tables, Plan: plan, Hub: hub}
}

// GetLayout -> area grid sizes for drawing the floor plan
func (tc *TableController) GetLayout(c *gin.Context) {
	type area struct {
		Name        string `json:"name"`
		Label       string `json:"label"`
		GridColumns int    `json:"grid_columns"`
		GridRows    int    `json:"grid_rows"`
		Tables      int    `json:"tables"`
	}
	var areas []area
	for _, a := range tc.Plan.Areas() {
		areas = append(areas, area{
			Name:        a.Name,
			Label:       a.Label,
			GridColumns: a.GridColumns,
			GridRows:    a.GridRows,
			Tables:      len(a.Tables),
		})
	}
	utils.RespondJSON(c, http.StatusOK, "Floor layout", areas)
}

func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Tables.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	id, err := parseID(c, "table_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

func (tc *TableController) GetTablesByArea(c *gin.Context) {
	tables, err := tc.Tables.ListByArea(c.Request.Context(), c.Param("area"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables in area", tables)
}

// UpdateTableStatus -> set available, occupied or reserved
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	id, err := parseID(c, "table_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
		Date   string `json:"date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.SetState(c.Request.Context(), id, body.Status, body.Date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.Broadcast(floor.EventTableUpdate, table)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

func (tc *TableController) GroupTables(c *gin.Context) {
	var body struct {
		PrincipalID uint `json:"principal_id" binding:"required"`
		SecondaryID uint `json:"secondary_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	group, err := tc.Tables.Group(c.Request.Context(), body.PrincipalID, body.SecondaryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.Broadcast(floor.EventTableGroup, group)
	utils.RespondJSON(c, http.StatusOK, "Tables grouped", group)
}

// UngroupTable -> dissolves the whole group the table is part of
func (tc *TableController) UngroupTable(c *gin.Context) {
	id, err := parseID(c, "table_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tables, err := tc.Tables.Ungroup(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.Broadcast(floor.EventTableUngroup, tables)
	utils.RespondJSON(c, http.StatusOK, "Tables ungrouped", tables)
}
