package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-reservations/reports"
	"github.com/yeremiapane/table-reservations/services"
	"github.com/yeremiapane/table-reservations/utils"
)

type ReportController struct {
	Reports *services.ReportService
	Title   string
}

func NewReportController(reports *services.ReportService, title string) *ReportController {
	return &ReportController{Reports: reports, Title: title}
}

// ExportReport -> PDF or XLSX download for a date range
func (rc *ReportController) ExportReport(c *gin.Context) {
	var body struct {
		From   string `json:"from" binding:"required"`
		To     string `json:"to" binding:"required"`
		Format string `json:"format" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	renderer, err := reports.ForFormat(body.Format, rc.Title)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	report, err := rc.Reports.Build(c.Request.Context(), body.From, body.To)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out, err := renderer.Render(report)
	if err != nil {
		utils.ErrorLogger.Errorf("Cannot render %s report: %v", renderer.Extension(), err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("cannot render report"))
		return
	}

	name := reports.FileName(report, renderer)
	utils.InfoLogger.WithFields(logrus.Fields{
		"file": name,
		"rows": len(report.Rows),
	}).Info("Report exported")

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, renderer.ContentType(), out)
}
