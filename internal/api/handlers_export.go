package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindful/internal/models"
	"github.com/terraincognita07/mindful/internal/services"
)

const (
	exportTokenHeader     = "X-Export-Token"
	exportNewBadgesHeader = "X-New-Badges"
)

type exportHistoryResponse struct {
	Exports []models.DataExport `json:"exports"`
}

type exportFunc func(user *models.User, from *time.Time, to *time.Time, now time.Time) (services.ExportDocument, error)

func (handler *Handler) ExportCSV(c *fiber.Ctx) error {
	return handler.sendExport(c, handler.exportService.ExportCSV)
}

func (handler *Handler) ExportPDF(c *fiber.Ctx) error {
	return handler.sendExport(c, handler.exportService.ExportPDF)
}

func (handler *Handler) sendExport(c *fiber.Ctx, export exportFunc) error {
	user, _ := currentUser(c)
	from, to, err := services.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	document, err := export(user, from, to, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, document.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+document.Filename+`"`)
	if document.Record.Token != "" {
		c.Set(exportTokenHeader, document.Record.Token)
	}
	c.Set(exportNewBadgesHeader, strconv.Itoa(len(document.NewBadges)))
	return c.Send(document.Body)
}

func (handler *Handler) ExportHistory(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	records, err := handler.exportService.History(user)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if records == nil {
		records = []models.DataExport{}
	}
	return c.JSON(exportHistoryResponse{Exports: records})
}
