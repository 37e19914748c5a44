package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Facture-2/Facture5-V2/internal/application/dto"
	"github.com/Facture-2/Facture5-V2/internal/application/reports"
)

// ReportHandler panel de reportes financieros.
type ReportHandler struct {
	uc *reports.UseCase
}

// NewReportHandler construye el handler de reportes.
func NewReportHandler(uc *reports.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Overview godoc
// @Summary      Resumen financiero del período
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        period  query  string  false  "week | month | quarter | year"  default(month)
// @Success      200  {object}  dto.ReportOverviewDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/reports/overview [get]
func (h *ReportHandler) Overview(c *fiber.Ctx) error {
	var in dto.ReportOverviewRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.Overview(c.UserContext(), GetSession(c), in.Period)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ExportPDF godoc
// @Summary      Exportar el resumen financiero en PDF
// @Tags         reports
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        period  query  string  false  "week | month | quarter | year"  default(month)
// @Success      200  {file}  binary
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/export.pdf [get]
func (h *ReportHandler) ExportPDF(c *fiber.Ctx) error {
	var in dto.ReportOverviewRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	pdf, filename, err := h.uc.ExportPDF(c.UserContext(), GetSession(c), in.Period)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}
