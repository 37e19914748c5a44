package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Facture-2/Facture5-V2/internal/application/auth"
	"github.com/Facture-2/Facture5-V2/internal/application/dto"
	"github.com/Facture-2/Facture5-V2/internal/domain"
)

// CompanyHandler ajustes de la empresa de la sesión.
type CompanyHandler struct {
	svc *auth.Service
}

// NewCompanyHandler construye el handler inyectando el servicio de sesión.
func NewCompanyHandler(svc *auth.Service) *CompanyHandler {
	return &CompanyHandler{svc: svc}
}

// UpdateSettings godoc
// @Summary      Actualizar ajustes de la empresa
// @Description  Fusiona solo los campos presentes en el cuerpo.
// @Tags         company
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.UpdateCompanySettingsRequest  true  "campos a modificar"
// @Success      200   {object}  dto.CompanyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/company/settings [patch]
func (h *CompanyHandler) UpdateSettings(c *fiber.Ctx) error {
	var in dto.UpdateCompanySettingsRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	patch := in.ToFields()
	if len(patch) == 0 {
		return writeError(c, domain.ErrInvalidInput)
	}
	sess, err := h.svc.UpdateSettings(c.UserContext(), GetSession(c), patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewCompanyResponse(&sess.Company))
}
