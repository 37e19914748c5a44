package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Facture-2/Facture5-V2/internal/application/auth"
	"github.com/Facture-2/Facture5-V2/internal/application/dto"
	"github.com/Facture-2/Facture5-V2/internal/domain"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

// SessionHandler operaciones sobre la sesión actual y la suscripción.
type SessionHandler struct {
	svc *auth.Service
	log zerolog.Logger
}

// NewSessionHandler construye el handler de sesión.
func NewSessionHandler(svc *auth.Service, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, log: log}
}

// Current godoc
// @Summary      Sesión actual y estado de la suscripción
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.SessionResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/session [get]
func (h *SessionHandler) Current(c *fiber.Ctx) error {
	return c.JSON(dto.NewSessionResponse(GetSession(c)))
}

// VerifyEmail godoc
// @Summary      Reenviar email de verificación
// @Tags         session
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  dto.VerifyEmailRequest  false  "id_token fresco opcional"
// @Success      204
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/session/verify-email [post]
func (h *SessionHandler) VerifyEmail(c *fiber.Ctx) error {
	var in dto.VerifyEmailRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return writeError(c, err)
		}
	}
	if err := h.svc.SendEmailVerification(c.UserContext(), GetSession(c), in.IDToken); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Logout godoc
// @Summary      Cerrar sesión
// @Tags         session
// @Security     BearerAuth
// @Success      204
// @Router       /api/session/logout [post]
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	h.svc.Logout(c.UserContext(), GetSession(c))
	return c.SendStatus(fiber.StatusNoContent)
}

// DismissExpiryNotice godoc
// @Summary      Descartar el aviso de expiración
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/session/expiry-notice [delete]
func (h *SessionHandler) DismissExpiryNotice(c *fiber.Ctx) error {
	sess, err := h.svc.DismissExpiryNotice(c.UserContext(), GetSession(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSessionResponse(sess))
}

// Upgrade godoc
// @Summary      Activar el plan pro (30 días)
// @Tags         subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.SessionResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/subscription/upgrade [post]
func (h *SessionHandler) Upgrade(c *fiber.Ctx) error {
	sess, err := h.svc.Upgrade(c.UserContext(), GetSession(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSessionResponse(sess))
}

// CheckSubscription godoc
// @Summary      Comprobar la expiración de la suscripción
// @Description  Si la suscripción pro expiró pasa la empresa a free y adjunta el aviso.
// @Tags         subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.SubscriptionCheckResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/subscription/check [post]
func (h *SessionHandler) CheckSubscription(c *fiber.Ctx) error {
	sess := GetSession(c)
	if sess.Kind == entity.AccountPrivileged || sess.CompanyID == "" {
		return writeError(c, domain.ErrForbidden)
	}
	notice, err := h.svc.CheckExpiry(c.UserContext(), sess.CompanyID)
	if err != nil {
		return writeError(c, err)
	}
	if notice != nil && sess.Kind == entity.AccountOwner {
		sess.ExpiryNotice = notice
	}
	sess, err = h.svc.Refresh(c.UserContext(), sess)
	if err != nil {
		return writeError(c, err)
	}

	out := dto.SubscriptionCheckResponse{
		Downgraded: notice != nil,
		Status:     sess.Status,
		Session:    dto.NewSessionResponse(sess),
	}
	if notice != nil {
		expiredAt := notice.ExpiredAt
		out.ExpiredAt = &expiredAt
	}
	return c.JSON(out)
}
