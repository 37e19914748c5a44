package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Facture-2/Facture5-V2/internal/application/auth"
	"github.com/Facture-2/Facture5-V2/internal/application/dto"
	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
)

// AuthHandler maneja login, proveedor de identidad y registro.
type AuthHandler struct {
	svc *auth.Service
	log zerolog.Logger
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(svc *auth.Service, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

// Login godoc
// @Summary      Iniciar sesión con email y contraseña
// @Description  Prueba en orden operador, usuario gestionado y proveedor de identidad.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.AuthResponse
// @Success      202   {object}  dto.AuthResponse  "identidad verificada sin perfil de empresa"
// @Failure      401   {object}  dto.ErrorResponse  "INVALID_CREDENTIALS"
// @Failure      403   {object}  dto.ErrorResponse  "ACCOUNT_BLOCKED"
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	sess, err := h.svc.Authenticate(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return writeError(c, err)
	}
	if sess == nil {
		// Credenciales válidas en el proveedor pero sin perfil de empresa todavía.
		return c.Status(fiber.StatusAccepted).JSON(dto.AuthResponse{Pending: true})
	}
	return h.respond(c, fiber.StatusOK, sess)
}

// Provider godoc
// @Summary      Iniciar sesión con el proveedor de identidad
// @Description  Con popup_blocked=true devuelve 202 con redirect_url (flujo por redirección).
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProviderSignInRequest  true  "id_token del popup o popup_blocked"
// @Success      200   {object}  dto.AuthResponse
// @Success      202   {object}  dto.AuthResponse  "redirección pendiente"
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/auth/provider [post]
func (h *AuthHandler) Provider(c *fiber.Ctx) error {
	var in dto.ProviderSignInRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	res, err := h.svc.AuthenticateWithProvider(c.UserContext(), auth.ProviderSignIn{
		IDToken:      in.IDToken,
		PopupBlocked: in.PopupBlocked,
	})
	if err != nil {
		return writeError(c, err)
	}
	return h.respondResult(c, res)
}

// ProviderCallback godoc
// @Summary      Completar el flujo por redirección del proveedor
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProviderCallbackRequest  true  "URL de retorno y redirect_session"
// @Success      200   {object}  dto.AuthResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/auth/provider/callback [post]
func (h *AuthHandler) ProviderCallback(c *fiber.Ctx) error {
	var in dto.ProviderCallbackRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	res, err := h.svc.CompleteProviderRedirect(c.UserContext(), auth.RedirectCompletion{
		RequestURI: in.RequestURI,
		PostBody:   in.PostBody,
		SessionID:  in.RedirectSession,
	})
	if err != nil {
		return writeError(c, err)
	}
	return h.respondResult(c, res)
}

// ResolveSession godoc
// @Summary      Resolver la sesión de una identidad del proveedor
// @Description  Sin perfil de empresa responde 202 con pending=true.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResolveSessionRequest  true  "id_token"
// @Success      200   {object}  dto.AuthResponse
// @Success      202   {object}  dto.AuthResponse  "perfil pendiente"
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/session [post]
func (h *AuthHandler) ResolveSession(c *fiber.Ctx) error {
	var in dto.ResolveSessionRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	sess, err := h.svc.ResolveToken(c.UserContext(), in.IDToken)
	if err != nil {
		return writeError(c, err)
	}
	if sess == nil {
		return c.Status(fiber.StatusAccepted).JSON(dto.AuthResponse{Pending: true})
	}
	return h.respond(c, fiber.StatusOK, sess)
}

// Register godoc
// @Summary      Registrar empresa con email y contraseña
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "credenciales y datos de la empresa"
// @Success      201   {object}  dto.AuthResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	sess, err := h.svc.Register(c.UserContext(), in.Email, in.Password, in.Company.ToEntity())
	if err != nil {
		h.log.Warn().Err(err).Str("email", in.Email).Msg("registro")
		return writeError(c, err)
	}
	return h.respond(c, fiber.StatusCreated, sess)
}

// RegisterWithProvider godoc
// @Summary      Registrar empresa para una identidad del proveedor
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterWithProviderRequest  true  "id_token y datos de la empresa"
// @Success      201   {object}  dto.AuthResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/register/provider [post]
func (h *AuthHandler) RegisterWithProvider(c *fiber.Ctx) error {
	var in dto.RegisterWithProviderRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	sess, err := h.svc.RegisterWithProvider(c.UserContext(), in.IDToken, in.Company.ToEntity())
	if err != nil {
		return writeError(c, err)
	}
	return h.respond(c, fiber.StatusCreated, sess)
}

// PasswordReset godoc
// @Summary      Enviar email de restablecimiento de contraseña
// @Tags         auth
// @Accept       json
// @Param        body  body  dto.PasswordResetRequest  true  "email"
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/password-reset [post]
func (h *AuthHandler) PasswordReset(c *fiber.Ctx) error {
	var in dto.PasswordResetRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	if err := h.svc.SendPasswordReset(c.UserContext(), in.Email); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// respond emite el token de la sesión y la devuelve.
func (h *AuthHandler) respond(c *fiber.Ctx, status int, sess *entity.Session) error {
	token, err := h.svc.IssueToken(sess)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sess.ID).Msg("firmar token")
		return writeError(c, err)
	}
	return c.Status(status).JSON(dto.AuthResponse{Token: token, Session: dto.NewSessionResponse(sess)})
}

func (h *AuthHandler) respondResult(c *fiber.Ctx, res *auth.ProviderResult) error {
	if res.Pending {
		return c.Status(fiber.StatusAccepted).JSON(dto.AuthResponse{
			Pending:         true,
			RedirectURL:     res.RedirectURL,
			RedirectSession: res.RedirectSession,
		})
	}
	if res.Session == nil {
		return c.Status(fiber.StatusAccepted).JSON(dto.AuthResponse{Pending: true})
	}
	return h.respond(c, fiber.StatusOK, res.Session)
}
