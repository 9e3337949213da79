package diary

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// RegisterPayload is the registration body.
type RegisterPayload struct {
	Email           string `form:"email" json:"email"`
	Name            string `form:"name" json:"name"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Name, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// LoginPayload is the credentials body.
type LoginPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// RefreshPayload optionally carries the refresh token in the body; the
// handler falls back to bearer header and cookie when it is absent.
type RefreshPayload struct {
	RefreshToken string `form:"refresh_token" json:"refresh_token"`
}

// ValidateStringEquals builds a rule that checks a field equals str.
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return fmt.Errorf("value does not match")
		}
		return nil
	}
}

// HandleRegister creates an account and returns the public record with 201.
func (a *API) HandleRegister(c *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := c.BodyParser(payload); err != nil {
		return NewValidation("failed to parse body", map[string]any{"body": err.Error()})
	}

	if err := payload.Validate(); err != nil {
		return NewValidation("invalid registration payload", validationFields(err))
	}

	user, err := a.auther.Register(c.UserContext(), RegisterInput{
		Email:           payload.Email,
		Name:            payload.Name,
		Password:        payload.Password,
		PasswordConfirm: payload.ConfirmPassword,
	})
	if err != nil {
		return err
	}

	a.logger.Debug("registered: %s", print.MaybePrettyJSON(fiber.Map{
		"id":    user.ID.String(),
		"email": user.Email,
	}))

	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleLogin verifies credentials and returns a token pair. With
// ?as_cookie=true the pair is additionally delivered as http-only cookies.
func (a *API) HandleLogin(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		return NewValidation("failed to parse body", map[string]any{"body": err.Error()})
	}

	if err := payload.Validate(); err != nil {
		return NewValidation("invalid login payload", validationFields(err))
	}

	pair, err := a.auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	if c.QueryBool("as_cookie") {
		a.transport.SetSessionCookies(c, pair)
	}

	return c.JSON(pair)
}

// HandleRefresh rotates a refresh token. The token is read from the body
// first, then the bearer header, then the refresh cookie.
func (a *API) HandleRefresh(c *fiber.Ctx) error {
	payload := new(RefreshPayload)
	// Body is optional here, parse failures just fall through to the header.
	_ = c.BodyParser(payload)

	raw := payload.RefreshToken
	if raw == "" {
		raw = a.transport.ExtractToken(c, TokenTypeRefresh)
	}

	pair, err := a.auther.Refresh(c.UserContext(), raw)
	if err != nil {
		return err
	}

	if c.QueryBool("as_cookie") || c.Cookies(CookieRefreshToken) != "" {
		a.transport.SetSessionCookies(c, pair)
	}

	return c.JSON(pair)
}

// HandleLogout revokes the presented tokens best-effort and clears the
// session cookies. It always succeeds.
func (a *API) HandleLogout(c *fiber.Ctx) error {
	rawAccess := a.transport.ExtractToken(c, TokenTypeAccess)
	rawRefresh := c.Cookies(CookieRefreshToken)

	payload := new(RefreshPayload)
	_ = c.BodyParser(payload)
	if payload.RefreshToken != "" {
		rawRefresh = payload.RefreshToken
	}

	result := a.auther.Logout(c.UserContext(), rawAccess, rawRefresh)
	a.transport.ClearSessionCookies(c)

	return c.JSON(fiber.Map{
		"message":         "logged out",
		"access_revoked":  result.AccessRevoked,
		"refresh_revoked": result.RefreshRevoked,
	})
}

// validationFields flattens ozzo's per-field errors into metadata.
func validationFields(err error) map[string]any {
	fields := map[string]any{}

	if verrs, ok := err.(validation.Errors); ok {
		for name, ferr := range verrs {
			fields[name] = ferr.Error()
		}
		return fields
	}

	fields["payload"] = err.Error()
	return fields
}
