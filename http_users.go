package diary

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/nyaruka/phonenumbers"
)

// UpdateMePayload carries the mutable profile fields. Omitted fields stay
// unchanged; changing the password requires the current one.
type UpdateMePayload struct {
	Name            *string `form:"name" json:"name"`
	Nickname        *string `form:"nickname" json:"nickname"`
	Phone           *string `form:"phone_number" json:"phone_number"`
	Password        *string `form:"password" json:"password"`
	CurrentPassword string  `form:"current_password" json:"current_password"`
}

// Validate will validate the payload
func (r UpdateMePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, 200)),
		validation.Field(&r.Nickname, validation.Length(1, 100)),
		validation.Field(&r.Phone, validation.By(validatePhone)),
		validation.Field(&r.Password, validation.Length(8, 100)),
	)
}

func validatePhone(value any) error {
	raw, ok := value.(*string)
	if !ok || raw == nil || *raw == "" {
		return nil
	}

	parsed, err := phonenumbers.Parse(*raw, "US")
	if err != nil {
		return err
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return fmt.Errorf("must be a valid phone number")
	}
	return nil
}

// HandleGetMe returns the authenticated account.
func (a *API) HandleGetMe(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return ErrNotAuthenticated
	}
	return c.JSON(user)
}

// HandleUpdateMe patches the authenticated account. A password change
// verifies the current password first and stores a fresh hash.
func (a *API) HandleUpdateMe(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return ErrNotAuthenticated
	}

	payload := new(UpdateMePayload)
	if err := c.BodyParser(payload); err != nil {
		return NewValidation("failed to parse body", map[string]any{"body": err.Error()})
	}

	if err := payload.Validate(); err != nil {
		return NewValidation("invalid profile payload", validationFields(err))
	}

	patch := UserPatch{
		Name:     payload.Name,
		Nickname: payload.Nickname,
	}

	if payload.Phone != nil {
		formatted := *payload.Phone
		if formatted != "" {
			if parsed, err := phonenumbers.Parse(formatted, "US"); err == nil {
				formatted = phonenumbers.Format(parsed, phonenumbers.E164)
			}
		}
		patch.Phone = &formatted
	}

	if payload.Password != nil && *payload.Password != "" {
		if !VerifyPassword(payload.CurrentPassword, user.PasswordHash) {
			return ErrInvalidCredentials
		}

		hash, err := HashPassword(*payload.Password)
		if err != nil {
			return err
		}
		patch.PasswordHash = &hash
	}

	updated, err := a.repo.Users().UpdateFields(c.UserContext(), user.ID, patch)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// HandleDeleteMe removes the account and revokes the presented tokens.
func (a *API) HandleDeleteMe(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return ErrNotAuthenticated
	}

	deleted, err := a.repo.Users().Delete(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return NewNotFound("user")
	}

	rawAccess := a.transport.ExtractToken(c, TokenTypeAccess)
	rawRefresh := c.Cookies(CookieRefreshToken)
	a.auther.Logout(c.UserContext(), rawAccess, rawRefresh)
	a.transport.ClearSessionCookies(c)

	return c.SendStatus(fiber.StatusNoContent)
}
