package diary

import (
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

// TagPayload is the tag create body.
type TagPayload struct {
	Name string `form:"name" json:"name"`
}

// Validate will validate the payload
func (r TagPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 50)),
	)
}

// HandleListTags lists the user's tags alphabetically.
func (a *API) HandleListTags(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return ErrNotAuthenticated
	}

	records, err := a.repo.Tags().ListForUser(c.UserContext(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"items": records})
}

// HandleCreateTag creates a tag; duplicates return 409.
func (a *API) HandleCreateTag(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return ErrNotAuthenticated
	}

	payload := new(TagPayload)
	if err := c.BodyParser(payload); err != nil {
		return NewValidation("failed to parse body", map[string]any{"body": err.Error()})
	}

	if err := payload.Validate(); err != nil {
		return NewValidation("invalid tag payload", validationFields(err))
	}

	record, err := a.repo.Tags().Create(c.UserContext(), user.ID, payload.Name)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

// HandleDeleteTag removes a tag and detaches it from every entry.
func (a *API) HandleDeleteTag(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return ErrNotAuthenticated
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return NewValidation("invalid tag id", map[string]any{"id": c.Params("id")})
	}

	deleted, err := a.repo.Tags().Delete(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return NewNotFound("tag")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
