package diary

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

// DiaryPayload is the create/update body. Date is RFC 3339 or YYYY-MM-DD;
// empty means now on create, unchanged on update.
type DiaryPayload struct {
	Title     string   `form:"title" json:"title"`
	Content   string   `form:"content" json:"content"`
	Mood      string   `form:"mood" json:"mood"`
	Date      string   `form:"date" json:"date"`
	IsPrivate *bool    `form:"is_private" json:"is_private"`
	Tags      []string `form:"tags" json:"tags"`
}

// Validate will validate the payload
func (r DiaryPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Content, validation.Required, validation.Length(1, 50000)),
		validation.Field(&r.Mood, validation.Length(0, 50)),
		validation.Field(&r.Date, validation.By(validateDate)),
	)
}

func validateDate(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	if _, err := parseDate(raw); err != nil {
		return fmt.Errorf("must be RFC 3339 or YYYY-MM-DD")
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// HandleCreateDiary creates an entry for the authenticated user.
func (a *API) HandleCreateDiary(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return ErrNotAuthenticated
	}

	payload := new(DiaryPayload)
	if err := c.BodyParser(payload); err != nil {
		return NewValidation("failed to parse body", map[string]any{"body": err.Error()})
	}

	if err := payload.Validate(); err != nil {
		return NewValidation("invalid diary payload", validationFields(err))
	}

	entry := &Diary{
		UserID:    user.ID,
		Title:     payload.Title,
		Content:   payload.Content,
		Mood:      payload.Mood,
		IsPrivate: true,
	}
	if payload.IsPrivate != nil {
		entry.IsPrivate = *payload.IsPrivate
	}
	if payload.Date != "" {
		date, _ := parseDate(payload.Date)
		entry.Date = date
	}

	created, err := a.repo.Diaries().Create(c.UserContext(), entry)
	if err != nil {
		return err
	}

	if len(payload.Tags) > 0 {
		if err := a.repo.Diaries().SetTags(c.UserContext(), created, payload.Tags); err != nil {
			return err
		}
		return a.renderDiary(c, user, created.ID, fiber.StatusCreated)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleListDiaries lists the user's entries with optional q, date_from,
// date_to, order, page, and page_size query filters.
func (a *API) HandleListDiaries(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return ErrNotAuthenticated
	}

	params := ListDiariesParams{
		Query:    strings.TrimSpace(c.Query("q")),
		Order:    c.Query("order"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}

	if raw := c.Query("date_from"); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			return NewValidation("invalid date_from", map[string]any{"date_from": raw})
		}
		params.DateFrom = &date
	}
	if raw := c.Query("date_to"); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			return NewValidation("invalid date_to", map[string]any{"date_to": raw})
		}
		params.DateTo = &date
	}

	entries, err := a.repo.Diaries().List(c.UserContext(), user.ID, params)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"items":     entries,
		"page":      params.Page,
		"page_size": params.PageSize,
	})
}

// HandleGetDiary returns one entry owned by the user.
func (a *API) HandleGetDiary(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return ErrNotAuthenticated
	}

	id, err := diaryID(c)
	if err != nil {
		return err
	}

	return a.renderDiary(c, user, id, fiber.StatusOK)
}

// HandleUpdateDiary replaces the mutable fields of an entry.
func (a *API) HandleUpdateDiary(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return ErrNotAuthenticated
	}

	id, err := diaryID(c)
	if err != nil {
		return err
	}

	payload := new(DiaryPayload)
	if err := c.BodyParser(payload); err != nil {
		return NewValidation("failed to parse body", map[string]any{"body": err.Error()})
	}

	if err := payload.Validate(); err != nil {
		return NewValidation("invalid diary payload", validationFields(err))
	}

	current, err := a.repo.Diaries().GetForUser(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}

	current.Title = payload.Title
	current.Content = payload.Content
	current.Mood = payload.Mood
	if payload.IsPrivate != nil {
		current.IsPrivate = *payload.IsPrivate
	}
	if payload.Date != "" {
		date, _ := parseDate(payload.Date)
		current.Date = date
	}

	updated, err := a.repo.Diaries().Update(c.UserContext(), current)
	if err != nil {
		return err
	}

	if payload.Tags != nil {
		if err := a.repo.Diaries().SetTags(c.UserContext(), updated, payload.Tags); err != nil {
			return err
		}
		return a.renderDiary(c, user, updated.ID, fiber.StatusOK)
	}

	return c.JSON(updated)
}

// HandleDeleteDiary removes an entry and its join rows.
func (a *API) HandleDeleteDiary(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return ErrNotAuthenticated
	}

	id, err := diaryID(c)
	if err != nil {
		return err
	}

	deleted, err := a.repo.Diaries().Delete(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return NewNotFound("diary")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (a *API) renderDiary(c *fiber.Ctx, user *User, id int64, status int) error {
	entry, err := a.repo.Diaries().GetForUser(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	return c.Status(status).JSON(entry)
}

func diaryID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, NewValidation("invalid diary id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}
