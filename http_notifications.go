package diary

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// HandleListNotifications lists the user's notifications, newest first.
// ?unread=true restricts to unread ones.
func (a *API) HandleListNotifications(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return ErrNotAuthenticated
	}

	records, err := a.repo.Notifications().ListForUser(c.UserContext(), user.ID, c.QueryBool("unread"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"items": records})
}

// HandleMarkNotificationRead marks one notification as read.
func (a *API) HandleMarkNotificationRead(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return ErrNotAuthenticated
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return NewValidation("invalid notification id", map[string]any{"id": c.Params("id")})
	}

	marked, err := a.repo.Notifications().MarkRead(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	if !marked {
		return NewNotFound("notification")
	}

	return c.JSON(fiber.Map{"id": id, "is_read": true})
}

// HandleMarkAllNotificationsRead marks every unread notification as read.
func (a *API) HandleMarkAllNotificationsRead(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return ErrNotAuthenticated
	}

	n, err := a.repo.Notifications().MarkAllRead(c.UserContext(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"marked": n})
}
