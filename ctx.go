package diary

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

const localsUserKey = "diary:user"

// UserFromRequest returns the authenticated user the RequireAuth middleware
// stored on the request.
func UserFromRequest(c *fiber.Ctx) (*User, bool) {
	raw, ok := c.Locals(localsUserKey).(*User)
	return raw, ok
}

func setRequestUser(c *fiber.Ctx, user *User) {
	c.Locals(localsUserKey, user)
	c.SetUserContext(WithContext(c.UserContext(), user))
}
