package diary

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// API mounts the HTTP surface on a Fiber app. Construct it with the wired
// orchestrator and stores, then call Router on an app or group.
type API struct {
	auther    *Auther
	transport *SessionTransport
	repo      RepositoryManager
	ai        AIProvider
	logger    Logger
}

func NewAPI(auther *Auther, repo RepositoryManager, cfg Config) *API {
	return &API{
		auther:    auther,
		transport: NewSessionTransport(cfg),
		repo:      repo,
		ai:        NewRuleBasedProvider(),
		logger:    defLogger{},
	}
}

func (a *API) WithLogger(logger Logger) *API {
	a.logger = logger
	return a
}

func (a *API) WithAIProvider(provider AIProvider) *API {
	a.ai = provider
	return a
}

// NewServer builds a Fiber app with the API mounted under /api/v1 and the
// uniform error handler installed.
func NewServer(api *API) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "diary",
		ErrorHandler: api.ErrorHandler,
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api.Router(app.Group("/api/v1"))

	return app
}

// Router mounts every route group.
func (a *API) Router(router fiber.Router) {
	auth := router.Group("/auth")
	auth.Post("/register", a.HandleRegister)
	auth.Post("/login", a.HandleLogin)
	auth.Post("/refresh", a.HandleRefresh)
	auth.Post("/logout", a.HandleLogout)

	users := router.Group("/users", a.RequireAuth)
	users.Get("/me", a.HandleGetMe)
	users.Patch("/me", a.HandleUpdateMe)
	users.Delete("/me", a.HandleDeleteMe)

	diaries := router.Group("/diaries", a.RequireAuth)
	diaries.Post("/", a.HandleCreateDiary)
	diaries.Get("/", a.HandleListDiaries)
	diaries.Get("/:id", a.HandleGetDiary)
	diaries.Put("/:id", a.HandleUpdateDiary)
	diaries.Delete("/:id", a.HandleDeleteDiary)
	diaries.Post("/:id/summarize", a.HandleSummarizeDiary)
	diaries.Post("/:id/analyze", a.HandleAnalyzeDiary)

	tags := router.Group("/tags", a.RequireAuth)
	tags.Get("/", a.HandleListTags)
	tags.Post("/", a.HandleCreateTag)
	tags.Delete("/:id", a.HandleDeleteTag)

	notifications := router.Group("/notifications", a.RequireAuth)
	notifications.Get("/", a.HandleListNotifications)
	notifications.Post("/:id/read", a.HandleMarkNotificationRead)
	notifications.Post("/read-all", a.HandleMarkAllNotificationsRead)
}

// RequireAuth resolves the access token (bearer header first, cookie second)
// into a user and stores it on the request. Every failure renders the same
// 401.
func (a *API) RequireAuth(c *fiber.Ctx) error {
	raw := a.transport.ExtractToken(c, TokenTypeAccess)

	user, err := a.auther.CurrentUser(c.UserContext(), raw)
	if err != nil {
		return err
	}

	setRequestUser(c, user)
	return c.Next()
}

// ErrorHandler renders rich errors. Every auth-category failure collapses to
// one body so clients cannot distinguish missing, malformed, expired, and
// revoked credentials.
func (a *API) ErrorHandler(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	if IsAuthError(err) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": fiber.Map{
				"message":   "not authenticated",
				"text_code": "NOT_AUTHENTICATED",
			},
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiber.Map{"message": fiberErr.Message},
		})
	}

	status := HTTPStatus(err)

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		body := fiber.Map{"message": richErr.Message}
		if richErr.TextCode != "" {
			body["text_code"] = richErr.TextCode
		}
		if status < fiber.StatusInternalServerError && len(richErr.Metadata) > 0 {
			body["metadata"] = richErr.Metadata
		}
		if status >= fiber.StatusInternalServerError {
			a.logger.Error("request failed: %v", err)
			body["message"] = "internal server error"
		}
		return c.Status(status).JSON(fiber.Map{"error": body})
	}

	a.logger.Error("request failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{"message": "internal server error"},
	})
}
