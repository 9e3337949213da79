package diary

import (
	"github.com/gofiber/fiber/v2"
)

// HandleSummarizeDiary runs the summarizer over an entry and persists the
// result on it.
func (a *API) HandleSummarizeDiary(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return ErrNotAuthenticated
	}

	id, err := diaryID(c)
	if err != nil {
		return err
	}

	entry, err := a.repo.Diaries().GetForUser(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}

	summary, err := a.ai.Summarize(c.UserContext(), entry.Title, entry.Content)
	if err != nil {
		return err
	}

	if err := a.repo.Diaries().SetSummary(c.UserContext(), user.ID, id, summary); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"id":         id,
		"ai_summary": summary,
	})
}

// HandleAnalyzeDiary runs sentiment analysis over an entry, stores the main
// emotion and keyword set, and pushes a notification about the result.
func (a *API) HandleAnalyzeDiary(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return ErrNotAuthenticated
	}

	id, err := diaryID(c)
	if err != nil {
		return err
	}

	entry, err := a.repo.Diaries().GetForUser(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}

	emotion, keywords, err := a.ai.Analyze(c.UserContext(), entry.Title+" "+entry.Content)
	if err != nil {
		return err
	}
	keywords = CleanKeywords(keywords)

	if err := a.repo.Diaries().SetEmotion(c.UserContext(), user.ID, id, emotion, keywords); err != nil {
		return err
	}

	if _, err := a.repo.Notifications().Push(c.UserContext(), &Notification{
		UserID: user.ID,
		Title:  "Diary analyzed",
		Body:   "Your entry \"" + entry.Title + "\" reads " + emotion + ".",
	}); err != nil {
		a.logger.Warn("failed to push analysis notification: %v", err)
	}

	return c.JSON(fiber.Map{
		"id":               id,
		"main_emotion":     emotion,
		"emotion_keywords": keywords,
	})
}
