package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.Logout)

	api.Get("/profile", handler.AuthRequired, handler.GetProfile)
	api.Patch("/profile", handler.AuthRequired, handler.UpdateProfile)

	today := api.Group("/today", handler.AuthRequired)
	today.Get("", handler.GetToday)
	today.Delete("", handler.ResetToday)
	today.Post("/intention", handler.SetIntention)
	today.Post("/action", handler.CommitAction)
	today.Post("/action/outcome", handler.RecordActionOutcome)
	today.Post("/reflection", handler.CompleteReflection)

	api.Get("/entries", handler.AuthRequired, handler.ListEntries)
	api.Get("/stats", handler.AuthRequired, handler.GetStats)
	api.Get("/analytics", handler.AuthRequired, handler.GetAnalytics)

	badges := api.Group("/badges", handler.AuthRequired)
	badges.Get("", handler.GetBadges)
	badges.Post("/evaluate", handler.EvaluateBadges)

	goals := api.Group("/goals", handler.AuthRequired)
	goals.Get("", handler.ListGoals)
	goals.Post("", handler.CreateGoal)
	goals.Put("/:id", handler.UpdateGoal)
	goals.Delete("/:id", handler.DeleteGoal)

	habits := api.Group("/habits", handler.AuthRequired)
	habits.Get("", handler.ListHabits)
	habits.Post("", handler.CreateHabit)
	habits.Put("/:id", handler.UpdateHabit)
	habits.Delete("/:id", handler.DeleteHabit)
	habits.Post("/:id/complete", handler.CompleteHabit)
	habits.Delete("/:id/complete", handler.UncompleteHabit)
	habits.Get("/:id/stats", handler.GetHabitStats)

	export := api.Group("/export", handler.AuthRequired)
	export.Get("/csv", handler.ExportCSV)
	export.Get("/pdf", handler.ExportPDF)
	export.Get("/history", handler.ExportHistory)

	notifications := api.Group("/notifications/preferences", handler.AuthRequired)
	notifications.Get("", handler.ListReminders)
	notifications.Post("", handler.CreateReminder)
	notifications.Patch("/:id", handler.UpdateReminder)
	notifications.Delete("/:id", handler.DeleteReminder)

	push := api.Group("/push/subscriptions", handler.AuthRequired)
	push.Post("", handler.RegisterPushSubscription)
	push.Delete("", handler.UnregisterPushSubscription)

	ai := api.Group("/ai", handler.AuthRequired)
	ai.Post("/prompt", handler.GeneratePrompt)
	ai.Get("/prompt/history", handler.PromptHistory)

	coach := api.Group("/coach", handler.AuthRequired)
	coach.Get("/messages", handler.GetCoachConversation)
	coach.Post("/messages", handler.SendCoachMessage)

	settings := api.Group("/settings", handler.AuthRequired)
	settings.Post("/password", handler.ChangePassword)
	settings.Post("/reset-data", handler.ResetAllData)
	settings.Post("/reset-badges", handler.ResetBadges)
	settings.Delete("/account", handler.DeleteAccount)
}
