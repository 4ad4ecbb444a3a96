package report

import (
	"go-compliance/internal/config"
	"go-compliance/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	ReportController *ReportController
	Config           *config.Config
}

func NewReportApi(reportController *ReportController, config *config.Config) *ReportApi {
	return &ReportApi{
		ReportController: reportController,
		Config:           config,
	}
}

func (api *ReportApi) Setup(app *fiber.App) {
	group := app.Group("/api/reports", middleware.AuthMiddleware(api.Config.SkipAuth))

	// Static paths first so they are not captured by /:id.
	group.Get("/fields/:entityType", api.ReportController.GetFields)
	group.Get("/templates", api.ReportController.ListTemplates)
	group.Post("/ai-generate", api.ReportController.AIGenerate)

	group.Post("/", api.ReportController.CreateReport)
	group.Get("/", api.ReportController.ListReports)
	group.Get("/:id", api.ReportController.GetReport)
	group.Put("/:id", api.ReportController.UpdateReport)
	group.Delete("/:id", api.ReportController.DeleteReport)

	group.Post("/:id/duplicate", api.ReportController.DuplicateReport)
	group.Post("/:id/favorite", api.ReportController.ToggleFavorite)
	group.Post("/:id/run", api.ReportController.RunReport)
	group.Post("/:id/export", api.ReportController.ExportReport)

	group.Post("/:id/schedule", api.ReportController.CreateSchedule)
	group.Get("/:id/schedule", api.ReportController.GetSchedule)
	group.Put("/:id/schedule", api.ReportController.UpdateSchedule)
	group.Delete("/:id/schedule", api.ReportController.DeleteSchedule)
	group.Post("/:id/schedule/pause", api.ReportController.PauseSchedule)
	group.Post("/:id/schedule/resume", api.ReportController.ResumeSchedule)
	group.Post("/:id/schedule/run-now", api.ReportController.RunScheduleNow)
}
