package main

import (
	"context"
	"fmt"
	"log"

	common_api "go-compliance/internal/common/api"
	"go-compliance/internal/config"
	"go-compliance/internal/database"
	"go-compliance/internal/features/aiquery"
	"go-compliance/internal/features/audit"
	"go-compliance/internal/features/executor"
	"go-compliance/internal/features/fields"
	"go-compliance/internal/features/property"
	"go-compliance/internal/features/report"
	"go-compliance/internal/features/schedule"
	"go-compliance/internal/features/system"
	"go-compliance/internal/features/user"
	"go-compliance/internal/logger"
	"go-compliance/internal/middleware"
	"go-compliance/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates the Fiber app instance shared by all routes.
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags a constructor so Fx collects it into the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every collected route.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d route groups\n", len(routes))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer runs Fiber in a goroutine and shuts it down with the app.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// runnerAdapter narrows the report runner to the shape the scheduler needs.
type runnerAdapter struct {
	runner report.RunnerService
}

func (a *runnerAdapter) RunForOrganization(ctx context.Context, organizationID, reportID string) (int64, error) {
	result, err := a.runner.RunForOrganization(ctx, organizationID, reportID)
	if err != nil {
		return 0, err
	}
	return result.TotalCount, nil
}

// userFinderAdapter converts user records to the audit package's view.
type userFinderAdapter struct {
	repo user.UserRepository
}

func (a *userFinderAdapter) FindByIDs(ctx context.Context, ids []string) ([]audit.User, error) {
	users, err := a.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]audit.User, len(users))
	for i, u := range users {
		out[i] = audit.User{ID: u.ID, Name: u.Name}
	}
	return out, nil
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			NewFiberServer,
			database.NewDatabase,

			audit.NewAuditRepository,
			user.NewUserRepository,
			property.NewPropertyRepository,
			report.NewReportRepository,
			schedule.NewScheduleRepository,

			audit.NewAuditService,
			fields.NewFieldRegistryService,
			report.NewReportService,
			report.NewRunnerService,
			report.NewScheduleBindingService,
			schedule.NewSchedulerService,
			executor.NewMongoExecutor,
			aiquery.NewClient,

			// Interface adapters to break cycles and satisfy Fx
			func(r user.UserRepository) audit.UserFinder { return &userFinderAdapter{repo: r} },
			func(s audit.AuditService) report.AuditLogger { return s },
			func(r report.RunnerService) schedule.ReportRunner { return &runnerAdapter{runner: r} },

			report.NewReportController,
			audit.NewAuditController,

			AsRoute(report.NewReportApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(system.NewHealthApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, scheduler schedule.SchedulerService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return scheduler.InitializeScheduler(ctx)
					},
					OnStop: func(ctx context.Context) error {
						return scheduler.StopScheduler()
					},
				})
			},
		),
	)

	app.Run()
}
