package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/yigit/termsched/internal/app/auth"
	appControllers "github.com/yigit/termsched/internal/app/controllers"
	appMigrations "github.com/yigit/termsched/internal/app/migrations"
	appRepos "github.com/yigit/termsched/internal/app/repositories"
	"github.com/yigit/termsched/internal/app/repositories/memory"
	appRoutes "github.com/yigit/termsched/internal/app/routes"
	appServices "github.com/yigit/termsched/internal/app/services"
	"github.com/yigit/termsched/internal/config"
	"github.com/yigit/termsched/internal/db"
	appMiddleware "github.com/yigit/termsched/internal/middleware"
	pkgAuth "github.com/yigit/termsched/internal/pkg/auth"
	"github.com/yigit/termsched/internal/pkg/helpers"
	"github.com/yigit/termsched/internal/pkg/logger"
	"github.com/yigit/termsched/internal/seed"
)

// DefaultConfigPath is where the service looks for its YAML file
const DefaultConfigPath = "configs/config.yaml"

// Storage is the opened backend together with the stores built on it
type Storage struct {
	Driver string
	Stores appServices.Stores
	// Pool is nil for the memory driver
	Pool *pgxpool.Pool
}

// Close releases the backend
func (s *Storage) Close() {
	if s != nil && s.Pool != nil {
		s.Pool.Close()
	}
}

// Ping checks the backend is reachable
func (s *Storage) Ping(ctx context.Context) error {
	if s.Pool == nil {
		return nil
	}
	return s.Pool.Ping(ctx)
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	SemesterService     appServices.SemesterService
	CourseService       appServices.CourseService
	SchedulingService   appServices.SchedulingService
	RegistrationService appServices.RegistrationService
	TimetableService    appServices.TimetableService
	RoomService         appServices.RoomService
	Controllers         appRoutes.Controllers
	AuthMiddleware      *appMiddleware.AuthMiddleware
	JWTService          *pkgAuth.JWTService
	AuthzService        *appAuth.AuthorizationService
	Storage             *Storage
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// OpenStorage connects the configured backend and, for PostgreSQL, applies
// pending migrations when enabled.
func OpenStorage(cfg *config.Config, lgr zerolog.Logger) (*Storage, error) {
	if cfg.Database.Driver == config.DriverMemory {
		lgr.Warn().Msg("Using in-memory storage; data is lost on restart")
		mem := memory.Open()
		return &Storage{
			Driver: config.DriverMemory,
			Stores: appServices.Stores{
				Semesters:     mem,
				Courses:       mem,
				Ledger:        mem,
				Events:        mem,
				Registrations: mem,
				Rooms:         mem,
			},
		}, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if cfg.Database.MigrateOnStart {
		if err := RunMigrations(database.Pool, lgr); err != nil {
			database.Close()
			return nil, err
		}
	}

	repos := appRepos.NewRepositories(database.Pool)
	return &Storage{
		Driver: config.DriverPostgres,
		Pool:   database.Pool,
		Stores: appServices.Stores{
			Semesters:     repos.SemesterRepository,
			Courses:       repos.CourseRepository,
			Ledger:        repos.SectionLedger,
			Events:        repos.EventRepository,
			Registrations: repos.RegistrationRepository,
			Rooms:         repos.RoomRepository,
		},
	}, nil
}

// RunMigrations applies the embedded schema migrations
func RunMigrations(pool *pgxpool.Pool, lgr zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(pool, appMigrations.Files(), lgr)
	if err := migrator.Up(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// BuildDependencies initializes services, middleware and controllers on top
// of the opened storage.
func BuildDependencies(cfg *config.Config, storage *Storage, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr, Storage: storage}

	deps.AuthzService = appAuth.NewAuthorizationService()
	deps.JWTService = NewJWTService(cfg)

	stores := storage.Stores
	deps.SchedulingService = appServices.NewSchedulingService(stores, lgr)
	deps.SemesterService = appServices.NewSemesterService(stores, deps.SchedulingService, lgr)
	deps.CourseService = appServices.NewCourseService(stores, deps.SchedulingService, deps.AuthzService,
		appServices.CourseOptions{MirrorFirstSection: cfg.Scheduling.MirrorFirstSection}, lgr)
	deps.RegistrationService = appServices.NewRegistrationService(stores, deps.AuthzService,
		appServices.RegistrationOptions{EnforceAddWindow: cfg.Registration.EnforceAddWindow}, lgr)
	deps.TimetableService = appServices.NewTimetableService(stores, deps.AuthzService, lgr)
	deps.RoomService = appServices.NewRoomService(stores, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Controllers = appRoutes.Controllers{
		Semester:     appControllers.NewSemesterController(deps.SemesterService),
		Course:       appControllers.NewCourseController(deps.CourseService),
		Registration: appControllers.NewRegistrationController(deps.RegistrationService),
		Timetable:    appControllers.NewTimetableController(deps.TimetableService),
		Room:         appControllers.NewRoomController(deps.RoomService),
		Health:       appControllers.NewHealthController(storage, storage.Driver),
	}

	if cfg.Seed.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := seed.CreateDefaultData(ctx, deps.SemesterService, deps.CourseService, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return deps
}

// NewJWTService builds the token verifier from configuration
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(logger.Component("http")))

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}
