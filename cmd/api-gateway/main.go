package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/siakad-go/siakad-api/api/swagger"
	"github.com/siakad-go/siakad-api/internal/handler"
	"github.com/siakad-go/siakad-api/internal/middleware"
	"github.com/siakad-go/siakad-api/internal/models"
	"github.com/siakad-go/siakad-api/internal/repository"
	"github.com/siakad-go/siakad-api/internal/service"
	"github.com/siakad-go/siakad-api/pkg/cache"
	"github.com/siakad-go/siakad-api/pkg/config"
	"github.com/siakad-go/siakad-api/pkg/database"
	"github.com/siakad-go/siakad-api/pkg/linktoken"
	"github.com/siakad-go/siakad-api/pkg/logger"
	corsmiddleware "github.com/siakad-go/siakad-api/pkg/middleware/cors"
	reqidmiddleware "github.com/siakad-go/siakad-api/pkg/middleware/requestid"
	"github.com/siakad-go/siakad-api/pkg/timeslot"
)

// @title Siakad API
// @version 1.0.0
// @description School information system backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	metricsService := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.ScheduleCache.TTL, logr, cfg.ScheduleCache.Enabled)

	userRepo := repository.NewUserRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	teacherSubjectRepo := repository.NewTeacherSubjectRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)

	authService := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     "siakad-api",
	})
	semesterService := service.NewSemesterService(semesterRepo, settingRepo, nil, logr)
	scheduleService := service.NewScheduleService(scheduleRepo, teacherSubjectRepo, semesterRepo, cacheService, nil, logr)
	attendanceService := service.NewAttendanceService(attendanceRepo, semesterService, metricsService, nil, logr)
	teacherSubjectService := service.NewTeacherSubjectService(teacherSubjectRepo, teacherRepo, subjectRepo, classRepo, nil, logr)
	gradeService := service.NewGradeService(gradeRepo, studentRepo, classRepo, semesterService, nil, logr)
	userService := service.NewUserService(userRepo, nil, logr)
	classService := service.NewClassService(classRepo, teacherRepo, nil, logr)
	subjectService := service.NewSubjectService(subjectRepo, nil, logr)
	teacherService := service.NewTeacherService(teacherRepo, nil, logr)
	studentService := service.NewStudentService(studentRepo, classRepo, gradeRepo, attendanceRepo, nil, logr)
	signer := linktoken.NewSigner(cfg.RegistrationLink.Secret, cfg.RegistrationLink.TTL)
	schoolService := service.NewSchoolService(schoolRepo, signer, nil, logr)
	exportService := service.NewExportService(scheduleService, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoAlpha.ScheduleEnabled {
		if minutes, ok := timeslot.ParseClockMinutes(cfg.AutoAlpha.RunAt); ok {
			scheduler := service.NewAutoAlphaScheduler(attendanceService, minutes/60, minutes%60, logr)
			scheduler.Start(ctx)
			defer scheduler.Stop()
		} else {
			logr.Sugar().Warnw("invalid auto alpha run time, scheduler disabled", "runAt", cfg.AutoAlpha.RunAt)
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	metricsHandler := handler.NewMetricsHandler(metricsService)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authService)
	semesterHandler := handler.NewSemesterHandler(semesterService)
	scheduleHandler := handler.NewScheduleHandler(scheduleService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	teacherSubjectHandler := handler.NewTeacherSubjectHandler(teacherSubjectService)
	gradeHandler := handler.NewGradeHandler(gradeService, teacherService)
	userHandler := handler.NewUserHandler(userService)
	classHandler := handler.NewClassHandler(classService)
	subjectHandler := handler.NewSubjectHandler(subjectService)
	teacherHandler := handler.NewTeacherHandler(teacherService)
	studentHandler := handler.NewStudentHandler(studentService)
	schoolHandler := handler.NewSchoolHandler(schoolService)
	exportHandler := handler.NewExportHandler(exportService)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/school/profile", schoolHandler.Profile)
	api.GET("/school/achievements", schoolHandler.ListAchievements)
	api.GET("/school/programs", schoolHandler.ListPrograms)
	api.GET("/school/registration-links/validate", schoolHandler.ValidateRegistrationLink)

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleGuru, models.RoleWalikelas)

	secured := api.Group("")
	secured.Use(middleware.JWT(authService))

	secured.GET("/auth/me", authHandler.Me)

	secured.GET("/semesters", semesterHandler.List)
	secured.GET("/semesters/:id", semesterHandler.Get)
	secured.POST("/semesters", adminOnly, semesterHandler.Create)
	secured.PUT("/semesters/:id", adminOnly, semesterHandler.Update)
	secured.DELETE("/semesters/:id", adminOnly, semesterHandler.Delete)
	secured.GET("/settings/semester-enforcement", semesterHandler.GetEnforcementMode)
	secured.PUT("/settings/semester-enforcement", adminOnly, semesterHandler.SetEnforcementMode)

	secured.GET("/schedules", scheduleHandler.List)
	secured.GET("/schedules/:id", scheduleHandler.Get)
	secured.POST("/schedules", adminOnly, scheduleHandler.Create)
	secured.PUT("/schedules/:id", adminOnly, scheduleHandler.Update)
	secured.DELETE("/schedules/:id", adminOnly, scheduleHandler.Delete)

	secured.GET("/attendance", staff, attendanceHandler.List)
	secured.POST("/attendance", staff, attendanceHandler.Create)
	secured.PUT("/attendance/:id", staff, attendanceHandler.Update)
	secured.DELETE("/attendance/:id", staff, attendanceHandler.Delete)
	secured.POST("/attendance/auto-alpha", adminOnly, attendanceHandler.AutoAlpha)

	secured.GET("/teacher-subjects", teacherSubjectHandler.List)
	secured.GET("/teacher-subjects/:id", teacherSubjectHandler.Get)
	secured.POST("/teacher-subjects", adminOnly, teacherSubjectHandler.Create)
	secured.DELETE("/teacher-subjects/:id", adminOnly, teacherSubjectHandler.Delete)

	secured.GET("/grades", gradeHandler.List)
	secured.POST("/grades", staff, gradeHandler.Create)
	secured.PUT("/grades/:id", staff, gradeHandler.Update)
	secured.POST("/grades/:id/verify", middleware.RequireRoles(models.RoleGuru, models.RoleWalikelas), gradeHandler.Verify)
	secured.DELETE("/grades/:id", adminOnly, gradeHandler.Delete)

	secured.GET("/users", adminOnly, userHandler.List)
	secured.GET("/users/:id", middleware.RBAC(string(models.RoleAdmin), middleware.AllowSelf), userHandler.Get)
	secured.POST("/users", adminOnly, userHandler.Create)
	secured.PUT("/users/:id", adminOnly, userHandler.Update)
	secured.DELETE("/users/:id", adminOnly, userHandler.Delete)

	secured.GET("/classes", classHandler.List)
	secured.GET("/classes/:id", classHandler.Get)
	secured.POST("/classes", adminOnly, classHandler.Create)
	secured.PUT("/classes/:id", adminOnly, classHandler.Update)
	secured.DELETE("/classes/:id", adminOnly, classHandler.Delete)

	secured.GET("/subjects", subjectHandler.List)
	secured.GET("/subjects/:id", subjectHandler.Get)
	secured.POST("/subjects", adminOnly, subjectHandler.Create)
	secured.PUT("/subjects/:id", adminOnly, subjectHandler.Update)
	secured.DELETE("/subjects/:id", adminOnly, subjectHandler.Delete)

	secured.GET("/teachers", teacherHandler.List)
	secured.GET("/teachers/:id", teacherHandler.Get)
	secured.POST("/teachers", adminOnly, teacherHandler.Create)
	secured.PUT("/teachers/:id", adminOnly, teacherHandler.Update)
	secured.DELETE("/teachers/:id", adminOnly, teacherHandler.Delete)

	secured.GET("/students", staff, studentHandler.List)
	secured.GET("/students/:id", staff, studentHandler.Get)
	secured.GET("/students/:id/raport", staff, studentHandler.Raport)
	secured.POST("/students", adminOnly, studentHandler.Create)
	secured.PUT("/students/:id", adminOnly, studentHandler.Update)
	secured.DELETE("/students/:id", adminOnly, studentHandler.Delete)

	secured.PUT("/school/profile", adminOnly, schoolHandler.SaveProfile)
	secured.POST("/school/achievements", adminOnly, schoolHandler.CreateAchievement)
	secured.DELETE("/school/achievements/:id", adminOnly, schoolHandler.DeleteAchievement)
	secured.POST("/school/programs", adminOnly, schoolHandler.CreateProgram)
	secured.DELETE("/school/programs/:id", adminOnly, schoolHandler.DeleteProgram)
	secured.POST("/school/registration-links", adminOnly, schoolHandler.CreateRegistrationLink)

	secured.GET("/export/timetable", staff, exportHandler.Timetable)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
