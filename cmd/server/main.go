package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"soilwatch/config"
	"soilwatch/database"
	"soilwatch/router"

	"soilwatch/pkg/middleware"
	"soilwatch/pkg/provider"
	"soilwatch/pkg/userdir"

	// Field
	fieldCtrlImp "soilwatch/pkg/field/controllerImp"
	fieldRepoImp "soilwatch/pkg/field/repositoryImp"
	fieldSvcImp "soilwatch/pkg/field/serviceImp"

	// Polygon sync
	syncRepoImp "soilwatch/pkg/polygonsync/repositoryImp"
	syncSvcImp "soilwatch/pkg/polygonsync/serviceImp"

	// Satellite statistics
	satCtrlImp "soilwatch/pkg/satellite/controllerImp"
	obsRepoImp "soilwatch/pkg/satellite/repositoryImp"
	statsSvcImp "soilwatch/pkg/satellite/serviceImp"

	// Notifications
	notifCtrlImp "soilwatch/pkg/notify/controllerImp"
	"soilwatch/pkg/notify/mailer"
	"soilwatch/pkg/notify/push"
	notifRepoImp "soilwatch/pkg/notify/repositoryImp"
	notifSvcImp "soilwatch/pkg/notify/serviceImp"

	// Security + Health
	healthCtrlImp "soilwatch/pkg/health/controllerImp"
	secCtrlImp "soilwatch/pkg/security/controllerImp"
)

func main() {
	// 1) Config
	cfg := config.Load()

	// 2) Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("zap: %v", err)
	}
	defer logger.Sync()

	// 3) DB (sqlite) + automigrate
	db := database.OpenSQLite(cfg.DBPath)

	// 4) Satellite provider (mock fallback for keyless dev runs)
	var prov provider.Client
	if cfg.ProviderBaseURL != "" && cfg.ProviderAPIKey != "" {
		prov = provider.NewHTTP(cfg.ProviderBaseURL, cfg.ProviderAPIKey, logger)
	} else {
		logger.Warn("no provider credentials, using mock client")
		prov = provider.NewMock()
	}

	// 5) Repos
	fRepo := fieldRepoImp.New(db)
	oRepo := obsRepoImp.New(db)
	sRepo := syncRepoImp.New(db)
	nRepo := notifRepoImp.NewNotifications(db)
	subRepo := notifRepoImp.NewSubscriptions(db)

	// 6) Sync state machine
	syncSvc := syncSvcImp.New(sRepo, prov, cfg.SyncRetryAfter, logger)

	// 7) Delivery channels: one mailer for the whole process, one push sender
	mail := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)
	sender := push.NewVAPID(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject)
	var dir userdir.Client
	if cfg.AuthAPIBase != "" {
		dir = userdir.NewHTTP(cfg.AuthAPIBase, cfg.AuthAPIKey)
	} else {
		dir = userdir.NewMock(nil)
	}
	dispatcher := notifSvcImp.NewDispatcher(nRepo, subRepo, sender, mail, dir, logger)

	// 8) Statistics engine (drives sync, ingestion and alerting)
	statsSvc := statsSvcImp.New(fRepo, oRepo, syncSvc, prov, dispatcher, cfg.MaxCloudCover, logger)

	// 9) Controllers
	fieldSvc := fieldSvcImp.NewFieldService(fRepo)
	fCtrl := fieldCtrlImp.New(fieldSvc, oRepo)
	satCtrl := satCtrlImp.New(statsSvc)
	notifSvc := notifSvcImp.NewNotificationService(nRepo, subRepo)
	nCtrl := notifCtrlImp.New(notifSvc)

	csrfMgr := middleware.NewCSRFManager(cfg.CSRFTokenTTL)
	secCtrl := secCtrlImp.New(csrfMgr)
	hCtrl := healthCtrlImp.NewHealthCtrl(db, prov)

	// 10) Echo + guards
	e := echo.New()
	e.Use(echoMiddleware.Recover())

	session := middleware.Session(cfg.JWTSecret)
	apiLimit := middleware.RateLimit(middleware.NewRateLimiter(cfg.APILimit, cfg.LimitWindow), "api")
	authLimit := middleware.RateLimit(middleware.NewRateLimiter(cfg.AuthLimit, cfg.LimitWindow), "auth")
	csrf := middleware.CSRF(csrfMgr)

	// 11) Router
	r := router.New(e, session, apiLimit, authLimit, csrf, fCtrl, satCtrl, nCtrl, secCtrl, hCtrl)

	// 12) Start
	logger.Info("starting", zap.String("port", cfg.Port))
	if err := r.Start(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
