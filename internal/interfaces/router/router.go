package router

import (
	"context"
	"errors"

	acctsvc "carbon-exchange/internal/application/accounts"
	balsvc "carbon-exchange/internal/application/balances"
	certsvc "carbon-exchange/internal/application/certificates"
	emailsvc "carbon-exchange/internal/application/emails"
	evsvc "carbon-exchange/internal/application/ledgerevents"
	ordersvc "carbon-exchange/internal/application/orders"
	platsvc "carbon-exchange/internal/application/platform"
	projsvc "carbon-exchange/internal/application/projects"
	retsvc "carbon-exchange/internal/application/retirements"
	tradesvc "carbon-exchange/internal/application/trading"
	txsvc "carbon-exchange/internal/application/transactions"
	"carbon-exchange/internal/config"
	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/infrastructure/database"
	"carbon-exchange/internal/infrastructure/notify"
	accthandler "carbon-exchange/internal/interfaces/handlers/accounts"
	authhandler "carbon-exchange/internal/interfaces/handlers/auth"
	balhandler "carbon-exchange/internal/interfaces/handlers/balances"
	healthhandler "carbon-exchange/internal/interfaces/handlers/health"
	evhandler "carbon-exchange/internal/interfaces/handlers/ledgerevents"
	orderhandler "carbon-exchange/internal/interfaces/handlers/orders"
	plathandler "carbon-exchange/internal/interfaces/handlers/platform"
	projhandler "carbon-exchange/internal/interfaces/handlers/projects"
	rethandler "carbon-exchange/internal/interfaces/handlers/retirements"
	tradehandler "carbon-exchange/internal/interfaces/handlers/trading"
	txhandler "carbon-exchange/internal/interfaces/handlers/transactions"
	"carbon-exchange/internal/middleware"
	"carbon-exchange/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp opens Postgres and Redis from cfg and builds the app over them.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	rdb := redis.NewClient(opt)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	app, err := New(cfg, db, rdb)
	if err != nil {
		return nil, nil, nil, err
	}
	return app, db, rdb, nil
}

// New wires middleware, services and routes. Ledger routes are only mounted when db is set.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.SessionStore(rdb, sessionCfg))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		HealthAdminKey: cfg.HealthAdminKey,
		EventsChannel:  cfg.EventsChannel,
	}
	if db != nil {
		hh.DB = &gormDBPinger{db: db}
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var finder acctsvc.AccountFinder
	if db != nil {
		finder = &acctsvc.GormAccountFinder{DB: db}
	}
	ah := &authhandler.Handlers{AccountFinder: finder, Rdb: rdb, Config: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db == nil {
		log.Warn().Msg("no database configured; ledger routes are not mounted")
		return app, nil
	}

	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	var emailSender emailsvc.Sender
	if cfg.SendinblueAPIKey != "" {
		emailSender = &emailsvc.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom}
	}
	publisher := notify.NewRedisPublisher(rdb, cfg.EventsChannel)

	ps := &platsvc.Service{DB: db, Publisher: publisher}
	hh.Ledger = ps
	if _, err := ps.Ensure(context.Background(), cfg.OwnerAddress, cfg.PlatformFeeBps, cfg.PlatformFeeCapBps); err != nil {
		if cfg.OwnerAddress != "" || !errors.Is(err, domain.ErrInvalidAddress) {
			return nil, err
		}
		log.Warn().Msg("OWNER_ADDRESS not set and platform not initialized; ledger mutations will fail")
	}

	projects := &projsvc.Service{DB: db, Publisher: publisher}
	orders := &ordersvc.Service{DB: db, Publisher: publisher}
	trading := &tradesvc.Service{DB: db, Publisher: publisher, EmailSender: emailSender}
	balances := &balsvc.Service{DB: db}
	retirements := &retsvc.Service{DB: db}
	accounts := &acctsvc.Service{DB: db, EmailSender: emailSender}

	can := func(permission string) fiber.Handler {
		return middleware.AuthorizePermission(ps, permission)
	}
	auth := middleware.RequireAuth()

	// Accounts: create-account is public (registration)
	acch := &accthandler.Handlers{Service: accounts, Rdb: rdb, Config: sessionCfg}
	app.Post("/api/v1/accounts/create-account", acch.CreateAccount)
	app.Get("/api/v1/accounts/view-account", auth, acch.ViewAccount)

	// Projects
	projh := &projhandler.Handlers{Service: projects, Retirements: retirements}
	pg := app.Group("/api/v1/projects")
	pg.Get("/get-project/:project_id", projh.GetProject)
	pg.Get("/get-all-projects", projh.GetAllProjects)
	pg.Get("/get-total-projects", projh.GetTotalProjects)
	pg.Get("/get-user-projects/:address", projh.GetUserProjects)
	pg.Get("/get-project-retirements/:project_id", projh.GetProjectRetirements)
	pg.Post("/create-project", auth, can(constants.RegisterProject), projh.CreateProject)
	pg.Post("/deactivate-project", auth, can(constants.DeactivateProject), projh.DeactivateProject)
	pg.Post("/verify-project", auth, can(constants.VerifyProject), projh.VerifyProject)

	// Orders
	orderh := &orderhandler.Handlers{Service: orders}
	og := app.Group("/api/v1/orders")
	og.Get("/get-order/:order_id", orderh.GetOrder)
	og.Get("/get-active-orders", orderh.GetActiveOrders)
	og.Get("/get-all-orders", orderh.GetAllOrders)
	og.Get("/get-total-orders", orderh.GetTotalOrders)
	og.Get("/get-seller-orders/:address", orderh.GetSellerOrders)
	og.Post("/create-order", auth, can(constants.ListCredits), orderh.CreateOrder)
	og.Post("/cancel-order", auth, can(constants.ListCredits), orderh.CancelOrder)

	// Trading
	th := &tradehandler.Handlers{Service: trading}
	tg := app.Group("/api/v1/trading", auth)
	tg.Post("/purchase-credits", can(constants.BuyCredits), th.PurchaseCredits)
	tg.Post("/retire-credits", can(constants.RetireCredits), th.RetireCredits)
	tg.Post("/transfer-credits", can(constants.TransferCredits), th.TransferCredits)

	// Balances
	balh := &balhandler.Handlers{Service: balances, Retirements: retirements}
	bg := app.Group("/api/v1/balances")
	bg.Get("/balance-of/:address/:project_id", balh.BalanceOf)
	bg.Post("/balance-of-batch", balh.BalanceOfBatch)
	bg.Get("/view-holdings/:address", balh.ViewHoldings)
	bg.Get("/retired-credits/:address", balh.RetiredCredits)

	// Retirements
	reth := &rethandler.Handlers{Service: retirements, Certificates: &certsvc.Service{DB: db}}
	app.Get("/api/v1/retirements/view-certificate/:certificate_number", reth.ViewCertificate)
	app.Get("/api/v1/retirements/certificate-pdf/:certificate_number", reth.DownloadCertificate)

	// Platform
	plath := &plathandler.Handlers{Service: ps}
	plg := app.Group("/api/v1/platform")
	plg.Get("/fee", plath.GetFee)
	plg.Get("/accumulated-fees", plath.GetAccumulatedFees)
	plg.Get("/stats", plath.GetStats)
	plg.Get("/owner", plath.GetOwner)
	plg.Patch("/update-fee", auth, can(constants.ManageFees), plath.UpdateFee)
	plg.Post("/withdraw-fees", auth, can(constants.ManageFees), plath.WithdrawFees)
	plg.Patch("/transfer-ownership", auth, can(constants.TransferOwnership), plath.TransferOwnership)

	// Events and history
	evh := &evhandler.Handlers{Service: &evsvc.Service{DB: db}}
	app.Get("/api/v1/events/get-events", evh.GetEvents)
	txh := &txhandler.Handlers{Service: &txsvc.Service{DB: db}}
	app.Get("/api/v1/transactions/get-transactions/:address", txh.GetTransactions)

	return app, nil
}
