package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Facturacion-api/internal/application/auth"
	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/application/latefee"
	"github.com/jhoicas/Facturacion-api/internal/infrastructure/mh"
	"github.com/jhoicas/Facturacion-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/Facturacion-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Facturacion-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Facturacion-api/internal/interfaces/http"
	"github.com/jhoicas/Facturacion-api/pkg/config"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("ambiente_mh", cfg.MH.Ambiente).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	branchRepo := postgres.NewBranchRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	contractRepo := postgres.NewContractRepository(pool)
	dteRepo := postgres.NewDTERepository(pool)
	blockRepo := postgres.NewSequenceBlockRepository(pool)
	voidRepo := postgres.NewVoidEventRepository(pool)
	lateFeeCfgRepo := postgres.NewLateFeeConfigRepository(pool)

	// Asignador de numeración: bloqueo pesimista sobre el bloque activo.
	allocator := postgres.NewSequenceAllocator(pool)

	// Clientes del ciclo DTE: firmador local JWS y recepción del MH.
	signerClient := mh.NewSignerClient(cfg.MH)
	transmitterClient := mh.NewTransmitterClient(cfg.MH, log.Component("mh"))

	// Notificaciones: cola asíncrona con entrega por log (sustituible).
	notifyLog := log.Component("notify")
	dispatcher := notify.NewDispatcher(notify.NewLogNotifier(notifyLog), notifyLog, 64)
	dispatcher.Start()
	defer dispatcher.Stop()

	feeEngine := latefee.NewEngine(lateFeeCfgRepo, dteRepo)

	issueUC := billing.NewIssueDocumentUseCase(
		dteRepo, customerRepo, contractRepo, branchRepo, companyRepo,
		allocator, signerClient, transmitterClient, dispatcher, feeEngine,
		cfg.MH.Ambiente, log.Component("billing"),
	)
	invalidateUC := billing.NewInvalidationUseCase(
		dteRepo, voidRepo, companyRepo,
		signerClient, transmitterClient,
		cfg.MH.Ambiente, log.Component("billing"),
	)
	sequenceUC := billing.NewSequenceBlockUseCase(blockRepo, branchRepo)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.MH.Ambiente)

	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30, // firma + transmisión al MH dentro del request
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Facturación API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		IssueUC:       issueUC,
		InvalidateUC:  invalidateUC,
		SequenceUC:    sequenceUC,
		LateFeeEngine: feeEngine,
		ContractRepo:  contractRepo,
		CompanyRepo:   companyRepo,
		PDFGenerator:  pdfGenerator,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
