package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturacion-api/internal/application/auth"
	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/application/latefee"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	IssueUC       *billing.IssueDocumentUseCase
	InvalidateUC  *billing.InvalidationUseCase
	SequenceUC    *billing.SequenceBlockUseCase
	LateFeeEngine *latefee.Engine
	ContractRepo  repository.ContractRepository
	CompanyRepo   repository.CompanyRepository
	PDFGenerator  billing.PDFGenerator
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// DTE: emisión, reenvío, consulta e invalidación (protegido)
	dteGroup := protected.Group("/dte")
	dteHandler := NewDTEHandler(deps.IssueUC, deps.CompanyRepo, deps.PDFGenerator)
	voidHandler := NewInvalidationHandler(deps.InvalidateUC)
	dteGroup.Post("/", RequireRole("admin", "facturador"), dteHandler.Issue)
	dteGroup.Post("/credit-note", RequireRole("admin", "facturador"), dteHandler.IssueCreditNote)
	dteGroup.Get("/", dteHandler.List)
	dteGroup.Get("/:id", dteHandler.GetByID)
	dteGroup.Get("/:id/pdf", dteHandler.GetPDF)
	dteGroup.Post("/:id/resend", RequireRole("admin", "facturador"), dteHandler.Resend)
	dteGroup.Post("/:id/void", RequireRole("admin", "facturador"), voidHandler.Void)
	dteGroup.Get("/:id/void-events", voidHandler.ListVoidEvents)

	// Bloques de numeración autorizados por el MH (solo admin)
	blocks := protected.Group("/sequence-blocks", RequireRole("admin"))
	blockHandler := NewSequenceBlockHandler(deps.SequenceUC)
	blocks.Post("/", blockHandler.Create)
	blocks.Get("/", blockHandler.List)
	blocks.Post("/:id/deactivate", blockHandler.Deactivate)

	// Mora por contrato: consulta, sin emitir (protegido; cobrador incluido)
	contracts := protected.Group("/contracts")
	lateFeeHandler := NewLateFeeHandler(deps.LateFeeEngine, deps.ContractRepo)
	contracts.Get("/:id/late-fee", lateFeeHandler.GetLateFee)
}
