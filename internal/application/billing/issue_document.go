// Package billing contiene los orquestadores de emisión e invalidación de DTE:
// coordinan construcción, numeración, firma y transmisión al MH, y persisten
// cada transición de estado del documento.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/application/latefee"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/dte"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
	pkgdte "github.com/jhoicas/Facturacion-api/pkg/dte"
)

// IssueDocumentUseCase orquesta la emisión de un DTE de principio a fin:
// resolver snapshots → calcular mora → reservar número → construir → persistir
// DRAFT → firmar → transmitir → estado final. El número de control se consume
// tras cualquier intento de transmisión; una falla de firma lo libera intacto.
type IssueDocumentUseCase struct {
	dteRepo      repository.DTERepository
	customerRepo repository.CustomerRepository
	contractRepo repository.ContractRepository
	branchRepo   repository.BranchRepository
	companyRepo  repository.CompanyRepository

	allocator   SequenceAllocator
	signer      Signer
	transmitter Transmitter
	dispatcher  NotificationDispatcher
	feeEngine   *latefee.Engine

	ambiente string // "00" pruebas, "01" producción
	log      *logger.Logger
	now      func() time.Time
}

// NewIssueDocumentUseCase construye el orquestador de emisión.
func NewIssueDocumentUseCase(
	dteRepo repository.DTERepository,
	customerRepo repository.CustomerRepository,
	contractRepo repository.ContractRepository,
	branchRepo repository.BranchRepository,
	companyRepo repository.CompanyRepository,
	allocator SequenceAllocator,
	signer Signer,
	transmitter Transmitter,
	dispatcher NotificationDispatcher,
	feeEngine *latefee.Engine,
	ambiente string,
	log *logger.Logger,
) *IssueDocumentUseCase {
	return &IssueDocumentUseCase{
		dteRepo:      dteRepo,
		customerRepo: customerRepo,
		contractRepo: contractRepo,
		branchRepo:   branchRepo,
		companyRepo:  companyRepo,
		allocator:    allocator,
		signer:       signer,
		transmitter:  transmitter,
		dispatcher:   dispatcher,
		feeEngine:    feeEngine,
		ambiente:     ambiente,
		log:          log,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *IssueDocumentUseCase) WithClock(now func() time.Time) *IssueDocumentUseCase {
	uc.now = now
	return uc
}

// Issue emite un DTE para la empresa dada. Devuelve el documento en su estado
// final (PROCESADO o RECHAZADO); una falla antes del intento de transmisión
// devuelve error sin consumir numeración.
func (uc *IssueDocumentUseCase) Issue(ctx context.Context, companyID string, in dto.IssueDTERequest) (*dto.DTEResponse, error) {
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	branch, err := uc.branchRepo.GetByID(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil || branch.CompanyID != companyID {
		return nil, fmt.Errorf("sucursal %s: %w", in.BranchID, domain.ErrNotFound)
	}
	if !branch.IsActive {
		return nil, fmt.Errorf("sucursal %s inactiva: %w", in.BranchID, domain.ErrInvalidInput)
	}

	var customer *entity.Customer
	if in.CustomerID != "" {
		customer, err = uc.customerRepo.GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil || customer.CompanyID != companyID {
			return nil, fmt.Errorf("cliente %s: %w", in.CustomerID, domain.ErrNotFound)
		}
	}
	var contract *entity.Contract
	if in.ContractID != "" {
		contract, err = uc.contractRepo.GetByID(ctx, in.ContractID)
		if err != nil {
			return nil, err
		}
		if contract == nil || contract.CompanyID != companyID {
			return nil, fmt.Errorf("contrato %s: %w", in.ContractID, domain.ErrNotFound)
		}
	}

	tipoDte := determineTipoDte(in.TipoDte, customer)
	items := itemsFromRequest(in.Items)

	// Mora del contrato como línea exenta (el recargo no lleva IVA).
	var fee *latefee.Result
	if in.IncluirMora && contract != nil && uc.feeEngine != nil {
		fee, err = uc.feeEngine.Compute(ctx, contract)
		if err != nil {
			return nil, err
		}
		if fee.Total.GreaterThan(decimal.Zero) {
			items = append(items, &entity.DTEItem{
				Descripcion: fmt.Sprintf("Recargo por mora (%d días)", fee.MaxDiasMora),
				Cantidad:    decimal.NewFromInt(1),
				PrecioUni:   fee.Total,
				MontoDescu:  decimal.Zero,
				TipoVenta:   entity.VentaExenta,
			})
		}
	}

	emisor := dte.EmisorFromCompany(company, branch)
	input := dte.BuildInput{
		TipoDte:            tipoDte,
		Ambiente:           uc.ambiente,
		CodigoGeneracion:   strings.ToUpper(uuid.New().String()),
		Emisor:             emisor,
		Items:              items,
		CondicionOperacion: condicionOrDefault(in.CondicionOperacion),
		Observaciones:      in.Observaciones,
	}
	if tipoDte == pkgdte.TipoSujetoExcluido {
		input.SujetoExcluido = dte.SujetoExcluidoFromCustomer(customer)
	} else {
		input.Receptor = dte.ReceptorFromCustomer(customer)
	}

	doc, err := uc.issuePrepared(ctx, company, branch, input, items, func(d *entity.DTE) {
		if customer != nil {
			d.CustomerID = customer.ID
		}
		if contract != nil {
			d.ContractID = contract.ID
		}
	})
	if err != nil {
		return nil, err
	}

	if doc.Aceptado() && fee != nil && fee.Total.GreaterThan(decimal.Zero) {
		uc.applyFeeToOriginals(ctx, fee)
	}
	return toDTEResponse(doc), nil
}

// issuePrepared ejecuta la parte común de la emisión una vez resuelto el
// BuildInput: reservar número, construir, persistir DRAFT, firmar y transmitir.
// decorate ajusta campos de la entidad antes del primer Create.
func (uc *IssueDocumentUseCase) issuePrepared(
	ctx context.Context,
	company *entity.Company,
	branch *entity.Branch,
	input dte.BuildInput,
	items []*entity.DTEItem,
	decorate func(*entity.DTE),
) (*entity.DTE, error) {
	reservation, err := uc.allocator.Reserve(ctx, branch, input.TipoDte)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	input.NumeroControl = reservation.ControlNumber()
	input.FecEmi = now.Format("2006-01-02")
	input.HorEmi = now.Format("15:04:05")

	document, totales, err := dte.Build(input)
	if err != nil {
		uc.release(ctx, reservation)
		return nil, err
	}
	payload, err := json.Marshal(document)
	if err != nil {
		uc.release(ctx, reservation)
		return nil, err
	}
	emisorJSON, _ := json.Marshal(input.Emisor)
	receptorJSON := receptorSnapshot(input)

	doc := &entity.DTE{
		ID:               uuid.New().String(),
		CompanyID:        company.ID,
		BranchID:         branch.ID,
		TipoDte:          input.TipoDte,
		CodigoGeneracion: input.CodigoGeneracion,
		NumeroControl:    input.NumeroControl,
		Estado:           entity.DTEStatusDraft,
		EmisorSnapshot:   string(emisorJSON),
		ReceptorSnapshot: receptorJSON,
		TotalGravada:     totales.Gravada,
		TotalExenta:      totales.Exenta,
		TotalNoSujeta:    totales.NoSujeta,
		TotalDescuento:   totales.Descuento,
		TotalIva:         totales.Iva,
		TotalPagar:       totales.Pagar,
		TotalLetras:      totales.Letras,
		JSONPayload:      string(payload),
		MoraAplicada:     decimal.Zero,
		FechaEmision:     now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if decorate != nil {
		decorate(doc)
	}
	if err := uc.dteRepo.Create(ctx, doc); err != nil {
		uc.release(ctx, reservation)
		return nil, err
	}
	for i, item := range items {
		item.ID = uuid.New().String()
		item.DTEID = doc.ID
		item.NumItem = i + 1
		if err := uc.dteRepo.CreateItem(ctx, item); err != nil {
			uc.release(ctx, reservation)
			return nil, err
		}
	}

	if err := uc.signAndTransmit(ctx, company, doc, payload, reservation); err != nil {
		return nil, err
	}
	return doc, nil
}

// signAndTransmit firma y transmite el documento, persistiendo cada
// transición. reservation puede ser nil (reemisión: el número ya es definitivo).
func (uc *IssueDocumentUseCase) signAndTransmit(
	ctx context.Context,
	company *entity.Company,
	doc *entity.DTE,
	payload []byte,
	reservation NumberReservation,
) error {
	nit := pkgdte.NormalizeID(company.NIT)

	jws, err := uc.signer.Sign(ctx, nit, payload)
	if err != nil {
		// Falla de firma: el documento queda en DRAFT y el número no se consume.
		doc.Intentos++
		doc.UltimoError = err.Error()
		doc.UpdatedAt = uc.now()
		if uerr := uc.dteRepo.Update(ctx, doc); uerr != nil {
			uc.log.Error().Err(uerr).Str("dte_id", doc.ID).Msg("no se pudo persistir la falla de firma")
		}
		if reservation != nil {
			uc.release(ctx, reservation)
		}
		return fmt.Errorf("firma del DTE %s: %w", doc.CodigoGeneracion, err)
	}

	doc.SignedPayload = jws
	doc.Estado = entity.DTEStatusFirmado
	doc.UpdatedAt = uc.now()
	if err := uc.dteRepo.Update(ctx, doc); err != nil {
		if reservation != nil {
			uc.release(ctx, reservation)
		}
		return err
	}

	env := Envelope{
		Ambiente:         uc.ambiente,
		IdEnvio:          1,
		Version:          pkgdte.VersionPorTipo[doc.TipoDte],
		TipoDte:          doc.TipoDte,
		Documento:        jws,
		CodigoGeneracion: doc.CodigoGeneracion,
	}
	result, terr := uc.transmitter.TransmitDocument(ctx, env, nit)

	// Hubo intento de transmisión: el número queda consumido pase lo que pase.
	if reservation != nil {
		if cerr := reservation.Consume(ctx); cerr != nil {
			uc.log.Error().Err(cerr).Str("dte_id", doc.ID).Msg("no se pudo consumir el número de control")
		}
	}

	doc.Intentos++
	switch {
	case terr != nil:
		// Error de transporte o timeout: sin respuesta del MH, se marca
		// RECHAZADO y el operador decide si reemite.
		doc.Estado = entity.DTEStatusRechazado
		doc.UltimoError = terr.Error()
		uc.log.Warn().Err(terr).
			Str("dte_id", doc.ID).
			Str("numero_control", doc.NumeroControl).
			Msg("transmisión al MH fallida")
	case result.Accepted:
		doc.Estado = entity.DTEStatusProcesado
		doc.SelloRecibido = result.Sello
		doc.CodigoMsg = result.CodigoMsg
		doc.DescripcionMsg = result.DescripcionMsg
		doc.Observaciones = result.Observaciones
		doc.FhProcesamiento = result.FhProcesamiento
		doc.UltimoError = ""
	default:
		doc.Estado = entity.DTEStatusRechazado
		doc.CodigoMsg = result.CodigoMsg
		doc.DescripcionMsg = result.DescripcionMsg
		doc.Observaciones = result.Observaciones
	}
	doc.UpdatedAt = uc.now()
	if err := uc.dteRepo.Update(ctx, doc); err != nil {
		return err
	}

	if doc.Aceptado() {
		uc.log.Info().
			Str("dte_id", doc.ID).
			Str("tipo_dte", doc.TipoDte).
			Str("numero_control", doc.NumeroControl).
			Str("sello", doc.SelloRecibido).
			Msg("DTE aceptado por el MH")
		if uc.dispatcher != nil {
			uc.dispatcher.DispatchIssued(doc)
		}
	}
	return nil
}

// applyFeeToOriginals acumula el recargo facturado sobre cada original vencido
// (base del siguiente cálculo cuando la config es acumulativa). Best effort.
func (uc *IssueDocumentUseCase) applyFeeToOriginals(ctx context.Context, fee *latefee.Result) {
	for _, f := range fee.Facturas {
		orig, err := uc.dteRepo.GetByID(ctx, f.DTEID)
		if err != nil || orig == nil {
			continue
		}
		orig.MoraAplicada = orig.MoraAplicada.Add(f.Recargo)
		orig.UpdatedAt = uc.now()
		if err := uc.dteRepo.Update(ctx, orig); err != nil {
			uc.log.Error().Err(err).Str("dte_id", orig.ID).Msg("no se pudo registrar la mora aplicada")
		}
	}
}

func (uc *IssueDocumentUseCase) release(ctx context.Context, r NumberReservation) {
	if err := r.Release(ctx); err != nil {
		uc.log.Error().Err(err).Msg("no se pudo liberar la reserva de numeración")
	}
}

// determineTipoDte resuelve el tipo por perfil fiscal cuando no viene explícito:
// cliente con NIT y NRC recibe Crédito Fiscal, el resto Factura de consumidor.
// La FSE (14) siempre debe pedirse explícita.
func determineTipoDte(requested string, customer *entity.Customer) string {
	if requested != "" {
		return requested
	}
	if customer.EsContribuyente() {
		return pkgdte.TipoCreditoFiscal
	}
	return pkgdte.TipoFacturaConsumidor
}

func condicionOrDefault(c int) int {
	if c == 0 {
		return pkgdte.CondicionContado
	}
	return c
}

func itemsFromRequest(in []dto.ItemRequest) []*entity.DTEItem {
	items := make([]*entity.DTEItem, 0, len(in))
	for _, it := range in {
		tipoVenta := it.TipoVenta
		if tipoVenta == "" {
			tipoVenta = entity.VentaGravada
		}
		items = append(items, &entity.DTEItem{
			ProductID:   it.ProductID,
			Descripcion: it.Descripcion,
			Cantidad:    it.Cantidad,
			PrecioUni:   it.PrecioUni,
			MontoDescu:  it.MontoDescu,
			TipoVenta:   tipoVenta,
		})
	}
	return items
}

func receptorSnapshot(input dte.BuildInput) string {
	if input.SujetoExcluido != nil {
		b, _ := json.Marshal(input.SujetoExcluido)
		return string(b)
	}
	if input.Receptor != nil {
		b, _ := json.Marshal(input.Receptor)
		return string(b)
	}
	return ""
}

func toDTEResponse(d *entity.DTE) *dto.DTEResponse {
	return &dto.DTEResponse{
		ID:               d.ID,
		TipoDte:          d.TipoDte,
		CodigoGeneracion: d.CodigoGeneracion,
		NumeroControl:    d.NumeroControl,
		Estado:           d.Estado,
		TotalGravada:     d.TotalGravada,
		TotalExenta:      d.TotalExenta,
		TotalNoSujeta:    d.TotalNoSujeta,
		TotalDescuento:   d.TotalDescuento,
		TotalIva:         d.TotalIva,
		TotalPagar:       d.TotalPagar,
		TotalLetras:      d.TotalLetras,
		SelloRecibido:    d.SelloRecibido,
		CodigoMsg:        d.CodigoMsg,
		DescripcionMsg:   d.DescripcionMsg,
		Observaciones:    d.Observaciones,
		FhProcesamiento:  d.FhProcesamiento,
		RelatedDTEID:     d.RelatedDTEID,
		UltimoError:      d.UltimoError,
		FechaEmision:     d.FechaEmision,
		CreatedAt:        d.CreatedAt,
	}
}
