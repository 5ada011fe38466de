package billing_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

// Fakes en memoria para los orquestadores. Sin mocks generados: el
// comportamiento relevante (estados persistidos, reserva consumida o
// liberada) se observa directamente sobre las estructuras.

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func dteFilterVacio() repository.DTEFilter { return repository.DTEFilter{} }

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ── Repositorios ──────────────────────────────────────────────────────────────

type memDTERepo struct {
	mu      sync.Mutex
	docs    map[string]*entity.DTE
	items   map[string][]*entity.DTEItem
	credits map[string]decimal.Decimal // originalID -> suma de NC procesadas
	updates int
}

func newMemDTERepo() *memDTERepo {
	return &memDTERepo{
		docs:    make(map[string]*entity.DTE),
		items:   make(map[string][]*entity.DTEItem),
		credits: make(map[string]decimal.Decimal),
	}
}

func (r *memDTERepo) Create(_ context.Context, doc *entity.DTE) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *memDTERepo) CreateItem(_ context.Context, item *entity.DTEItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *item
	r.items[item.DTEID] = append(r.items[item.DTEID], &cp)
	return nil
}

func (r *memDTERepo) Update(_ context.Context, doc *entity.DTE) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doc
	r.docs[doc.ID] = &cp
	r.updates++
	return nil
}

func (r *memDTERepo) GetByID(_ context.Context, id string) (*entity.DTE, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

func (r *memDTERepo) GetByCodigoGeneracion(_ context.Context, companyID, codigo string) (*entity.DTE, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.CompanyID == companyID && doc.CodigoGeneracion == codigo {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memDTERepo) GetItems(_ context.Context, dteID string) ([]*entity.DTEItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[dteID], nil
}

func (r *memDTERepo) ListByCompany(_ context.Context, companyID string, _ repository.DTEFilter) ([]*entity.DTE, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.DTE
	for _, doc := range r.docs {
		if doc.CompanyID == companyID {
			cp := *doc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memDTERepo) ListProcessedByContract(_ context.Context, contractID string) ([]*entity.DTE, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.DTE
	for _, doc := range r.docs {
		if doc.ContractID == contractID && doc.Estado == entity.DTEStatusProcesado && doc.TipoDte != "05" {
			cp := *doc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memDTERepo) SumProcessedCreditNotes(_ context.Context, originalID string) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.credits[originalID], nil
}

type stubCompanyRepo struct{ company *entity.Company }

func (r *stubCompanyRepo) Create(context.Context, *entity.Company) error { return nil }
func (r *stubCompanyRepo) Update(context.Context, *entity.Company) error { return nil }
func (r *stubCompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	if r.company != nil && r.company.ID == id {
		return r.company, nil
	}
	return nil, nil
}
func (r *stubCompanyRepo) GetByNIT(_ context.Context, nit string) (*entity.Company, error) {
	if r.company != nil && r.company.NIT == nit {
		return r.company, nil
	}
	return nil, nil
}
func (r *stubCompanyRepo) List(context.Context, int, int) ([]*entity.Company, error) {
	return nil, nil
}

type stubBranchRepo struct{ branches map[string]*entity.Branch }

func (r *stubBranchRepo) Create(context.Context, *entity.Branch) error { return nil }
func (r *stubBranchRepo) Update(context.Context, *entity.Branch) error { return nil }
func (r *stubBranchRepo) GetByID(_ context.Context, id string) (*entity.Branch, error) {
	return r.branches[id], nil
}
func (r *stubBranchRepo) ListByCompany(context.Context, string) ([]*entity.Branch, error) {
	return nil, nil
}

type stubCustomerRepo struct{ customers map[string]*entity.Customer }

func (r *stubCustomerRepo) Create(context.Context, *entity.Customer) error { return nil }
func (r *stubCustomerRepo) Update(context.Context, *entity.Customer) error { return nil }
func (r *stubCustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	return r.customers[id], nil
}
func (r *stubCustomerRepo) GetByCompanyAndDocumento(_ context.Context, _, numDocumento string) (*entity.Customer, error) {
	for _, c := range r.customers {
		if c.NumDocumento == numDocumento {
			return c, nil
		}
	}
	return nil, nil
}
func (r *stubCustomerRepo) ListByCompany(context.Context, string, int, int) ([]*entity.Customer, error) {
	return nil, nil
}

type stubContractRepo struct{ contracts map[string]*entity.Contract }

func (r *stubContractRepo) Create(context.Context, *entity.Contract) error { return nil }
func (r *stubContractRepo) Update(context.Context, *entity.Contract) error { return nil }
func (r *stubContractRepo) GetByID(_ context.Context, id string) (*entity.Contract, error) {
	return r.contracts[id], nil
}
func (r *stubContractRepo) ListByCompany(context.Context, string, int, int) ([]*entity.Contract, error) {
	return nil, nil
}

type memVoidRepo struct {
	mu     sync.Mutex
	events map[string]*entity.VoidEvent
}

func newMemVoidRepo() *memVoidRepo {
	return &memVoidRepo{events: make(map[string]*entity.VoidEvent)}
}

func (r *memVoidRepo) Create(_ context.Context, ev *entity.VoidEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *ev
	r.events[ev.ID] = &cp
	return nil
}

func (r *memVoidRepo) Update(_ context.Context, ev *entity.VoidEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *ev
	r.events[ev.ID] = &cp
	return nil
}

func (r *memVoidRepo) GetByID(_ context.Context, id string) (*entity.VoidEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[id], nil
}

func (r *memVoidRepo) GetProcessedByDTE(_ context.Context, dteID string) (*entity.VoidEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.DTEID == dteID && ev.Estado == entity.VoidStatusProcesado {
			cp := *ev
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memVoidRepo) ListByDTE(_ context.Context, dteID string) ([]*entity.VoidEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.VoidEvent
	for _, ev := range r.events {
		if ev.DTEID == dteID {
			cp := *ev
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ── Asignador de numeración ───────────────────────────────────────────────────

type fakeReservation struct {
	controlNumber string
	number        int64
	consumed      bool
	released      bool
}

func (r *fakeReservation) ControlNumber() string { return r.controlNumber }
func (r *fakeReservation) Number() int64         { return r.number }
func (r *fakeReservation) Consume(context.Context) error {
	r.consumed = true
	return nil
}
func (r *fakeReservation) Release(context.Context) error {
	r.released = true
	return nil
}

type fakeAllocator struct {
	next     int64
	err      error
	reserved []*fakeReservation
}

func (a *fakeAllocator) Reserve(_ context.Context, branch *entity.Branch, tipoDte string) (billing.NumberReservation, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.next++
	r := &fakeReservation{
		controlNumber: fmt.Sprintf("DTE-%s-%s%s-%015d", tipoDte, branch.CodEstableMH, branch.CodPuntoVentaMH, a.next),
		number:        a.next,
	}
	a.reserved = append(a.reserved, r)
	return r, nil
}

func (a *fakeAllocator) last() *fakeReservation {
	if len(a.reserved) == 0 {
		return nil
	}
	return a.reserved[len(a.reserved)-1]
}

// ── Firmador y transmisor ─────────────────────────────────────────────────────

type fakeSigner struct {
	err   error
	calls int
}

func (s *fakeSigner) Sign(_ context.Context, _ string, _ []byte) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "header.payload.signature", nil
}

type fakeTransmitter struct {
	result    *billing.TransmitResult
	err       error
	docCalls  int
	voidCalls int
	lastEnv   billing.Envelope
}

func (t *fakeTransmitter) TransmitDocument(_ context.Context, env billing.Envelope, _ string) (*billing.TransmitResult, error) {
	t.docCalls++
	t.lastEnv = env
	return t.result, t.err
}

func (t *fakeTransmitter) TransmitVoid(context.Context, billing.VoidEnvelope, string) (*billing.TransmitResult, error) {
	t.voidCalls++
	return t.result, t.err
}

func acceptedResult(sello string) *billing.TransmitResult {
	fh := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	return &billing.TransmitResult{
		Accepted:        true,
		Sello:           sello,
		FhProcesamiento: &fh,
	}
}

func rejectedResult(codigo, descripcion string) *billing.TransmitResult {
	return &billing.TransmitResult{
		Accepted:       false,
		CodigoMsg:      codigo,
		DescripcionMsg: descripcion,
		Observaciones:  []string{"observación de prueba"},
	}
}

type fakeDispatcher struct {
	mu   sync.Mutex
	docs []*entity.DTE
}

func (d *fakeDispatcher) DispatchIssued(doc *entity.DTE) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.docs = append(d.docs, doc)
}

func (d *fakeDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.docs)
}
