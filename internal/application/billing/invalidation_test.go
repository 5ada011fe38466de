package billing_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	domaindte "github.com/jhoicas/Facturacion-api/internal/domain/dte"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

type voidEnv struct {
	dteRepo  *memDTERepo
	voidRepo *memVoidRepo
	signer   *fakeSigner
	trans    *fakeTransmitter
	uc       *billing.InvalidationUseCase
}

func newVoidEnv() *voidEnv {
	env := &voidEnv{
		dteRepo:  newMemDTERepo(),
		voidRepo: newMemVoidRepo(),
		signer:   &fakeSigner{},
		trans:    &fakeTransmitter{result: acceptedResult("2026SELLOANULACION01")},
	}
	env.uc = billing.NewInvalidationUseCase(
		env.dteRepo,
		env.voidRepo,
		&stubCompanyRepo{company: companyPrueba()},
		env.signer,
		env.trans,
		"00",
		testLogger(),
	).WithClock(func() time.Time { return hoy })
	return env
}

// facturaProcesada siembra una factura aceptada ayer, bien dentro del plazo de
// 90 días, con los snapshots que el evento de invalidación necesita.
func (env *voidEnv) facturaProcesada(id string) *entity.DTE {
	emisor, _ := json.Marshal(domaindte.EmisorFromCompany(companyPrueba(), branchPrueba()))
	procesado := hoy.AddDate(0, 0, -1)
	doc := &entity.DTE{
		ID:               id,
		CompanyID:        "e-1",
		BranchID:         "b-1",
		TipoDte:          "01",
		CodigoGeneracion: "AAAAAAAA-0000-4000-8000-00000000" + id[len(id)-4:],
		NumeroControl:    "DTE-01-M001P001-000000000000001",
		Estado:           entity.DTEStatusProcesado,
		SelloRecibido:    "sello-" + id,
		EmisorSnapshot:   string(emisor),
		FechaEmision:     procesado,
		FhProcesamiento:  &procesado,
	}
	_ = env.dteRepo.Create(context.Background(), doc)
	return doc
}

func solicitudAnulacion(tipo int) dto.VoidDTERequest {
	return dto.VoidDTERequest{
		TipoAnulacion:     tipo,
		Motivo:            "rescisión del servicio",
		NombreResponsable: "Ana Martínez",
		TipDocResponsable: "13",
		NumDocResponsable: "012345678",
		NombreSolicitante: "Carlos López",
		TipDocSolicitante: "13",
		NumDocSolicitante: "087654321",
	}
}

func TestVoid_EventoProcesadoInvalidaElOriginal(t *testing.T) {
	env := newVoidEnv()
	doc := env.facturaProcesada("dte-0001")

	resp, err := env.uc.Void(context.Background(), "e-1", doc.ID, solicitudAnulacion(entity.VoidReasonRescind))
	require.NoError(t, err)

	assert.Equal(t, entity.VoidStatusProcesado, resp.Estado)
	assert.Equal(t, "2026SELLOANULACION01", resp.Sello)
	assert.Equal(t, entity.VoidReasonRescind, resp.TipoAnulacion)
	assert.Equal(t, 1, env.trans.voidCalls)

	original, _ := env.dteRepo.GetByID(context.Background(), doc.ID)
	assert.Equal(t, entity.DTEStatusInvalidado, original.Estado)
	assert.Equal(t, "sello-dte-0001", original.SelloRecibido, "el sello original se conserva")

	ev, _ := env.voidRepo.GetProcessedByDTE(context.Background(), doc.ID)
	require.NotNil(t, ev)
	assert.Equal(t, doc.CodigoGeneracion, ev.CodigoGenOriginal)
}

func TestVoid_SoloDocumentosAceptados(t *testing.T) {
	env := newVoidEnv()
	doc := env.facturaProcesada("dte-0001")
	doc.Estado = entity.DTEStatusRechazado
	doc.SelloRecibido = ""
	_ = env.dteRepo.Update(context.Background(), doc)

	_, err := env.uc.Void(context.Background(), "e-1", doc.ID, solicitudAnulacion(entity.VoidReasonRescind))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Zero(t, env.signer.calls)
}

func TestVoid_DobleAnulacion(t *testing.T) {
	env := newVoidEnv()
	doc := env.facturaProcesada("dte-0001")
	_ = env.voidRepo.Create(context.Background(), &entity.VoidEvent{
		ID:               "ev-previo",
		DTEID:            doc.ID,
		CodigoGeneracion: "BBBBBBBB-0000-4000-8000-000000000001",
		Estado:           entity.VoidStatusProcesado,
	})

	_, err := env.uc.Void(context.Background(), "e-1", doc.ID, solicitudAnulacion(entity.VoidReasonRescind))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestVoid_PlazoVencidoParaCCF(t *testing.T) {
	env := newVoidEnv()
	doc := env.facturaProcesada("dte-0001")
	doc.TipoDte = "03"
	procesado := hoy.AddDate(0, 0, -5)
	doc.FhProcesamiento = &procesado
	_ = env.dteRepo.Update(context.Background(), doc)

	_, err := env.uc.Void(context.Background(), "e-1", doc.ID, solicitudAnulacion(entity.VoidReasonRescind))
	assert.ErrorIs(t, err, domain.ErrVoidWindowExpired)
}

func TestVoid_Motivo1ExigeReemplazoAceptado(t *testing.T) {
	env := newVoidEnv()
	doc := env.facturaProcesada("dte-0001")

	// Sin reemplazo.
	_, err := env.uc.Void(context.Background(), "e-1", doc.ID, solicitudAnulacion(entity.VoidReasonDataError))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Reemplazo rechazado.
	reemplazo := env.facturaProcesada("dte-0002")
	reemplazo.Estado = entity.DTEStatusRechazado
	reemplazo.SelloRecibido = ""
	_ = env.dteRepo.Update(context.Background(), reemplazo)

	in := solicitudAnulacion(entity.VoidReasonDataError)
	in.ReemplazoCodigoGeneracion = reemplazo.CodigoGeneracion
	_, err = env.uc.Void(context.Background(), "e-1", doc.ID, in)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Reemplazo aceptado: procede.
	reemplazo.Estado = entity.DTEStatusProcesado
	reemplazo.SelloRecibido = "sello-r"
	_ = env.dteRepo.Update(context.Background(), reemplazo)

	resp, err := env.uc.Void(context.Background(), "e-1", doc.ID, in)
	require.NoError(t, err)
	assert.Equal(t, entity.VoidStatusProcesado, resp.Estado)
}

func TestVoid_FallaDeFirmaDejaElEventoEnDraft(t *testing.T) {
	env := newVoidEnv()
	doc := env.facturaProcesada("dte-0001")
	env.signer.err = errors.New("firmador no disponible")

	_, err := env.uc.Void(context.Background(), "e-1", doc.ID, solicitudAnulacion(entity.VoidReasonRescind))
	require.Error(t, err)
	assert.Zero(t, env.trans.voidCalls)

	original, _ := env.dteRepo.GetByID(context.Background(), doc.ID)
	assert.Equal(t, entity.DTEStatusProcesado, original.Estado, "el original no cambia ante falla de firma")

	events, _ := env.voidRepo.ListByDTE(context.Background(), doc.ID)
	require.Len(t, events, 1)
	assert.Equal(t, entity.VoidStatusDraft, events[0].Estado)
}

func TestVoid_RechazoDelMHDejaElOriginalIntacto(t *testing.T) {
	env := newVoidEnv()
	doc := env.facturaProcesada("dte-0001")
	env.trans.result = rejectedResult("021", "evento fuera de plazo")

	resp, err := env.uc.Void(context.Background(), "e-1", doc.ID, solicitudAnulacion(entity.VoidReasonRescind))
	require.NoError(t, err)

	assert.Equal(t, entity.VoidStatusRechazado, resp.Estado)
	assert.Equal(t, "021", resp.CodigoMsg)

	original, _ := env.dteRepo.GetByID(context.Background(), doc.ID)
	assert.Equal(t, entity.DTEStatusProcesado, original.Estado, "solo un evento PROCESADO invalida")
}

func TestVoid_DTEDeOtraEmpresa(t *testing.T) {
	env := newVoidEnv()
	doc := env.facturaProcesada("dte-0001")

	_, err := env.uc.Void(context.Background(), "e-2", doc.ID, solicitudAnulacion(entity.VoidReasonRescind))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListByDTE_TodosLosEstados(t *testing.T) {
	env := newVoidEnv()
	doc := env.facturaProcesada("dte-0001")
	_ = env.voidRepo.Create(context.Background(), &entity.VoidEvent{
		ID: "ev-1", DTEID: doc.ID, Estado: entity.VoidStatusRechazado,
	})
	_ = env.voidRepo.Create(context.Background(), &entity.VoidEvent{
		ID: "ev-2", DTEID: doc.ID, Estado: entity.VoidStatusProcesado,
	})

	events, err := env.uc.ListByDTE(context.Background(), "e-1", doc.ID)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
