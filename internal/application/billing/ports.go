package billing

import (
	"context"
	"time"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// ── Firmador ──────────────────────────────────────────────────────────────────

// Signer define el puerto de salida hacia el servicio firmador.
// Recibe el documento construido (JSON) y devuelve el JWS. La implementación
// concreta es un cliente HTTP con timeout acotado y sin reintentos.
type Signer interface {
	Sign(ctx context.Context, nit string, document []byte) (string, error)
}

// ── Transmisor MH ─────────────────────────────────────────────────────────────

// Envelope es el sobre de transmisión de un documento firmado.
type Envelope struct {
	Ambiente         string
	IdEnvio          int
	Version          int
	TipoDte          string
	Documento        string // JWS
	CodigoGeneracion string
}

// VoidEnvelope es el sobre de transmisión de un evento de invalidación firmado.
type VoidEnvelope struct {
	Ambiente  string
	IdEnvio   int
	Version   int
	Documento string // JWS
}

// TransmitResult clasifica la respuesta del MH.
// Accepted=true lleva sello y fecha de procesamiento; Accepted=false lleva
// código/descr. de mensaje y observaciones.
type TransmitResult struct {
	Accepted        bool
	Sello           string
	FhProcesamiento *time.Time
	CodigoMsg       string
	DescripcionMsg  string
	Observaciones   []string
}

// Transmitter define el puerto de salida hacia el servicio de recepción del MH.
// Un error de transporte (incluido timeout) se reporta como error; el
// orquestador lo trata como transmisión fallida con número consumido.
type Transmitter interface {
	TransmitDocument(ctx context.Context, env Envelope, nit string) (*TransmitResult, error)
	TransmitVoid(ctx context.Context, env VoidEnvelope, nit string) (*TransmitResult, error)
}

// ── Asignador de numeración ───────────────────────────────────────────────────

// NumberReservation representa un número de control reservado bajo lock.
// Exactamente una de Consume/Release debe invocarse:
//   - Consume tras un intento de transmisión (exitoso o rechazado): avanza el
//     puntero del bloque en uno y libera el lock.
//   - Release si nunca se transmitió (falla de firma o de construcción): libera
//     el lock sin avanzar el puntero.
type NumberReservation interface {
	ControlNumber() string
	Number() int64
	Consume(ctx context.Context) error
	Release(ctx context.Context) error
}

// SequenceAllocator define el puerto de asignación de números de control.
// La implementación Postgres toma un lock de fila (SELECT ... FOR UPDATE)
// sobre el bloque activo que abarca desde la generación del número hasta
// Consume/Release, garantizando unicidad bajo emisión concurrente.
type SequenceAllocator interface {
	Reserve(ctx context.Context, branch *entity.Branch, tipoDte string) (NumberReservation, error)
}

// ── Representación gráfica ────────────────────────────────────────────────────

// PDFGenerator produce la representación gráfica imprimible de un DTE.
type PDFGenerator interface {
	GenerateDTEPDF(ctx context.Context, doc *entity.DTE, items []*entity.DTEItem, company *entity.Company) ([]byte, error)
}

// ── Notificación ──────────────────────────────────────────────────────────────

// NotificationDispatcher encola la notificación de un DTE aceptado.
// Es fire-and-forget: nunca bloquea al emisor y sus fallas solo se loggean;
// jamás alteran el estado del documento ni el resultado del caller.
type NotificationDispatcher interface {
	DispatchIssued(doc *entity.DTE)
}
