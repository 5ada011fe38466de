// Package notify implementa el despacho asíncrono de notificaciones de DTE
// aceptados. El emisor nunca espera por una notificación: el dispatcher encola
// y una goroutine entrega en segundo plano.
package notify

import (
	"context"
	"sync"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

// Notifier entrega una notificación concreta (correo, webhook, etc.).
type Notifier interface {
	NotifyIssued(ctx context.Context, doc *entity.DTE) error
}

var _ billing.NotificationDispatcher = (*Dispatcher)(nil)

// Dispatcher encola notificaciones en un canal con buffer y las entrega con
// una goroutine propia. Si el buffer está lleno, la notificación se descarta
// con un log de advertencia: el estado del DTE nunca depende de esto.
type Dispatcher struct {
	notifier Notifier
	log      *logger.Logger

	queue chan *entity.DTE
	stop  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// NewDispatcher construye el dispatcher con el buffer dado.
func NewDispatcher(notifier Notifier, log *logger.Logger, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Dispatcher{
		notifier: notifier,
		log:      log,
		queue:    make(chan *entity.DTE, buffer),
		stop:     make(chan struct{}),
	}
}

// Start arranca la goroutine de entrega.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.loop()
}

// Stop drena la cola y detiene la goroutine. Idempotente.
func (d *Dispatcher) Stop() {
	d.once.Do(func() { close(d.stop) })
	d.wg.Wait()
}

// DispatchIssued encola la notificación de un DTE aceptado sin bloquear.
func (d *Dispatcher) DispatchIssued(doc *entity.DTE) {
	select {
	case d.queue <- doc:
	default:
		d.log.Warn().
			Str("dte_id", doc.ID).
			Msg("cola de notificaciones llena; notificación descartada")
	}
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()
	for {
		select {
		case doc := <-d.queue:
			d.deliver(doc)
		case <-d.stop:
			// Drenar lo pendiente antes de salir.
			for {
				select {
				case doc := <-d.queue:
					d.deliver(doc)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(doc *entity.DTE) {
	if err := d.notifier.NotifyIssued(context.Background(), doc); err != nil {
		d.log.Error().Err(err).
			Str("dte_id", doc.ID).
			Str("codigo_generacion", doc.CodigoGeneracion).
			Msg("no se pudo entregar la notificación")
	}
}

// LogNotifier es el notificador por defecto: deja constancia en el log.
// Sustituible por un cliente SMTP o webhook sin tocar el dispatcher.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador de log.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// NotifyIssued registra la emisión aceptada.
func (n *LogNotifier) NotifyIssued(_ context.Context, doc *entity.DTE) error {
	n.log.Info().
		Str("dte_id", doc.ID).
		Str("tipo_dte", doc.TipoDte).
		Str("numero_control", doc.NumeroControl).
		Str("sello", doc.SelloRecibido).
		Msg("notificación de DTE emitido")
	return nil
}
