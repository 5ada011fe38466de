package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/infrastructure/notify"
	"github.com/jhoicas/Facturacion-api/pkg/logger"
)

type recordingNotifier struct {
	mu   sync.Mutex
	err  error
	seen []string
}

func (n *recordingNotifier) NotifyIssued(_ context.Context, doc *entity.DTE) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = append(n.seen, doc.ID)
	return n.err
}

func (n *recordingNotifier) ids() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.seen...)
}

func testLog() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func TestDispatcher_EntregaTodoAntesDeDetenerse(t *testing.T) {
	notifier := &recordingNotifier{}
	d := notify.NewDispatcher(notifier, testLog(), 16)
	d.Start()

	for _, id := range []string{"d-1", "d-2", "d-3"} {
		d.DispatchIssued(&entity.DTE{ID: id})
	}
	// Stop drena la cola antes de retornar.
	d.Stop()

	assert.ElementsMatch(t, []string{"d-1", "d-2", "d-3"}, notifier.ids())
}

func TestDispatcher_ColaLlenaNoBloquea(t *testing.T) {
	notifier := &recordingNotifier{}
	// Sin Start: nada consume la cola de tamaño 1.
	d := notify.NewDispatcher(notifier, testLog(), 1)

	d.DispatchIssued(&entity.DTE{ID: "d-1"})
	d.DispatchIssued(&entity.DTE{ID: "d-2"}) // descartada, pero retorna de inmediato

	d.Start()
	d.Stop()
	assert.Equal(t, []string{"d-1"}, notifier.ids())
}

func TestDispatcher_ErrorDelNotificadorNoDetieneLaEntrega(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp caído")}
	d := notify.NewDispatcher(notifier, testLog(), 16)
	d.Start()

	d.DispatchIssued(&entity.DTE{ID: "d-1"})
	d.DispatchIssued(&entity.DTE{ID: "d-2"})
	d.Stop()

	assert.Len(t, notifier.ids(), 2, "las fallas solo se loggean")
}

func TestDispatcher_StopIdempotente(t *testing.T) {
	d := notify.NewDispatcher(&recordingNotifier{}, testLog(), 4)
	d.Start()
	d.Stop()
	assert.NotPanics(t, func() { d.Stop() })
}
