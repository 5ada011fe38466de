package billing_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

type memBlockRepo struct {
	mu     sync.Mutex
	blocks map[string]*entity.SequenceBlock
}

func newMemBlockRepo() *memBlockRepo {
	return &memBlockRepo{blocks: make(map[string]*entity.SequenceBlock)}
}

func (r *memBlockRepo) Create(_ context.Context, block *entity.SequenceBlock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *block
	r.blocks[block.ID] = &cp
	return nil
}

func (r *memBlockRepo) Update(_ context.Context, block *entity.SequenceBlock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *block
	r.blocks[block.ID] = &cp
	return nil
}

func (r *memBlockRepo) GetByID(_ context.Context, id string) (*entity.SequenceBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	block, ok := r.blocks[id]
	if !ok {
		return nil, nil
	}
	cp := *block
	return &cp, nil
}

func (r *memBlockRepo) GetActive(_ context.Context, branchID, tipoDte string) (*entity.SequenceBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, block := range r.blocks {
		if block.BranchID == branchID && block.TipoDte == tipoDte && block.IsActive {
			cp := *block
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memBlockRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.SequenceBlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.SequenceBlock
	for _, block := range r.blocks {
		if block.CompanyID == companyID {
			cp := *block
			out = append(out, &cp)
		}
	}
	return out, nil
}

func newBlockUC(repo *memBlockRepo) *billing.SequenceBlockUseCase {
	return billing.NewSequenceBlockUseCase(repo, &stubBranchRepo{
		branches: map[string]*entity.Branch{"b-1": branchPrueba()},
	})
}

func TestSequenceBlockCreate_PrimerBloque(t *testing.T) {
	repo := newMemBlockRepo()
	uc := newBlockUC(repo)

	resp, err := uc.Create(context.Background(), "e-1", dto.CreateSequenceBlockRequest{
		BranchID: "b-1",
		TipoDte:  "01",
		Lower:    1,
		Upper:    5000,
	})
	require.NoError(t, err)

	assert.True(t, resp.IsActive)
	assert.Equal(t, int64(0), resp.Current, "el primer número emitido será Lower")
	assert.Equal(t, int64(5000), resp.Restantes)
	assert.Equal(t, "DTE", resp.SeriePrefix, "prefijo por defecto")
}

func TestSequenceBlockCreate_DesactivaElAnterior(t *testing.T) {
	repo := newMemBlockRepo()
	uc := newBlockUC(repo)

	primero, err := uc.Create(context.Background(), "e-1", dto.CreateSequenceBlockRequest{
		BranchID: "b-1", TipoDte: "01", Lower: 1, Upper: 100,
	})
	require.NoError(t, err)

	segundo, err := uc.Create(context.Background(), "e-1", dto.CreateSequenceBlockRequest{
		BranchID: "b-1", TipoDte: "01", Lower: 101, Upper: 200,
	})
	require.NoError(t, err)
	assert.True(t, segundo.IsActive)

	anterior, _ := repo.GetByID(context.Background(), primero.ID)
	assert.False(t, anterior.IsActive, "a lo sumo un bloque activo por (sucursal, tipo)")

	activo, _ := repo.GetActive(context.Background(), "b-1", "01")
	require.NotNil(t, activo)
	assert.Equal(t, segundo.ID, activo.ID)
}

func TestSequenceBlockCreate_OtroTipoNoInterfiere(t *testing.T) {
	repo := newMemBlockRepo()
	uc := newBlockUC(repo)

	factura, err := uc.Create(context.Background(), "e-1", dto.CreateSequenceBlockRequest{
		BranchID: "b-1", TipoDte: "01", Lower: 1, Upper: 100,
	})
	require.NoError(t, err)

	_, err = uc.Create(context.Background(), "e-1", dto.CreateSequenceBlockRequest{
		BranchID: "b-1", TipoDte: "03", Lower: 1, Upper: 100,
	})
	require.NoError(t, err)

	stored, _ := repo.GetByID(context.Background(), factura.ID)
	assert.True(t, stored.IsActive, "cada tipo de DTE numera por separado")
}

func TestSequenceBlockCreate_RangoInvalido(t *testing.T) {
	uc := newBlockUC(newMemBlockRepo())

	_, err := uc.Create(context.Background(), "e-1", dto.CreateSequenceBlockRequest{
		BranchID: "b-1", TipoDte: "01", Lower: 100, Upper: 50,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(context.Background(), "e-1", dto.CreateSequenceBlockRequest{
		BranchID: "b-1", TipoDte: "01", Lower: 0, Upper: 50,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSequenceBlockCreate_TipoNoSoportado(t *testing.T) {
	uc := newBlockUC(newMemBlockRepo())

	_, err := uc.Create(context.Background(), "e-1", dto.CreateSequenceBlockRequest{
		BranchID: "b-1", TipoDte: "07", Lower: 1, Upper: 100,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSequenceBlockCreate_SucursalDeOtraEmpresa(t *testing.T) {
	uc := newBlockUC(newMemBlockRepo())

	_, err := uc.Create(context.Background(), "e-2", dto.CreateSequenceBlockRequest{
		BranchID: "b-1", TipoDte: "01", Lower: 1, Upper: 100,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSequenceBlockDeactivate(t *testing.T) {
	repo := newMemBlockRepo()
	uc := newBlockUC(repo)

	block, err := uc.Create(context.Background(), "e-1", dto.CreateSequenceBlockRequest{
		BranchID: "b-1", TipoDte: "01", Lower: 1, Upper: 100,
	})
	require.NoError(t, err)

	resp, err := uc.Deactivate(context.Background(), "e-1", block.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)

	_, err = uc.Deactivate(context.Background(), "e-2", block.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "otra empresa no puede tocar el bloque")
}
