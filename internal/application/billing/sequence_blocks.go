package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
	"github.com/jhoicas/Facturacion-api/internal/domain/repository"
	pkgdte "github.com/jhoicas/Facturacion-api/pkg/dte"
)

// SequenceBlockUseCase administra los bloques de numeración autorizados.
// Crear un bloque activo desactiva el bloque anterior del mismo par
// (sucursal, tipo): nunca hay dos bloques activos compitiendo por números.
type SequenceBlockUseCase struct {
	blockRepo  repository.SequenceBlockRepository
	branchRepo repository.BranchRepository
	now        func() time.Time
}

// NewSequenceBlockUseCase construye el caso de uso de numeración.
func NewSequenceBlockUseCase(blockRepo repository.SequenceBlockRepository, branchRepo repository.BranchRepository) *SequenceBlockUseCase {
	return &SequenceBlockUseCase{blockRepo: blockRepo, branchRepo: branchRepo, now: time.Now}
}

// Create registra un bloque nuevo para el par (sucursal, tipo) y lo activa.
func (uc *SequenceBlockUseCase) Create(ctx context.Context, companyID string, in dto.CreateSequenceBlockRequest) (*dto.SequenceBlockResponse, error) {
	if !pkgdte.ValidTipoDte[in.TipoDte] {
		return nil, fmt.Errorf("tipo de DTE %q: %w", in.TipoDte, domain.ErrInvalidInput)
	}
	if in.Lower < 1 || in.Upper < in.Lower {
		return nil, fmt.Errorf("rango [%d..%d] inválido: %w", in.Lower, in.Upper, domain.ErrInvalidInput)
	}
	branch, err := uc.branchRepo.GetByID(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil || branch.CompanyID != companyID {
		return nil, fmt.Errorf("sucursal %s: %w", in.BranchID, domain.ErrNotFound)
	}

	prev, err := uc.blockRepo.GetActive(ctx, in.BranchID, in.TipoDte)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		prev.IsActive = false
		prev.UpdatedAt = uc.now()
		if err := uc.blockRepo.Update(ctx, prev); err != nil {
			return nil, err
		}
	}

	prefix := in.SeriePrefix
	if prefix == "" {
		prefix = "DTE"
	}
	now := uc.now()
	block := &entity.SequenceBlock{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		BranchID:    in.BranchID,
		TipoDte:     in.TipoDte,
		SeriePrefix: prefix,
		Lower:       in.Lower,
		Upper:       in.Upper,
		Current:     in.Lower - 1, // el primer número emitido será Lower
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.blockRepo.Create(ctx, block); err != nil {
		return nil, err
	}
	return toBlockResponse(block), nil
}

// List devuelve todos los bloques de la empresa.
func (uc *SequenceBlockUseCase) List(ctx context.Context, companyID string) ([]*dto.SequenceBlockResponse, error) {
	blocks, err := uc.blockRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SequenceBlockResponse, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, toBlockResponse(b))
	}
	return out, nil
}

// Deactivate apaga un bloque sin borrar su historial de numeración.
func (uc *SequenceBlockUseCase) Deactivate(ctx context.Context, companyID, blockID string) (*dto.SequenceBlockResponse, error) {
	block, err := uc.blockRepo.GetByID(ctx, blockID)
	if err != nil {
		return nil, err
	}
	if block == nil || block.CompanyID != companyID {
		return nil, fmt.Errorf("bloque %s: %w", blockID, domain.ErrNotFound)
	}
	block.IsActive = false
	block.UpdatedAt = uc.now()
	if err := uc.blockRepo.Update(ctx, block); err != nil {
		return nil, err
	}
	return toBlockResponse(block), nil
}

func toBlockResponse(b *entity.SequenceBlock) *dto.SequenceBlockResponse {
	return &dto.SequenceBlockResponse{
		ID:          b.ID,
		BranchID:    b.BranchID,
		TipoDte:     b.TipoDte,
		SeriePrefix: b.SeriePrefix,
		Lower:       b.Lower,
		Upper:       b.Upper,
		Current:     b.Current,
		Restantes:   b.Upper - b.Current,
		IsActive:    b.IsActive,
		CreatedAt:   b.CreatedAt,
	}
}
