package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/application/inventory"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CatalogUseCase alta y consulta de productos, materias primas y recetas.
// Cantidad y costo de inventario no se editan aquí: se manejan vía movimientos.
type CatalogUseCase struct {
	txRunner inventory.TxRunner
	now      func() time.Time
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(txRunner inventory.TxRunner) *CatalogUseCase {
	return &CatalogUseCase{txRunner: txRunner, now: time.Now}
}

// CreateProduct crea un producto con saldo 0.
func (uc *CatalogUseCase) CreateProduct(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" || in.Name == "" || in.Cost.IsNegative() || in.Price.IsNegative() || in.MinimumStockLevel.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	product := &entity.Product{
		ID:                uuid.New().String(),
		SKU:               in.SKU,
		Name:              in.Name,
		Quantity:          decimal.Zero,
		Cost:              in.Cost,
		Price:             in.Price,
		MinimumStockLevel: in.MinimumStockLevel,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err := uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		return repos.Products().Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetProduct retorna *domain.NotFoundError si no existe.
func (uc *CatalogUseCase) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	var product *entity.Product
	err := uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		var err error
		product, err = repos.Products().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("producto", id)
	}
	return toProductResponse(product), nil
}

// ListProducts lista productos paginados.
func (uc *CatalogUseCase) ListProducts(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	var list []*entity.Product
	err := uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		var err error
		list, err = repos.Products().List(ctx, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := &dto.ProductListResponse{
		Items: make([]dto.ProductResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, p := range list {
		out.Items = append(out.Items, *toProductResponse(p))
	}
	return out, nil
}

// CreateRawMaterial crea una materia prima con saldo 0. Unit por defecto "unit".
func (uc *CatalogUseCase) CreateRawMaterial(ctx context.Context, in dto.CreateRawMaterialRequest) (*dto.RawMaterialResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" || in.Name == "" || in.CostPerUnit.IsNegative() || in.MinimumStockLevel.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.Unit == "" {
		in.Unit = "unit"
	}
	now := uc.now()
	material := &entity.RawMaterial{
		ID:                uuid.New().String(),
		SKU:               in.SKU,
		Name:              in.Name,
		Unit:              in.Unit,
		Quantity:          decimal.Zero,
		CostPerUnit:       in.CostPerUnit,
		MinimumStockLevel: in.MinimumStockLevel,
		SupplierID:        in.SupplierID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err := uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		return repos.RawMaterials().Create(ctx, material)
	})
	if err != nil {
		return nil, err
	}
	return toRawMaterialResponse(material), nil
}

func (uc *CatalogUseCase) GetRawMaterial(ctx context.Context, id string) (*dto.RawMaterialResponse, error) {
	var material *entity.RawMaterial
	err := uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		var err error
		material, err = repos.RawMaterials().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.NewNotFoundError("materia prima", id)
	}
	return toRawMaterialResponse(material), nil
}

func (uc *CatalogUseCase) ListRawMaterials(ctx context.Context, page dto.PageRequest) (*dto.RawMaterialListResponse, error) {
	page.DefaultPage()
	var list []*entity.RawMaterial
	err := uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		var err error
		list, err = repos.RawMaterials().List(ctx, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := &dto.RawMaterialListResponse{
		Items: make([]dto.RawMaterialResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, m := range list {
		out.Items = append(out.Items, *toRawMaterialResponse(m))
	}
	return out, nil
}

// AddBOMLine agrega una línea a la receta del producto. Producto y materia prima deben existir.
func (uc *CatalogUseCase) AddBOMLine(ctx context.Context, productID string, in dto.CreateBOMLineRequest) (*dto.BOMLineResponse, error) {
	if !in.QuantityRequired.IsPositive() || in.WastePercentage.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.CostPerUnit != nil && in.CostPerUnit.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	line := &entity.BOMLine{
		ID:               uuid.New().String(),
		ProductID:        productID,
		RawMaterialID:    in.RawMaterialID,
		RecipeID:         in.RecipeID,
		QuantityRequired: in.QuantityRequired,
		WastePercentage:  in.WastePercentage,
		CostPerUnit:      in.CostPerUnit,
		Sequence:         in.Sequence,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err := uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		product, err := repos.Products().GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NewNotFoundError("producto", productID)
		}
		material, err := repos.RawMaterials().GetByID(ctx, in.RawMaterialID)
		if err != nil {
			return err
		}
		if material == nil {
			return domain.NewNotFoundError("materia prima", in.RawMaterialID)
		}
		return repos.BOM().Create(ctx, line)
	})
	if err != nil {
		return nil, err
	}
	return toBOMLineResponse(line), nil
}

// ListBOM líneas de la receta (recipeID vacío = receta por defecto).
func (uc *CatalogUseCase) ListBOM(ctx context.Context, productID, recipeID string) ([]dto.BOMLineResponse, error) {
	var lines []*entity.BOMLine
	err := uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		var err error
		lines, err = repos.BOM().ListByProduct(ctx, productID, recipeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.BOMLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, *toBOMLineResponse(l))
	}
	return out, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		Quantity:          p.Quantity,
		Cost:              p.Cost,
		Price:             p.Price,
		MinimumStockLevel: p.MinimumStockLevel,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toRawMaterialResponse(m *entity.RawMaterial) *dto.RawMaterialResponse {
	return &dto.RawMaterialResponse{
		ID:                m.ID,
		SKU:               m.SKU,
		Name:              m.Name,
		Unit:              m.Unit,
		Quantity:          m.Quantity,
		CostPerUnit:       m.CostPerUnit,
		MinimumStockLevel: m.MinimumStockLevel,
		SupplierID:        m.SupplierID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toBOMLineResponse(l *entity.BOMLine) *dto.BOMLineResponse {
	return &dto.BOMLineResponse{
		ID:               l.ID,
		ProductID:        l.ProductID,
		RawMaterialID:    l.RawMaterialID,
		RecipeID:         l.RecipeID,
		QuantityRequired: l.QuantityRequired,
		WastePercentage:  l.WastePercentage,
		CostPerUnit:      l.CostPerUnit,
		Sequence:         l.Sequence,
	}
}
