package http

import (
	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

func toShortageDTOs(in []domain.Shortage) []dto.ShortageDTO {
	out := make([]dto.ShortageDTO, 0, len(in))
	for _, s := range in {
		out = append(out, dto.ShortageDTO{
			ItemID:    s.ItemID,
			ItemName:  s.ItemName,
			Required:  s.Required,
			Available: s.Available,
			Shortfall: s.Shortfall,
		})
	}
	return out
}

func toPlanResponse(p *entity.ProductionPlan) dto.PlanResponse {
	out := dto.PlanResponse{
		ID:                 p.ID,
		PlanNumber:         p.PlanNumber,
		Status:             string(p.Status),
		PlannedStartDate:   p.PlannedStartDate,
		PlannedEndDate:     p.PlannedEndDate,
		ActualStartDate:    p.ActualStartDate,
		ActualEndDate:      p.ActualEndDate,
		TotalEstimatedCost: p.TotalEstimatedCost,
		TotalActualCost:    p.TotalActualCost,
		ApprovedBy:         p.ApprovedBy,
		ApprovedAt:         p.ApprovedAt,
		CreatedBy:          p.CreatedBy,
		Notes:              p.Notes,
		Items:              make([]dto.PlanItemResponse, 0, len(p.Items)),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	for _, it := range p.Items {
		out.Items = append(out.Items, dto.PlanItemResponse{
			ID:                    it.ID,
			ProductID:             it.ProductID,
			RecipeID:              it.RecipeID,
			PlannedQuantity:       it.PlannedQuantity,
			ActualQuantity:        it.ActualQuantity,
			EstimatedMaterialCost: it.EstimatedMaterialCost,
			ActualMaterialCost:    it.ActualMaterialCost,
			Status:                string(it.Status),
			Sequence:              it.Sequence,
			CompletedAt:           it.CompletedAt,
		})
	}
	return out
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	out := dto.OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		Status:        string(o.Status),
		Total:         o.Total,
		StockDeducted: o.StockDeducted,
		Notes:         o.Notes,
		CreatedBy:     o.CreatedBy,
		Items:         make([]dto.OrderItemResponse, 0, len(o.Items)),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, dto.OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  it.Subtotal(),
		})
	}
	return out
}

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:        s.ID,
		OrderID:   s.OrderID,
		Total:     s.Total,
		CreatedBy: s.CreatedBy,
		Items:     make([]dto.SaleItemResponse, 0, len(s.Items)),
		CreatedAt: s.CreatedAt,
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, dto.SaleItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  it.Subtotal,
		})
	}
	return out
}

func toPurchaseResponse(p *entity.Purchase) dto.PurchaseResponse {
	out := dto.PurchaseResponse{
		ID:             p.ID,
		PurchaseNumber: p.PurchaseNumber,
		SupplierID:     p.SupplierID,
		Status:         string(p.Status),
		Total:          p.Total,
		ApprovedBy:     p.ApprovedBy,
		ApprovedAt:     p.ApprovedAt,
		ReceivedAt:     p.ReceivedAt,
		CreatedBy:      p.CreatedBy,
		Notes:          p.Notes,
		Items:          make([]dto.PurchaseItemResponse, 0, len(p.Items)),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	for _, it := range p.Items {
		out.Items = append(out.Items, dto.PurchaseItemResponse{
			ID:               it.ID,
			RawMaterialID:    it.RawMaterialID,
			Quantity:         it.Quantity,
			UnitPrice:        it.UnitPrice,
			ReceivedQuantity: it.ReceivedQuantity,
			Outstanding:      it.Outstanding(),
		})
	}
	return out
}
