package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/domain/catalog"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/sales"
	"github.com/salescrm/backend/internal/domain/shared"
)

// itemResolver builds line items, filling description and unit price from
// the catalog when the request references a product
type itemResolver struct {
	productRepo catalog.ProductRepository
}

func (r *itemResolver) resolve(ctx context.Context, reqs []ItemRequest) ([]sales.LineItem, error) {
	items := make([]sales.LineItem, 0, len(reqs))
	for i, req := range reqs {
		description := strings.TrimSpace(req.Description)
		price := req.UnitPrice
		if req.ProductID != nil && (description == "" || price == nil) {
			p, err := r.productRepo.FindByID(ctx, *req.ProductID)
			if err != nil {
				if shared.IsNotFound(err) {
					return nil, shared.NewDomainError(shared.CodeValidation,
						fmt.Sprintf("Item %d: product not found", i+1))
				}
				return nil, err
			}
			if description == "" {
				description = p.Name
			}
			if price == nil {
				base := p.BasePrice
				price = &base
			}
		}
		if price == nil {
			return nil, shared.NewDomainError(shared.CodeValidation,
				fmt.Sprintf("Item %d: unit price is required", i+1))
		}
		item, err := sales.NewLineItem(req.ProductID, description, req.Quantity, *price)
		if err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) {
				return nil, shared.NewDomainError(domainErr.Code, fmt.Sprintf("Item %d: %s", i+1, domainErr.Message))
			}
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func toSharedFilter(filter SalesListFilter) shared.Filter {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Search),
	}
	f.Normalize()
	return f
}

// sellerScope forces the seller filter to the actor for non managers
func sellerScope(actor identity.Actor, requested *uuid.UUID) *uuid.UUID {
	if actor.IsManager() {
		return requested
	}
	id := actor.UserID
	return &id
}

func clientNames(ctx context.Context, repo client.ClientRepository, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	clients, err := repo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.BusinessName
	}
	return names, nil
}
