package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/TiendaOps-api/internal/domain"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
)

// Vistas sin lock sobre el estado: la lógica real de cada repositorio.
// Solo se usan con el lock del Store ya tomado (dentro de una transacción o
// desde los adaptadores locked*).
var _ repository.ProductRepository = productView{}
var _ repository.StockHistoryRepository = historyView{}
var _ repository.PurchaseOrderRepository = purchaseOrderView{}
var _ repository.ReturnRepository = returnView{}
var _ repository.SaleRepository = saleView{}
var _ repository.UserRepository = userView{}
var _ repository.CompanyRepository = companyView{}

// --- productos

type productView struct{ d *data }

func (v productView) Create(_ context.Context, product *entity.Product) error {
	for _, p := range v.d.products {
		if p.CompanyID == product.CompanyID && p.SKU == product.SKU {
			return domain.ErrDuplicate
		}
	}
	v.d.products[product.ID] = *product
	return nil
}

func (v productView) GetByID(_ context.Context, companyID, id string) (*entity.Product, error) {
	p, ok := v.d.products[id]
	if !ok || p.CompanyID != companyID {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

func (v productView) GetBySKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	for _, p := range v.d.products {
		if p.CompanyID == companyID && p.SKU == sku {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (v productView) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error) {
	return v.GetByID(ctx, companyID, id)
}

func (v productView) Update(_ context.Context, product *entity.Product) error {
	p, ok := v.d.products[product.ID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Name = product.Name
	p.BaseUnit = product.BaseUnit
	p.Price = product.Price
	p.LowStockThreshold = product.LowStockThreshold
	p.UpdatedAt = product.UpdatedAt
	v.d.products[product.ID] = p
	return nil
}

func (v productView) UpdateStockVersioned(_ context.Context, productID string, newQuantity decimal.Decimal, expectedVersion int64) error {
	p, ok := v.d.products[productID]
	if !ok || p.Version != expectedVersion {
		return domain.ErrConflict
	}
	p.StockQuantity = newQuantity
	p.Version++
	v.d.products[productID] = p
	return nil
}

func (v productView) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range v.d.products {
		if p.CompanyID == companyID {
			cp := p
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

func (v productView) ListLowStock(_ context.Context, companyID string) ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range v.d.products {
		if p.CompanyID == companyID && p.StockQuantity.LessThanOrEqual(p.LowStockThreshold) {
			cp := p
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StockQuantity.LessThan(list[j].StockQuantity) })
	return list, nil
}

// --- ledger

type historyView struct{ d *data }

func (v historyView) Create(_ context.Context, entry *entity.StockHistory) error {
	v.d.history = append(v.d.history, *entry)
	return nil
}

func (v historyView) ListByProduct(_ context.Context, companyID, productID string, f repository.StockHistoryFilter) ([]*entity.StockHistory, error) {
	// El slice es append-only en orden cronológico: recorrido inverso = más
	// recientes primero, sin depender de la resolución de los timestamps.
	var list []*entity.StockHistory
	for i := len(v.d.history) - 1; i >= 0; i-- {
		e := v.d.history[i]
		if e.CompanyID != companyID || e.ProductID != productID {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.From != nil && e.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && e.CreatedAt.After(*f.To) {
			continue
		}
		cp := e
		list = append(list, &cp)
	}
	return paginate(list, f.Limit, f.Offset), nil
}

func (v historyView) ExistsByReference(_ context.Context, productID, referenceID, eventType string) (bool, error) {
	for i := range v.d.history {
		e := v.d.history[i]
		if e.ProductID == productID && e.ReferenceID == referenceID && e.Type == eventType {
			return true, nil
		}
	}
	return false, nil
}

func (v historyView) SumByProduct(_ context.Context, companyID, productID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for i := range v.d.history {
		e := v.d.history[i]
		if e.CompanyID == companyID && e.ProductID == productID {
			sum = sum.Add(e.QuantityChange)
		}
	}
	return sum, nil
}

// --- órdenes de compra

type purchaseOrderView struct{ d *data }

func (v purchaseOrderView) Create(_ context.Context, po *entity.PurchaseOrder) error {
	if _, ok := v.d.purchaseOrders[po.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *po
	cp.Items = append([]entity.PurchaseOrderItem(nil), po.Items...)
	v.d.purchaseOrders[po.ID] = cp
	return nil
}

func (v purchaseOrderView) GetByID(_ context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	po, ok := v.d.purchaseOrders[id]
	if !ok || po.CompanyID != companyID {
		return nil, nil
	}
	cp := po
	cp.Items = append([]entity.PurchaseOrderItem(nil), po.Items...)
	return &cp, nil
}

func (v purchaseOrderView) GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return v.GetByID(ctx, companyID, id)
}

func (v purchaseOrderView) UpdateStatus(_ context.Context, id, status string) error {
	po, ok := v.d.purchaseOrders[id]
	if !ok {
		return domain.ErrNotFound
	}
	po.Status = status
	v.d.purchaseOrders[id] = po
	return nil
}

func (v purchaseOrderView) UpdateItemReceived(_ context.Context, poID, productID string, quantityReceived decimal.Decimal) error {
	po, ok := v.d.purchaseOrders[poID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range po.Items {
		if po.Items[i].ProductID == productID {
			po.Items[i].QuantityReceived = quantityReceived
			v.d.purchaseOrders[poID] = po
			return nil
		}
	}
	return domain.ErrNotFound
}

func (v purchaseOrderView) ListByCompany(_ context.Context, companyID, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	var list []*entity.PurchaseOrder
	for _, po := range v.d.purchaseOrders {
		if po.CompanyID != companyID {
			continue
		}
		if status != "" && po.Status != status {
			continue
		}
		cp := po
		cp.Items = append([]entity.PurchaseOrderItem(nil), po.Items...)
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

// --- devoluciones

type returnView struct{ d *data }

func (v returnView) Create(_ context.Context, req *entity.ReturnRequest) error {
	if _, ok := v.d.returns[req.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *req
	cp.Items = append([]entity.ReturnItem(nil), req.Items...)
	v.d.returns[req.ID] = cp
	return nil
}

func (v returnView) GetByID(_ context.Context, companyID, id string) (*entity.ReturnRequest, error) {
	req, ok := v.d.returns[id]
	if !ok || req.CompanyID != companyID {
		return nil, nil
	}
	cp := req
	cp.Items = append([]entity.ReturnItem(nil), req.Items...)
	return &cp, nil
}

func (v returnView) GetForUpdate(ctx context.Context, companyID, id string) (*entity.ReturnRequest, error) {
	return v.GetByID(ctx, companyID, id)
}

func (v returnView) UpdateStatus(_ context.Context, id, status, reviewedBy string) error {
	req, ok := v.d.returns[id]
	if !ok {
		return domain.ErrNotFound
	}
	req.Status = status
	req.ReviewedBy = reviewedBy
	v.d.returns[id] = req
	return nil
}

func (v returnView) ListByCompany(_ context.Context, companyID, status string, limit, offset int) ([]*entity.ReturnRequest, error) {
	var list []*entity.ReturnRequest
	for _, req := range v.d.returns {
		if req.CompanyID != companyID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		cp := req
		cp.Items = append([]entity.ReturnItem(nil), req.Items...)
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

// --- ventas

type saleView struct{ d *data }

func (v saleView) Create(_ context.Context, sale *entity.Sale) error {
	if _, ok := v.d.sales[sale.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *sale
	cp.Items = append([]entity.SaleItem(nil), sale.Items...)
	v.d.sales[sale.ID] = cp
	return nil
}

func (v saleView) GetByID(_ context.Context, companyID, id string) (*entity.Sale, error) {
	sale, ok := v.d.sales[id]
	if !ok || sale.CompanyID != companyID {
		return nil, nil
	}
	cp := sale
	cp.Items = append([]entity.SaleItem(nil), sale.Items...)
	return &cp, nil
}

// --- usuarios

type userView struct{ d *data }

func (v userView) Create(_ context.Context, user *entity.User) error {
	for _, u := range v.d.users {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	v.d.users[user.ID] = *user
	return nil
}

func (v userView) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := v.d.users[id]
	if !ok {
		return nil, nil
	}
	cp := u
	return &cp, nil
}

func (v userView) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range v.d.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (v userView) GetByEmailAndCompany(_ context.Context, email, companyID string) (*entity.User, error) {
	for _, u := range v.d.users {
		if u.Email == email && u.CompanyID == companyID {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (v userView) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.User, error) {
	var list []*entity.User
	for _, u := range v.d.users {
		if u.CompanyID == companyID {
			cp := u
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

func (v userView) Delete(_ context.Context, id string) error {
	delete(v.d.users, id)
	return nil
}

func (v userView) CountActiveAdmins(_ context.Context, companyID string) (int, error) {
	count := 0
	for _, u := range v.d.users {
		if u.CompanyID == companyID && u.Role == entity.RoleAdmin && u.Status == "active" {
			count++
		}
	}
	return count, nil
}

// --- empresas

type companyView struct{ d *data }

func (v companyView) Create(_ context.Context, company *entity.Company) error {
	if _, ok := v.d.companies[company.ID]; ok {
		return domain.ErrDuplicate
	}
	v.d.companies[company.ID] = *company
	return nil
}

func (v companyView) GetByID(_ context.Context, id string) (*entity.Company, error) {
	c, ok := v.d.companies[id]
	if !ok {
		return nil, nil
	}
	cp := c
	return &cp, nil
}

func (v companyView) Delete(_ context.Context, id string) error {
	delete(v.d.companies, id)
	return nil
}

func paginate[T any](list []*T, limit, offset int) []*T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
