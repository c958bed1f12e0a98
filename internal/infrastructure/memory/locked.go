package memory

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
)

// Adaptadores que toman el lock del Store por operación y delegan en la vista
// correspondiente. Es lo que se entrega a los casos de uso fuera de una
// transacción.

type lockedProducts struct{ s *Store }

func (r lockedProducts) Create(ctx context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return productView{r.s.d}.Create(ctx, product)
}

func (r lockedProducts) GetByID(ctx context.Context, companyID, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return productView{r.s.d}.GetByID(ctx, companyID, id)
}

func (r lockedProducts) GetBySKU(ctx context.Context, companyID, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return productView{r.s.d}.GetBySKU(ctx, companyID, sku)
}

func (r lockedProducts) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return productView{r.s.d}.GetForUpdate(ctx, companyID, id)
}

func (r lockedProducts) Update(ctx context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return productView{r.s.d}.Update(ctx, product)
}

func (r lockedProducts) UpdateStockVersioned(ctx context.Context, productID string, newQuantity decimal.Decimal, expectedVersion int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return productView{r.s.d}.UpdateStockVersioned(ctx, productID, newQuantity, expectedVersion)
}

func (r lockedProducts) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return productView{r.s.d}.ListByCompany(ctx, companyID, limit, offset)
}

func (r lockedProducts) ListLowStock(ctx context.Context, companyID string) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return productView{r.s.d}.ListLowStock(ctx, companyID)
}

type lockedHistory struct{ s *Store }

func (r lockedHistory) Create(ctx context.Context, entry *entity.StockHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return historyView{r.s.d}.Create(ctx, entry)
}

func (r lockedHistory) ListByProduct(ctx context.Context, companyID, productID string, f repository.StockHistoryFilter) ([]*entity.StockHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return historyView{r.s.d}.ListByProduct(ctx, companyID, productID, f)
}

func (r lockedHistory) ExistsByReference(ctx context.Context, productID, referenceID, eventType string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return historyView{r.s.d}.ExistsByReference(ctx, productID, referenceID, eventType)
}

func (r lockedHistory) SumByProduct(ctx context.Context, companyID, productID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return historyView{r.s.d}.SumByProduct(ctx, companyID, productID)
}

type lockedPurchaseOrders struct{ s *Store }

func (r lockedPurchaseOrders) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return purchaseOrderView{r.s.d}.Create(ctx, po)
}

func (r lockedPurchaseOrders) GetByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return purchaseOrderView{r.s.d}.GetByID(ctx, companyID, id)
}

func (r lockedPurchaseOrders) GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return purchaseOrderView{r.s.d}.GetForUpdate(ctx, companyID, id)
}

func (r lockedPurchaseOrders) UpdateStatus(ctx context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return purchaseOrderView{r.s.d}.UpdateStatus(ctx, id, status)
}

func (r lockedPurchaseOrders) UpdateItemReceived(ctx context.Context, poID, productID string, quantityReceived decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return purchaseOrderView{r.s.d}.UpdateItemReceived(ctx, poID, productID, quantityReceived)
}

func (r lockedPurchaseOrders) ListByCompany(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return purchaseOrderView{r.s.d}.ListByCompany(ctx, companyID, status, limit, offset)
}

type lockedReturns struct{ s *Store }

func (r lockedReturns) Create(ctx context.Context, req *entity.ReturnRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return returnView{r.s.d}.Create(ctx, req)
}

func (r lockedReturns) GetByID(ctx context.Context, companyID, id string) (*entity.ReturnRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return returnView{r.s.d}.GetByID(ctx, companyID, id)
}

func (r lockedReturns) GetForUpdate(ctx context.Context, companyID, id string) (*entity.ReturnRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return returnView{r.s.d}.GetForUpdate(ctx, companyID, id)
}

func (r lockedReturns) UpdateStatus(ctx context.Context, id, status, reviewedBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return returnView{r.s.d}.UpdateStatus(ctx, id, status, reviewedBy)
}

func (r lockedReturns) ListByCompany(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.ReturnRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return returnView{r.s.d}.ListByCompany(ctx, companyID, status, limit, offset)
}

type lockedSales struct{ s *Store }

func (r lockedSales) Create(ctx context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return saleView{r.s.d}.Create(ctx, sale)
}

func (r lockedSales) GetByID(ctx context.Context, companyID, id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return saleView{r.s.d}.GetByID(ctx, companyID, id)
}

type lockedUsers struct{ s *Store }

func (r lockedUsers) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return userView{r.s.d}.Create(ctx, user)
}

func (r lockedUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return userView{r.s.d}.GetByID(ctx, id)
}

func (r lockedUsers) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return userView{r.s.d}.FindByEmail(ctx, email)
}

func (r lockedUsers) GetByEmailAndCompany(ctx context.Context, email, companyID string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return userView{r.s.d}.GetByEmailAndCompany(ctx, email, companyID)
}

func (r lockedUsers) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return userView{r.s.d}.ListByCompany(ctx, companyID, limit, offset)
}

func (r lockedUsers) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return userView{r.s.d}.Delete(ctx, id)
}

func (r lockedUsers) CountActiveAdmins(ctx context.Context, companyID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return userView{r.s.d}.CountActiveAdmins(ctx, companyID)
}

type lockedCompanies struct{ s *Store }

func (r lockedCompanies) Create(ctx context.Context, company *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return companyView{r.s.d}.Create(ctx, company)
}

func (r lockedCompanies) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return companyView{r.s.d}.GetByID(ctx, id)
}

func (r lockedCompanies) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return companyView{r.s.d}.Delete(ctx, id)
}
