// Package memory implementa todos los puertos de persistencia sobre mapas en
// memoria. Se usa con DB_DRIVER=memory (desarrollo local) y en los tests de la
// capa de aplicación. Las transacciones clonan el estado antes de ejecutar el
// callback y lo restauran si falla, de modo que el rollback es real.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/TiendaOps-api/internal/application/inventory"
	"github.com/jhoicas/TiendaOps-api/internal/application/purchasing"
	"github.com/jhoicas/TiendaOps-api/internal/application/returns"
	"github.com/jhoicas/TiendaOps-api/internal/application/sales"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
)

// El Store cumple los cuatro runners transaccionales; los repositorios se
// obtienen con los accessors (Products, History, ...).
var _ inventory.TxRunner = (*Store)(nil)
var _ purchasing.TxRunner = (*Store)(nil)
var _ returns.TxRunner = (*Store)(nil)
var _ sales.TxRunner = (*Store)(nil)

// data es el estado completo del store. Las entidades se guardan por valor;
// los slices internos (Items) se copian al leer y escribir para evitar aliasing.
type data struct {
	products       map[string]entity.Product
	history        []entity.StockHistory
	purchaseOrders map[string]entity.PurchaseOrder
	returns        map[string]entity.ReturnRequest
	sales          map[string]entity.Sale
	users          map[string]entity.User
	companies      map[string]entity.Company
}

func newData() *data {
	return &data{
		products:       map[string]entity.Product{},
		purchaseOrders: map[string]entity.PurchaseOrder{},
		returns:        map[string]entity.ReturnRequest{},
		sales:          map[string]entity.Sale{},
		users:          map[string]entity.User{},
		companies:      map[string]entity.Company{},
	}
}

func (d *data) clone() *data {
	c := &data{
		products:       make(map[string]entity.Product, len(d.products)),
		history:        make([]entity.StockHistory, len(d.history)),
		purchaseOrders: make(map[string]entity.PurchaseOrder, len(d.purchaseOrders)),
		returns:        make(map[string]entity.ReturnRequest, len(d.returns)),
		sales:          make(map[string]entity.Sale, len(d.sales)),
		users:          make(map[string]entity.User, len(d.users)),
		companies:      make(map[string]entity.Company, len(d.companies)),
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	copy(c.history, d.history)
	for k, v := range d.purchaseOrders {
		v.Items = append([]entity.PurchaseOrderItem(nil), v.Items...)
		c.purchaseOrders[k] = v
	}
	for k, v := range d.returns {
		v.Items = append([]entity.ReturnItem(nil), v.Items...)
		c.returns[k] = v
	}
	for k, v := range d.sales {
		v.Items = append([]entity.SaleItem(nil), v.Items...)
		c.sales[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.companies {
		c.companies[k] = v
	}
	return c
}

// Store almacén en memoria. Un solo mutex serializa todo: cada transacción lo
// retiene de principio a fin, igual que los locks de fila serializan en
// PostgreSQL. Los accessors devuelven adaptadores que toman el lock por
// operación; dentro de una transacción se usan vistas sin lock porque el
// runner ya lo retiene.
type Store struct {
	mu sync.Mutex
	d  *data
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{d: newData()}
}

// Products repositorio de productos con locking por operación.
func (s *Store) Products() repository.ProductRepository { return lockedProducts{s} }

// History repositorio del ledger con locking por operación.
func (s *Store) History() repository.StockHistoryRepository { return lockedHistory{s} }

// PurchaseOrders repositorio de órdenes de compra con locking por operación.
func (s *Store) PurchaseOrders() repository.PurchaseOrderRepository { return lockedPurchaseOrders{s} }

// Returns repositorio de devoluciones con locking por operación.
func (s *Store) Returns() repository.ReturnRepository { return lockedReturns{s} }

// Sales repositorio de ventas con locking por operación.
func (s *Store) Sales() repository.SaleRepository { return lockedSales{s} }

// Users repositorio de usuarios con locking por operación.
func (s *Store) Users() repository.UserRepository { return lockedUsers{s} }

// Companies repositorio de empresas con locking por operación.
func (s *Store) Companies() repository.CompanyRepository { return lockedCompanies{s} }

func (s *Store) inTx(fn func(d *data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.d.clone()
	if err := fn(s.d); err != nil {
		s.d = snap
		return err
	}
	return nil
}

// Run transacción del mutador: producto + historial.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	historyRepo repository.StockHistoryRepository,
) error) error {
	return s.inTx(func(d *data) error {
		return fn(productView{d}, historyView{d})
	})
}

// RunPurchase transacción del flujo de órdenes de compra.
func (s *Store) RunPurchase(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	historyRepo repository.StockHistoryRepository,
	poRepo repository.PurchaseOrderRepository,
) error) error {
	return s.inTx(func(d *data) error {
		return fn(productView{d}, historyView{d}, purchaseOrderView{d})
	})
}

// RunReturn transacción del flujo de devoluciones.
func (s *Store) RunReturn(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	historyRepo repository.StockHistoryRepository,
	returnRepo repository.ReturnRepository,
) error) error {
	return s.inTx(func(d *data) error {
		return fn(productView{d}, historyView{d}, returnView{d})
	})
}

// RunSale transacción del flujo de ventas.
func (s *Store) RunSale(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	historyRepo repository.StockHistoryRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return s.inTx(func(d *data) error {
		return fn(productView{d}, historyView{d}, saleView{d})
	})
}
