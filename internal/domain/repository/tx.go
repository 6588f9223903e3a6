package repository

// TxRepositories agrupa los repositorios ligados a una misma transacción.
type TxRepositories struct {
	Products       ProductRepository
	Movements      StockMovementRepository
	PurchaseOrders PurchaseOrderRepository
	Sales          SaleRepository
}
