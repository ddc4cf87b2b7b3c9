package enums

// OutboxAggregateType names the entity an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateShoppingList     OutboxAggregateType = "shopping_list"
	AggregateDiscrepancyAlert OutboxAggregateType = "receipt_discrepancy_alert"
	AggregateWarehouse        OutboxAggregateType = "warehouse"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateShoppingList,
	AggregateDiscrepancyAlert,
	AggregateWarehouse,
}

func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// OutboxEventType names a domain event published through the outbox.
type OutboxEventType string

const (
	EventShoppingListStatusChanged OutboxEventType = "shopping_list_status_changed"
	EventDiscrepancyDetected       OutboxEventType = "receipt_discrepancy_detected"
	EventGoodsReceived             OutboxEventType = "goods_received"
	EventStockBelowMinimum         OutboxEventType = "stock_below_minimum"
)

var validEventTypes = []OutboxEventType{
	EventShoppingListStatusChanged,
	EventDiscrepancyDetected,
	EventGoodsReceived,
	EventStockBelowMinimum,
}

func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}
