package enums

import "fmt"

// WorkOrderStatus maps to the work_order_status_enum enum in Postgres.
type WorkOrderStatus string

const (
	WorkOrderStatusReceived       WorkOrderStatus = "received"
	WorkOrderStatusDiagnosing     WorkOrderStatus = "diagnosing"
	WorkOrderStatusInRepair       WorkOrderStatus = "in_repair"
	WorkOrderStatusReadyForPickup WorkOrderStatus = "ready_for_pickup"
	WorkOrderStatusDelivered      WorkOrderStatus = "delivered"
	WorkOrderStatusCompleted      WorkOrderStatus = "completed"
	WorkOrderStatusCancelled      WorkOrderStatus = "cancelled"
)

var validWorkOrderStatuses = []WorkOrderStatus{
	WorkOrderStatusReceived,
	WorkOrderStatusDiagnosing,
	WorkOrderStatusInRepair,
	WorkOrderStatusReadyForPickup,
	WorkOrderStatusDelivered,
	WorkOrderStatusCompleted,
	WorkOrderStatusCancelled,
}

var terminalWorkOrderStatuses = []WorkOrderStatus{
	WorkOrderStatusDelivered,
	WorkOrderStatusCompleted,
	WorkOrderStatusCancelled,
}

// IsValid reports whether the value matches the canonical work order status enum.
func (s WorkOrderStatus) IsValid() bool {
	for _, candidate := range validWorkOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order can no longer change status.
func (s WorkOrderStatus) IsTerminal() bool {
	for _, candidate := range terminalWorkOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseWorkOrderStatus converts raw input into WorkOrderStatus.
func ParseWorkOrderStatus(value string) (WorkOrderStatus, error) {
	for _, candidate := range validWorkOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid work order status %q", value)
}
