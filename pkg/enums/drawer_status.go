package enums

import "fmt"

// DrawerStatus maps to the drawer_status_enum enum in Postgres.
type DrawerStatus string

const (
	DrawerStatusOpen   DrawerStatus = "open"
	DrawerStatusClosed DrawerStatus = "closed"
)

var validDrawerStatuses = []DrawerStatus{
	DrawerStatusOpen,
	DrawerStatusClosed,
}

// IsValid reports whether the value matches the canonical drawer status enum.
func (s DrawerStatus) IsValid() bool {
	for _, candidate := range validDrawerStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDrawerStatus converts raw input into DrawerStatus.
func ParseDrawerStatus(value string) (DrawerStatus, error) {
	for _, candidate := range validDrawerStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid drawer status %q", value)
}
