package enums

import "fmt"

// NotificationKind categorizes persisted notifications.
type NotificationKind string

const (
	NotificationKindOrderPlaced   NotificationKind = "order_placed"
	NotificationKindOrderStatus   NotificationKind = "order_status"
	NotificationKindPaymentUpdate NotificationKind = "payment_update"
	NotificationKindRefundUpdate  NotificationKind = "refund_update"
	NotificationKindLowStock      NotificationKind = "low_stock"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindOrderPlaced,
	NotificationKindOrderStatus,
	NotificationKindPaymentUpdate,
	NotificationKindRefundUpdate,
	NotificationKindLowStock,
}

// IsValid checks whether the given kind matches the canonical enum.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw strings into NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}

// NotificationChannel is the transport a notification is delivered over.
type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelSMS   NotificationChannel = "sms"
)

// IsValid checks whether the given channel matches the canonical enum.
func (n NotificationChannel) IsValid() bool {
	return n == NotificationChannelEmail || n == NotificationChannelSMS
}
