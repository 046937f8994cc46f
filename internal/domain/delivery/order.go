package delivery

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Order Errors
// ---------------------------------------------------------------------------

var (
	ErrOrderNotFound        = errors.New("delivery: order not found")
	ErrOrderNotAssigned     = errors.New("delivery: order has no delivery company assigned")
	ErrInvalidDeliveryState = errors.New("delivery: invalid delivery status")
)

// ---------------------------------------------------------------------------
// DeliveryStatus
// ---------------------------------------------------------------------------

// DeliveryStatus is the internal delivery status of an order. Provider
// statuses are translated into this enum; anything unrecognized maps to
// StatusAssigned.
type DeliveryStatus string

const (
	// StatusAssigned means the order was handed to a courier
	StatusAssigned DeliveryStatus = "assigned"
	// StatusPickedUp means the courier collected the parcel
	StatusPickedUp DeliveryStatus = "picked_up"
	// StatusInTransit means the parcel is moving through the network
	StatusInTransit DeliveryStatus = "in_transit"
	// StatusOutForDelivery means the parcel is on the last leg
	StatusOutForDelivery DeliveryStatus = "out_for_delivery"
	// StatusDelivered means the parcel reached the customer
	StatusDelivered DeliveryStatus = "delivered"
	// StatusFailed means a delivery attempt failed
	StatusFailed DeliveryStatus = "delivery_failed"
	// StatusReturned means the parcel was returned to sender
	StatusReturned DeliveryStatus = "returned"
	// StatusCancelled means the delivery was cancelled
	StatusCancelled DeliveryStatus = "cancelled"
)

// IsValid returns true if the status is one of the eight internal values
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case StatusAssigned, StatusPickedUp, StatusInTransit, StatusOutForDelivery,
		StatusDelivered, StatusFailed, StatusReturned, StatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of DeliveryStatus
func (s DeliveryStatus) String() string {
	return string(s)
}

// IsFinal returns true for terminal delivery states
func (s DeliveryStatus) IsFinal() bool {
	switch s {
	case StatusDelivered, StatusReturned, StatusCancelled:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Order (dispatch subset)
// ---------------------------------------------------------------------------

// OrderItem is one ordered line item.
type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CustomerInfo is the buyer contact block on an order.
type CustomerInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
}

// FullName returns first and last name joined and trimmed.
func (c CustomerInfo) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// ShippingAddress is the delivery destination on an order.
type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Oneline returns the address as a single comma-joined string.
func (a ShippingAddress) Oneline() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Street, a.City, a.Country} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}

// DeliveryInfo carries the mutable delivery fields of an order. They are
// written only after a successful dispatch, with overwrite semantics: no
// history of prior assignments is kept.
type DeliveryInfo struct {
	// CompanyID is the assigned delivery company
	CompanyID *uuid.UUID
	// Status is empty until the order is assigned
	Status DeliveryStatus
	// TrackingNumber is the provider's tracking identifier
	TrackingNumber string
	// TrackingID mirrors TrackingNumber for consumers of the legacy field
	TrackingID string
	// ProviderResponse is the raw provider response of the last dispatch
	ProviderResponse map[string]any
	// AssignedAt is when the current assignment was made
	AssignedAt *time.Time
	// Fee is the delivery fee charged for this shipment
	Fee decimal.Decimal
}

// Order is the dispatch-relevant subset of a storefront order. The full
// order lifecycle (cart, payment, fulfillment) lives outside this service.
type Order struct {
	ID          uuid.UUID
	OrderNumber string
	// Status is the storefront order status (pending, confirmed, ...),
	// consulted for auto-dispatch eligibility
	Status      string
	Items       []OrderItem
	Customer    CustomerInfo
	Shipping    ShippingAddress
	TotalAmount decimal.Decimal
	Currency    string
	Notes       string
	Delivery    DeliveryInfo
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Ref returns the identifier used in provider-facing references: the order
// number when present, otherwise the UUID.
func (o *Order) Ref() string {
	if o.OrderNumber != "" {
		return o.OrderNumber
	}
	return o.ID.String()
}

// ItemCount returns the total ordered quantity across line items.
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// ProductNames returns the line-item names comma-joined.
func (o *Order) ProductNames() string {
	names := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		if it.Name != "" {
			names = append(names, it.Name)
		}
	}
	return strings.Join(names, ", ")
}

// TotalWithShipping returns the order total plus the delivery fee.
func (o *Order) TotalWithShipping() decimal.Decimal {
	return o.TotalAmount.Add(o.Delivery.Fee)
}

// AssignDelivery records a successful dispatch on the order. Prior delivery
// fields are overwritten.
func (o *Order) AssignDelivery(companyID uuid.UUID, status DeliveryStatus, trackingNumber string, fee decimal.Decimal, providerResponse map[string]any, at time.Time) error {
	if !status.IsValid() {
		return ErrInvalidDeliveryState
	}
	o.Delivery.CompanyID = &companyID
	o.Delivery.Status = status
	o.Delivery.TrackingNumber = trackingNumber
	o.Delivery.TrackingID = trackingNumber
	o.Delivery.ProviderResponse = providerResponse
	o.Delivery.AssignedAt = &at
	o.Delivery.Fee = fee
	o.UpdatedAt = at
	return nil
}

// UpdateDeliveryStatus moves the order to a new internal delivery status.
// The order must already be assigned to a company.
func (o *Order) UpdateDeliveryStatus(status DeliveryStatus) error {
	if o.Delivery.CompanyID == nil {
		return ErrOrderNotAssigned
	}
	if !status.IsValid() {
		return ErrInvalidDeliveryState
	}
	o.Delivery.Status = status
	o.UpdatedAt = time.Now()
	return nil
}
