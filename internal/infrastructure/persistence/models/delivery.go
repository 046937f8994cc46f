package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/delivery"
)

// DeliveryCompanyModel is the persistence model for the DeliveryCompany
// aggregate. The nested configuration blocks are stored as JSONB documents;
// only the fields the repositories query on get their own columns.
type DeliveryCompanyModel struct {
	ID                       uuid.UUID `gorm:"type:uuid;primary_key"`
	Code                     string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name                     string    `gorm:"type:varchar(255);not null"`
	IsActive                 bool      `gorm:"not null;default:true;index"`
	IsDefault                bool      `gorm:"not null;default:false;index"`
	AutoDispatch             bool      `gorm:"not null;default:false;index"`
	AutoDispatchStatusesJSON string    `gorm:"type:jsonb;column:auto_dispatch_statuses;default:'[]'"`
	APIConfigurationJSON     string    `gorm:"type:jsonb;column:api_configuration;default:'{}'"`
	FieldMappingsJSON        string    `gorm:"type:jsonb;column:field_mappings;default:'[]'"`
	LegacyFieldMappingJSON   string    `gorm:"type:jsonb;column:legacy_field_mapping;default:'{}'"`
	StatusMappingsJSON       string    `gorm:"type:jsonb;column:status_mappings;default:'[]'"`
	CustomFieldsJSON         string    `gorm:"type:jsonb;column:custom_fields;default:'{}'"`
	CreatedAt                time.Time `gorm:"not null"`
	UpdatedAt                time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DeliveryCompanyModel) TableName() string {
	return "delivery_companies"
}

// ToDomain converts the persistence model to a domain DeliveryCompany.
// Malformed JSON documents degrade to empty configuration rather than
// failing the read.
func (m *DeliveryCompanyModel) ToDomain() *delivery.DeliveryCompany {
	company := &delivery.DeliveryCompany{
		ID:           m.ID,
		Code:         m.Code,
		Name:         m.Name,
		IsActive:     m.IsActive,
		IsDefault:    m.IsDefault,
		AutoDispatch: m.AutoDispatch,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}

	if m.AutoDispatchStatusesJSON != "" {
		_ = json.Unmarshal([]byte(m.AutoDispatchStatusesJSON), &company.AutoDispatchStatuses)
	}
	if m.APIConfigurationJSON != "" {
		_ = json.Unmarshal([]byte(m.APIConfigurationJSON), &company.API)
	}
	if m.FieldMappingsJSON != "" {
		_ = json.Unmarshal([]byte(m.FieldMappingsJSON), &company.FieldMappings)
	}
	if m.LegacyFieldMappingJSON != "" {
		_ = json.Unmarshal([]byte(m.LegacyFieldMappingJSON), &company.LegacyFieldMapping)
	}
	if m.StatusMappingsJSON != "" {
		_ = json.Unmarshal([]byte(m.StatusMappingsJSON), &company.StatusMappings)
	}
	if m.CustomFieldsJSON != "" {
		_ = json.Unmarshal([]byte(m.CustomFieldsJSON), &company.CustomFields)
	}

	return company
}

// FromDomain populates the persistence model from a domain DeliveryCompany.
func (m *DeliveryCompanyModel) FromDomain(c *delivery.DeliveryCompany) {
	m.ID = c.ID
	m.Code = c.Code
	m.Name = c.Name
	m.IsActive = c.IsActive
	m.IsDefault = c.IsDefault
	m.AutoDispatch = c.AutoDispatch
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt

	m.AutoDispatchStatusesJSON = marshalOr(c.AutoDispatchStatuses, "[]")
	m.APIConfigurationJSON = marshalOr(c.API, "{}")
	m.FieldMappingsJSON = marshalOr(c.FieldMappings, "[]")
	m.LegacyFieldMappingJSON = marshalOr(c.LegacyFieldMapping, "{}")
	m.StatusMappingsJSON = marshalOr(c.StatusMappings, "[]")
	m.CustomFieldsJSON = marshalOr(c.CustomFields, "{}")
}

// OrderModel is the persistence model for the dispatch-relevant order
// subset. Customer and shipping fields are flattened into columns; line
// items and the raw provider response are JSONB documents.
type OrderModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status      string          `gorm:"type:varchar(30);not null;index"`
	ItemsJSON   string          `gorm:"type:jsonb;column:items;default:'[]'"`
	FirstName   string          `gorm:"type:varchar(100)"`
	LastName    string          `gorm:"type:varchar(100)"`
	Email       string          `gorm:"type:varchar(255)"`
	Mobile      string          `gorm:"type:varchar(50)"`
	Street      string          `gorm:"type:varchar(255)"`
	City        string          `gorm:"type:varchar(100)"`
	Country     string          `gorm:"type:varchar(100)"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Currency    string          `gorm:"type:varchar(3)"`
	Notes       string          `gorm:"type:text"`

	DeliveryCompanyID    *uuid.UUID              `gorm:"type:uuid;index"`
	DeliveryStatus       delivery.DeliveryStatus `gorm:"type:varchar(30);index"`
	TrackingNumber       string                  `gorm:"type:varchar(100);index"`
	ProviderResponseJSON string                  `gorm:"type:jsonb;column:provider_response"`
	DeliveryAssignedAt   *time.Time              ``
	DeliveryFee          decimal.Decimal         `gorm:"type:numeric(12,2);not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *delivery.Order {
	order := &delivery.Order{
		ID:          m.ID,
		OrderNumber: m.OrderNumber,
		Status:      m.Status,
		Customer: delivery.CustomerInfo{
			FirstName: m.FirstName,
			LastName:  m.LastName,
			Email:     m.Email,
			Mobile:    m.Mobile,
		},
		Shipping: delivery.ShippingAddress{
			Street:  m.Street,
			City:    m.City,
			Country: m.Country,
		},
		TotalAmount: m.TotalAmount,
		Currency:    m.Currency,
		Notes:       m.Notes,
		Delivery: delivery.DeliveryInfo{
			CompanyID:      m.DeliveryCompanyID,
			Status:         m.DeliveryStatus,
			TrackingNumber: m.TrackingNumber,
			TrackingID:     m.TrackingNumber,
			AssignedAt:     m.DeliveryAssignedAt,
			Fee:            m.DeliveryFee,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}

	if m.ItemsJSON != "" {
		_ = json.Unmarshal([]byte(m.ItemsJSON), &order.Items)
	}
	if m.ProviderResponseJSON != "" {
		_ = json.Unmarshal([]byte(m.ProviderResponseJSON), &order.Delivery.ProviderResponse)
	}

	return order
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *delivery.Order) {
	m.ID = o.ID
	m.OrderNumber = o.OrderNumber
	m.Status = o.Status
	m.FirstName = o.Customer.FirstName
	m.LastName = o.Customer.LastName
	m.Email = o.Customer.Email
	m.Mobile = o.Customer.Mobile
	m.Street = o.Shipping.Street
	m.City = o.Shipping.City
	m.Country = o.Shipping.Country
	m.TotalAmount = o.TotalAmount
	m.Currency = o.Currency
	m.Notes = o.Notes
	m.DeliveryCompanyID = o.Delivery.CompanyID
	m.DeliveryStatus = o.Delivery.Status
	m.TrackingNumber = o.Delivery.TrackingNumber
	m.DeliveryAssignedAt = o.Delivery.AssignedAt
	m.DeliveryFee = o.Delivery.Fee
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt

	m.ItemsJSON = marshalOr(o.Items, "[]")
	if o.Delivery.ProviderResponse != nil {
		m.ProviderResponseJSON = marshalOr(o.Delivery.ProviderResponse, "{}")
	} else {
		m.ProviderResponseJSON = ""
	}
}

// marshalOr serializes v, falling back to the given empty document for nil
// values or marshal failures.
func marshalOr(v any, empty string) string {
	if v == nil {
		return empty
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return empty
	}
	return string(raw)
}
