package delivery

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/storefront/backend/internal/domain/delivery"
)

// ---------------------------------------------------------------------------
// Company DTOs
// ---------------------------------------------------------------------------

// CreateCompanyRequest creates a new delivery company configuration.
type CreateCompanyRequest struct {
	Code                 string                    `json:"code"`
	Name                 string                    `json:"name"`
	IsDefault            bool                      `json:"is_default"`
	AutoDispatch         bool                      `json:"auto_dispatch"`
	AutoDispatchStatuses []string                  `json:"auto_dispatch_statuses"`
	API                  domain.APIConfiguration   `json:"api_configuration"`
	FieldMappings        []domain.FieldMappingRule `json:"field_mappings"`
	LegacyFieldMapping   map[string]string         `json:"legacy_field_mapping"`
	StatusMappings       []domain.StatusMappingEntry `json:"status_mappings"`
	CustomFields         map[string]any            `json:"custom_fields"`
}

// UpdateCompanyRequest updates an existing company. Nil fields are left
// untouched; non-nil fields replace the stored value wholesale.
type UpdateCompanyRequest struct {
	Name                 *string                      `json:"name"`
	IsActive             *bool                        `json:"is_active"`
	IsDefault            *bool                        `json:"is_default"`
	AutoDispatch         *bool                        `json:"auto_dispatch"`
	AutoDispatchStatuses *[]string                    `json:"auto_dispatch_statuses"`
	API                  *domain.APIConfiguration     `json:"api_configuration"`
	FieldMappings        *[]domain.FieldMappingRule   `json:"field_mappings"`
	LegacyFieldMapping   *map[string]string           `json:"legacy_field_mapping"`
	StatusMappings       *[]domain.StatusMappingEntry `json:"status_mappings"`
	CustomFields         *map[string]any              `json:"custom_fields"`
}

// CompanyResponse is the outward representation of a delivery company.
// Credentials are redacted to presence flags.
type CompanyResponse struct {
	ID                   uuid.UUID                   `json:"id"`
	Code                 string                      `json:"code"`
	Name                 string                      `json:"name"`
	IsActive             bool                        `json:"is_active"`
	IsDefault            bool                        `json:"is_default"`
	AutoDispatch         bool                        `json:"auto_dispatch"`
	AutoDispatchStatuses []string                    `json:"auto_dispatch_statuses,omitempty"`
	API                  APIConfigurationResponse    `json:"api_configuration"`
	FieldMappings        []domain.FieldMappingRule   `json:"field_mappings,omitempty"`
	LegacyFieldMapping   map[string]string           `json:"legacy_field_mapping,omitempty"`
	StatusMappings       []domain.StatusMappingEntry `json:"status_mappings,omitempty"`
	CustomFields         map[string]any              `json:"custom_fields,omitempty"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
}

// APIConfigurationResponse mirrors APIConfiguration without secrets.
type APIConfigurationResponse struct {
	BaseURL        string                `json:"base_url"`
	Format         domain.ProtocolFormat `json:"format"`
	AuthMethod     domain.AuthMethod     `json:"auth_method"`
	HasCredentials bool                  `json:"has_credentials"`
	StaticParams   map[string]string     `json:"static_params,omitempty"`
	QueryParams    map[string]string     `json:"query_params,omitempty"`
	RequiredParams []string              `json:"required_params,omitempty"`
	IsTestMode     bool                  `json:"is_test_mode"`
	TimeoutSeconds int                   `json:"timeout_seconds,omitempty"`
	JSONRPCMethod  string                `json:"jsonrpc_method,omitempty"`
	OmitMethod     bool                  `json:"omit_method,omitempty"`
	StatusCheckURL string                `json:"status_check_url,omitempty"`
	ProviderFamily domain.ProviderFamily `json:"provider_family,omitempty"`
}

// ToCompanyResponse converts a domain company to its response DTO.
func ToCompanyResponse(c *domain.DeliveryCompany) CompanyResponse {
	creds := c.API.Credentials
	return CompanyResponse{
		ID:                   c.ID,
		Code:                 c.Code,
		Name:                 c.Name,
		IsActive:             c.IsActive,
		IsDefault:            c.IsDefault,
		AutoDispatch:         c.AutoDispatch,
		AutoDispatchStatuses: c.AutoDispatchStatuses,
		API: APIConfigurationResponse{
			BaseURL:    c.API.BaseURL,
			Format:     c.API.Format,
			AuthMethod: c.API.AuthMethod,
			HasCredentials: creds.Username != "" || creds.Password != "" ||
				creds.APIKey != "" || creds.Token != "",
			StaticParams:   c.API.StaticParams,
			QueryParams:    c.API.QueryParams,
			RequiredParams: c.API.RequiredParams,
			IsTestMode:     c.API.IsTestMode,
			TimeoutSeconds: c.API.TimeoutSeconds,
			JSONRPCMethod:  c.API.JSONRPCMethod,
			OmitMethod:     c.API.OmitMethod,
			StatusCheckURL: c.API.StatusCheckURL,
			ProviderFamily: c.API.ProviderFamily,
		},
		FieldMappings:      c.FieldMappings,
		LegacyFieldMapping: c.LegacyFieldMapping,
		StatusMappings:     c.StatusMappings,
		CustomFields:       c.CustomFields,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// ConfigValidationResponse reports configuration issues for one company.
type ConfigValidationResponse struct {
	OK     bool              `json:"ok"`
	Mode   domain.ConfigMode `json:"mode"`
	URL    string            `json:"url,omitempty"`
	Issues []string          `json:"issues,omitempty"`
}

// CompanyListFilter narrows and paginates company listings.
type CompanyListFilter struct {
	Page     int
	PageSize int
	Search   string
	IsActive *bool
}

// ---------------------------------------------------------------------------
// Dispatch DTOs
// ---------------------------------------------------------------------------

// DispatchRequest names the company (explicitly or implicitly) and optional
// overrides for one dispatch. With no company reference the default company
// is used.
type DispatchRequest struct {
	CompanyID   *uuid.UUID       `json:"company_id"`
	CompanyCode string           `json:"company_code"`
	DeliveryFee *decimal.Decimal `json:"delivery_fee"`
}

// DispatchResponse is the outcome of one successful dispatch.
type DispatchResponse struct {
	OrderID        uuid.UUID             `json:"order_id"`
	OrderNumber    string                `json:"order_number"`
	CompanyID      uuid.UUID             `json:"company_id"`
	CompanyCode    string                `json:"company_code"`
	TrackingNumber string                `json:"tracking_number"`
	DeliveryStatus domain.DeliveryStatus `json:"delivery_status"`
	ProviderStatus string                `json:"provider_status"`
	Mode           domain.ConfigMode     `json:"mode"`
	AssignedAt     time.Time             `json:"assigned_at"`
}

// BatchDispatchRequest dispatches several orders to one company,
// sequentially and optionally stopping at the first failure.
type BatchDispatchRequest struct {
	OrderIDs    []uuid.UUID      `json:"order_ids"`
	CompanyID   *uuid.UUID       `json:"company_id"`
	CompanyCode string           `json:"company_code"`
	DeliveryFee *decimal.Decimal `json:"delivery_fee"`
	StopOnError bool             `json:"stop_on_error"`
}

// BatchDispatchItem is the per-order outcome within a batch.
type BatchDispatchItem struct {
	OrderID  uuid.UUID            `json:"order_id"`
	Success  bool                 `json:"success"`
	Response *DispatchResponse    `json:"response,omitempty"`
	Error    *DispatchErrorDetail `json:"error,omitempty"`
}

// BatchDispatchResponse aggregates a batch run.
type BatchDispatchResponse struct {
	Items     []BatchDispatchItem `json:"items"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Stopped   bool                `json:"stopped"`
}

// DispatchErrorDetail is the serializable form of a dispatch failure.
type DispatchErrorDetail struct {
	Code          string                  `json:"code"`
	Message       string                  `json:"message"`
	Missing       []domain.MissingMapping `json:"missing,omitempty"`
	MissingParams []string                `json:"missing_params,omitempty"`
	ProviderCode  string                  `json:"provider_code,omitempty"`
}

// ToDispatchErrorDetail flattens any dispatch failure for transport. Errors
// outside the dispatch taxonomy map to a bare message.
func ToDispatchErrorDetail(err error) DispatchErrorDetail {
	if de, ok := domain.AsDispatchError(err); ok {
		return DispatchErrorDetail{
			Code:          string(de.Code),
			Message:       de.Message,
			Missing:       de.Missing,
			MissingParams: de.MissingParams,
			ProviderCode:  de.ProviderCode,
		}
	}
	return DispatchErrorDetail{Message: err.Error()}
}

// OrderDeliveryResponse is the delivery-facing view of one order.
type OrderDeliveryResponse struct {
	OrderID          uuid.UUID             `json:"order_id"`
	OrderNumber      string                `json:"order_number"`
	Status           string                `json:"status"`
	CompanyID        *uuid.UUID            `json:"company_id,omitempty"`
	CompanyCode      string                `json:"company_code,omitempty"`
	DeliveryStatus   domain.DeliveryStatus `json:"delivery_status"`
	TrackingNumber   string                `json:"tracking_number,omitempty"`
	ProviderResponse map[string]any        `json:"provider_response,omitempty"`
	AssignedAt       *time.Time            `json:"assigned_at,omitempty"`
	DeliveryFee      decimal.Decimal       `json:"delivery_fee"`
}

// StatusUpdateRequest carries a provider status for an assigned order.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// StatusUpdateResponse reports the mapped internal status.
type StatusUpdateResponse struct {
	OrderID        uuid.UUID             `json:"order_id"`
	ProviderStatus string                `json:"provider_status"`
	DeliveryStatus domain.DeliveryStatus `json:"delivery_status"`
}
