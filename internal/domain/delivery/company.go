package delivery

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// DeliveryCompany Errors
// ---------------------------------------------------------------------------

var (
	// Company errors
	ErrCompanyNotFound     = errors.New("delivery: company not found")
	ErrCompanyInactive     = errors.New("delivery: company is inactive")
	ErrCompanyCodeRequired = errors.New("delivery: company code is required")
	ErrCompanyNameRequired = errors.New("delivery: company name is required")
	ErrCompanyCodeTaken    = errors.New("delivery: company code already in use")

	// Configuration errors
	ErrConfigurationInvalid = errors.New("delivery: company configuration is invalid")
	ErrUnsupportedProtocol  = errors.New("delivery: protocol format not supported for dispatch")
)

// ---------------------------------------------------------------------------
// ProtocolFormat
// ---------------------------------------------------------------------------

// ProtocolFormat identifies the wire protocol a courier API speaks.
type ProtocolFormat string

const (
	// ProtocolREST is plain JSON-over-HTTP POST
	ProtocolREST ProtocolFormat = "rest"
	// ProtocolJSONRPC is JSON-RPC 2.0 (Odoo-style backends)
	ProtocolJSONRPC ProtocolFormat = "jsonrpc"
	// ProtocolSOAP is accepted in configuration but not dispatchable
	ProtocolSOAP ProtocolFormat = "soap"
	// ProtocolGraphQL is accepted in configuration but not dispatchable
	ProtocolGraphQL ProtocolFormat = "graphql"
)

// IsValid returns true if the protocol format is a known value
func (f ProtocolFormat) IsValid() bool {
	switch f {
	case ProtocolREST, ProtocolJSONRPC, ProtocolSOAP, ProtocolGraphQL:
		return true
	default:
		return false
	}
}

// Dispatchable returns true if the dispatch orchestrator can send via this protocol
func (f ProtocolFormat) Dispatchable() bool {
	return f == ProtocolREST || f == ProtocolJSONRPC
}

// String returns the string representation of ProtocolFormat
func (f ProtocolFormat) String() string {
	return string(f)
}

// ---------------------------------------------------------------------------
// AuthMethod
// ---------------------------------------------------------------------------

// AuthMethod identifies how outbound requests authenticate to the courier API.
type AuthMethod string

const (
	// AuthNone sends no authentication
	AuthNone AuthMethod = "none"
	// AuthAPIKey sends an API key header
	AuthAPIKey AuthMethod = "apiKey"
	// AuthBasic sends HTTP basic auth
	AuthBasic AuthMethod = "basic"
	// AuthBearer sends a bearer token
	AuthBearer AuthMethod = "bearer"
)

// IsValid returns true if the auth method is a known value
func (m AuthMethod) IsValid() bool {
	switch m {
	case AuthNone, AuthAPIKey, AuthBasic, AuthBearer, "":
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// ProviderFamily
// ---------------------------------------------------------------------------

// ProviderFamily identifies a known courier backend family. Families with
// non-generic behavior (forced low-level params, JSON-RPC preference) are
// declared on the company configuration; URL sniffing exists only as a
// fallback for configurations created before the field was introduced.
type ProviderFamily string

const (
	// ProviderGeneric is any courier with no family-specific behavior
	ProviderGeneric ProviderFamily = "generic"
	// ProviderOdoo is an Odoo-backed courier hub (JSON-RPC, requires db param)
	ProviderOdoo ProviderFamily = "odoo"
	// ProviderOlivery is the Olivery delivery hub (Odoo-based SaaS)
	ProviderOlivery ProviderFamily = "olivery"
)

// detectProviderFamily infers the family from the API URL for legacy
// configurations that predate the explicit ProviderFamily field.
func detectProviderFamily(url string) ProviderFamily {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "olivery"):
		return ProviderOlivery
	case strings.Contains(lower, "odoo"):
		return ProviderOdoo
	default:
		return ProviderGeneric
	}
}

// RequiresDatabaseParam returns true for families whose backends refuse
// requests lacking the hub-wide "db" parameter.
func (f ProviderFamily) RequiresDatabaseParam() bool {
	return f == ProviderOdoo || f == ProviderOlivery
}

// ---------------------------------------------------------------------------
// API Configuration
// ---------------------------------------------------------------------------

// Credentials holds the secrets used to authenticate against a courier API.
type Credentials struct {
	// Username for basic auth or inline JSON-RPC login
	Username string `json:"username,omitempty"`
	// Password for basic auth or inline JSON-RPC login
	Password string `json:"password,omitempty"`
	// APIKey for apiKey auth
	APIKey string `json:"api_key,omitempty"`
	// Token for bearer auth
	Token string `json:"token,omitempty"`
	// Database is the backend database name for Odoo-style hubs
	Database string `json:"database,omitempty"`
}

// APIConfiguration describes how to reach and call a courier API.
type APIConfiguration struct {
	// BaseURL is the order-creation endpoint. Empty means test mode.
	BaseURL string `json:"base_url"`
	// Format selects the protocol dispatcher
	Format ProtocolFormat `json:"format"`
	// AuthMethod selects outbound authentication
	AuthMethod AuthMethod `json:"auth_method"`
	// Credentials are the secrets for AuthMethod (and inline JSON-RPC auth)
	Credentials Credentials `json:"credentials"`
	// StaticParams are merged into every request body
	StaticParams map[string]string `json:"static_params,omitempty"`
	// QueryParams are appended to the request URL
	QueryParams map[string]string `json:"query_params,omitempty"`
	// RequiredParams must be satisfiable before dispatch is attempted
	RequiredParams []string `json:"required_params,omitempty"`
	// IsTestMode short-circuits dispatch with a simulated success
	IsTestMode bool `json:"is_test_mode"`
	// TimeoutSeconds bounds the outbound HTTP call (default 15)
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
	// JSONRPCMethod is the JSON-RPC method name for jsonrpc format
	JSONRPCMethod string `json:"jsonrpc_method,omitempty"`
	// OmitMethod drops the method member from the JSON-RPC envelope; some
	// providers route purely on the URL
	OmitMethod bool `json:"omit_method,omitempty"`
	// InlineCredentials injects username/login/password into JSON-RPC params
	// for providers that do not support header auth
	InlineCredentials bool `json:"inline_credentials,omitempty"`
	// StatusCheckURL is a template with a :tracking placeholder
	StatusCheckURL string `json:"status_check_url,omitempty"`
	// APIKeyHeader overrides the header name used for apiKey auth
	APIKeyHeader string `json:"api_key_header,omitempty"`
	// ProviderFamily declares the backend family; empty falls back to URL detection
	ProviderFamily ProviderFamily `json:"provider_family,omitempty"`
}

// DefaultTimeoutSeconds is applied when a company has no timeout configured.
const DefaultTimeoutSeconds = 15

// Timeout returns the effective request timeout.
func (c *APIConfiguration) Timeout() time.Duration {
	if c.TimeoutSeconds > 0 {
		return time.Duration(c.TimeoutSeconds) * time.Second
	}
	return DefaultTimeoutSeconds * time.Second
}

// Family returns the effective provider family, falling back to URL
// detection when the explicit field is unset.
func (c *APIConfiguration) Family() ProviderFamily {
	if c.ProviderFamily != "" {
		return c.ProviderFamily
	}
	return detectProviderFamily(c.BaseURL)
}

// ---------------------------------------------------------------------------
// Field Mappings
// ---------------------------------------------------------------------------

// StaticSourceField marks a mapping rule whose value comes from DefaultValue
// instead of an order path.
const StaticSourceField = "static"

// FieldMappingRule maps one order field to one key in the outbound payload.
type FieldMappingRule struct {
	// SourceField is a dotted order path, or "static"
	SourceField string `json:"source_field"`
	// TargetField is the payload key to write
	TargetField string `json:"target_field"`
	// Required refuses dispatch when the resolved value is empty
	Required bool `json:"required"`
	// Transform is applied after resolution
	Transform Transform `json:"transform,omitempty"`
	// Enabled rules participate in payload building; blank source or target
	// fields are treated as disabled
	Enabled bool `json:"enabled"`
	// DefaultValue substitutes an empty resolved value
	DefaultValue string `json:"default_value,omitempty"`
	// DefaultValuePriority makes DefaultValue win over the resolved value
	DefaultValuePriority bool `json:"default_value_priority,omitempty"`
}

// Usable returns true if the rule participates in payload building.
func (r *FieldMappingRule) Usable() bool {
	return r.Enabled && strings.TrimSpace(r.SourceField) != "" && strings.TrimSpace(r.TargetField) != ""
}

// StatusMappingEntry maps one provider status string to an internal status.
type StatusMappingEntry struct {
	CompanyStatus  string         `json:"company_status"`
	InternalStatus DeliveryStatus `json:"internal_status"`
}

// ---------------------------------------------------------------------------
// DeliveryCompany
// ---------------------------------------------------------------------------

// DeliveryCompany is the configuration aggregate for one courier integration.
// It is created and edited through the admin API and consumed read-only by
// the dispatch orchestrator.
type DeliveryCompany struct {
	ID       uuid.UUID
	Code     string
	Name     string
	IsActive bool
	// IsDefault marks the company used when dispatch names no company.
	// At most one company is default at a time.
	IsDefault bool
	// AutoDispatch enables automatic sending for orders whose status is in
	// AutoDispatchStatuses
	AutoDispatch         bool
	AutoDispatchStatuses []string
	API                  APIConfiguration
	FieldMappings        []FieldMappingRule
	// LegacyFieldMapping renames the synthesized fallback payload keys for
	// configurations that predate mapping rules; key is the standard payload
	// key, value the provider's field name
	LegacyFieldMapping map[string]string
	StatusMappings     []StatusMappingEntry
	// CustomFields are merged into every outbound payload
	CustomFields map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewDeliveryCompany creates an active, non-default company with defaults.
func NewDeliveryCompany(code, name string) (*DeliveryCompany, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, ErrCompanyCodeRequired
	}
	if name == "" {
		return nil, ErrCompanyNameRequired
	}
	now := time.Now()
	return &DeliveryCompany{
		ID:       uuid.New(),
		Code:     code,
		Name:     name,
		IsActive: true,
		API: APIConfiguration{
			Format:         ProtocolREST,
			AuthMethod:     AuthNone,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate checks structural integrity of the company record itself.
// API configuration issues are reported separately by
// ValidateCompanyConfiguration, which accumulates instead of failing fast.
func (c *DeliveryCompany) Validate() error {
	if strings.TrimSpace(c.Code) == "" {
		return ErrCompanyCodeRequired
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrCompanyNameRequired
	}
	if c.API.Format != "" && !c.API.Format.IsValid() {
		return ErrConfigurationInvalid
	}
	if !c.API.AuthMethod.IsValid() {
		return ErrConfigurationInvalid
	}
	return nil
}

// AutoDispatchEligible returns true if the company auto-dispatches orders
// in the given order status.
func (c *DeliveryCompany) AutoDispatchEligible(orderStatus string) bool {
	if !c.AutoDispatch || !c.IsActive {
		return false
	}
	if len(c.AutoDispatchStatuses) == 0 {
		return true
	}
	for _, s := range c.AutoDispatchStatuses {
		if strings.EqualFold(s, orderStatus) {
			return true
		}
	}
	return false
}
