package delivery

import (
	"strings"
)

// ---------------------------------------------------------------------------
// Mapping validation
// ---------------------------------------------------------------------------

// MissingMapping identifies one required mapping rule that resolved empty.
type MissingMapping struct {
	SourceField string `json:"source_field"`
	TargetField string `json:"target_field"`
}

// MappingValidation is the result of ValidateRequiredMappings.
type MappingValidation struct {
	OK      bool
	Missing []MissingMapping
	// Payload is the full built payload, so callers validate and build once
	Payload map[string]any
}

// ValidateRequiredMappings builds the payload and checks that every usable
// rule marked required produced a non-empty value. All violations are
// collected rather than failing fast, so callers can report every problem
// at once.
func ValidateRequiredMappings(order *Order, company *DeliveryCompany) MappingValidation {
	payload := BuildPayload(order, company)
	result := MappingValidation{OK: true, Payload: payload}

	for i := range company.FieldMappings {
		rule := &company.FieldMappings[i]
		if !rule.Usable() || !rule.Required {
			continue
		}
		if isEmptyValue(payload[rule.TargetField]) {
			result.OK = false
			result.Missing = append(result.Missing, MissingMapping{
				SourceField: rule.SourceField,
				TargetField: rule.TargetField,
			})
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Configuration validation
// ---------------------------------------------------------------------------

// ConfigMode reports whether a dispatch would run live or simulated.
type ConfigMode string

const (
	// ModeTest means dispatch short-circuits without a network call
	ModeTest ConfigMode = "test"
	// ModeLive means dispatch performs the outbound call
	ModeLive ConfigMode = "live"
)

// Configuration issue codes. Parameter issues carry the parameter name after
// a colon, e.g. "missing_required_param:db".
const (
	IssueCompanyInactive         = "company_inactive"
	IssueMissingURL              = "missing_url"
	IssueMissingJSONRPCMethod    = "missing_jsonrpc_method"
	IssueMissingBasicCredentials = "missing_basic_auth_credentials"
	IssueMissingBearerToken      = "missing_bearer_token"
	IssueMissingAPIKey           = "missing_api_key"
	IssueStatusURLNoPlaceholder  = "status_url_missing_tracking_placeholder"
	IssueMissingRequiredParam    = "missing_required_param"
)

// TrackingPlaceholder is the token a status-check URL must contain.
const TrackingPlaceholder = ":tracking"

// ConfigValidation is the result of ValidateCompanyConfiguration.
type ConfigValidation struct {
	OK     bool
	Issues []string
	Mode   ConfigMode
	URL    string
}

// ValidateCompanyConfiguration inspects a company's API configuration and
// reports every structural issue before any network call is attempted. It
// never fails fast and never errors; issues accumulate in order.
//
// Test mode is implied when the test flag is set or no URL is resolvable
// (including through the hub override); a test-mode company with no URL is
// not flagged for the missing URL.
func ValidateCompanyConfiguration(company *DeliveryCompany, hub *Hub) ConfigValidation {
	url := company.API.BaseURL
	if hub.Enabled() {
		url = hub.BaseURL
	}

	mode := ModeLive
	if company.API.IsTestMode || url == "" {
		mode = ModeTest
	}

	result := ConfigValidation{Mode: mode, URL: url}

	if !company.IsActive {
		result.Issues = append(result.Issues, IssueCompanyInactive)
	}

	if url == "" && !company.API.IsTestMode {
		result.Issues = append(result.Issues, IssueMissingURL)
	}

	format := company.API.Format
	if hub.Enabled() && hub.Format != "" {
		format = hub.Format
	}
	if format == ProtocolJSONRPC && !company.API.OmitMethod {
		method := company.API.JSONRPCMethod
		if method == "" && hub != nil {
			method = hub.Method
		}
		if method == "" {
			result.Issues = append(result.Issues, IssueMissingJSONRPCMethod)
		}
	}

	switch company.API.AuthMethod {
	case AuthBasic:
		if company.API.Credentials.Username == "" || company.API.Credentials.Password == "" {
			result.Issues = append(result.Issues, IssueMissingBasicCredentials)
		}
	case AuthBearer:
		if company.API.Credentials.Token == "" {
			result.Issues = append(result.Issues, IssueMissingBearerToken)
		}
	case AuthAPIKey:
		if company.API.Credentials.APIKey == "" {
			result.Issues = append(result.Issues, IssueMissingAPIKey)
		}
	}

	statusURL := company.API.StatusCheckURL
	if statusURL != "" && !strings.Contains(statusURL, TrackingPlaceholder) {
		result.Issues = append(result.Issues, IssueStatusURLNoPlaceholder)
	}

	for _, name := range company.API.RequiredParams {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if paramSatisfiable(company, hub, name) {
			continue
		}
		result.Issues = append(result.Issues, IssueMissingRequiredParam+":"+name)
	}

	result.OK = len(result.Issues) == 0
	return result
}

// paramSatisfiable reports whether a required low-level parameter can be
// sourced from static params, query params, or — for the db parameter —
// the hub configuration or the company credentials.
func paramSatisfiable(company *DeliveryCompany, hub *Hub, name string) bool {
	if v, ok := company.API.StaticParams[name]; ok && v != "" {
		return true
	}
	if v, ok := company.API.QueryParams[name]; ok && v != "" {
		return true
	}
	if name == "db" {
		if hub.Database() != "" {
			return true
		}
		if company.API.Credentials.Database != "" {
			return true
		}
	}
	return false
}

// MissingRequiredParams returns the required parameter names that cannot be
// satisfied from any configured source for a dispatch to the given URL.
func MissingRequiredParams(company *DeliveryCompany, hub *Hub, url string) []string {
	var missing []string
	for _, name := range ResolveRequiredParams(company, url) {
		if !paramSatisfiable(company, hub, name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// ResolveRequiredParams returns the list of parameter names that must be
// present for a dispatch: the company's declared required params, plus db
// for provider families whose backends refuse requests without it.
func ResolveRequiredParams(company *DeliveryCompany, url string) []string {
	required := make([]string, 0, len(company.API.RequiredParams)+1)
	seen := make(map[string]struct{}, len(company.API.RequiredParams)+1)
	for _, name := range company.API.RequiredParams {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		required = append(required, name)
	}

	family := company.API.ProviderFamily
	if family == "" {
		family = detectProviderFamily(url)
	}
	if family.RequiresDatabaseParam() {
		if _, ok := seen["db"]; !ok {
			required = append(required, "db")
		}
	}
	return required
}
