package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/delivery"
)

// maxLoggedPayload caps the serialized payload written to debug logs.
const maxLoggedPayload = 2048

// ---------------------------------------------------------------------------
// Body and URL assembly
// ---------------------------------------------------------------------------

// mergeBodyParams layers the low-level body parameters under the mapped
// payload. Priority, lowest first: hub defaults, company static params, the
// derived db parameter, then the payload itself.
func mergeBodyParams(req *delivery.CourierRequest) map[string]any {
	body := make(map[string]any)
	if req.Hub != nil {
		for k, v := range req.Hub.DefaultParams {
			body[k] = v
		}
	}
	for k, v := range req.Company.API.StaticParams {
		body[k] = v
	}
	if db := resolveDB(req); db != "" {
		if _, ok := body["db"]; !ok {
			body["db"] = db
		}
	}
	for k, v := range req.Payload {
		body[k] = v
	}
	return body
}

// resolveDB finds the backend database name: company static params, company
// credentials, then the hub.
func resolveDB(req *delivery.CourierRequest) string {
	if v, ok := req.Company.API.StaticParams["db"]; ok && v != "" {
		return v
	}
	if v := req.Company.API.Credentials.Database; v != "" {
		return v
	}
	return req.Hub.Database()
}

// buildRequestURL appends the merged query parameters to the endpoint.
// Priority, lowest first: hub default query params, company query params.
// Odoo-family backends additionally receive the db parameter in the query
// when it is resolvable and not already present.
func buildRequestURL(req *delivery.CourierRequest) (string, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return "", fmt.Errorf("courier: invalid endpoint url %q: %w", req.URL, err)
	}

	q := u.Query()
	if req.Hub != nil {
		for k, v := range req.Hub.DefaultQueryParams {
			q.Set(k, v)
		}
	}
	for k, v := range req.Company.API.QueryParams {
		q.Set(k, v)
	}
	if req.Company.API.Family().RequiresDatabaseParam() && q.Get("db") == "" {
		if db := resolveDB(req); db != "" {
			q.Set("db", db)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

// applyAuth sets outbound authentication headers. Hub credentials override
// company credentials when the hub is active and declares an auth method.
func applyAuth(httpReq *http.Request, req *delivery.CourierRequest) {
	method := req.Company.API.AuthMethod
	creds := req.Company.API.Credentials
	keyHeader := req.Company.API.APIKeyHeader

	if req.Hub.Enabled() && req.Hub.AuthMethod != "" {
		method = req.Hub.AuthMethod
		creds = req.Hub.Credentials
		if req.Hub.APIKeyHeader != "" {
			keyHeader = req.Hub.APIKeyHeader
		}
	}

	switch method {
	case delivery.AuthBasic:
		httpReq.SetBasicAuth(creds.Username, creds.Password)
	case delivery.AuthBearer:
		httpReq.Header.Set("Authorization", "Bearer "+creds.Token)
	case delivery.AuthAPIKey:
		if keyHeader == "" {
			keyHeader = "X-API-Key"
		}
		httpReq.Header.Set(keyHeader, creds.APIKey)
	}
}

// ---------------------------------------------------------------------------
// HTTP execution
// ---------------------------------------------------------------------------

// post performs one JSON POST within the company's configured timeout and
// decodes the response body. HTTP-level failures come back as
// TRANSPORT_FAILURE dispatch errors; status codes >= 400 are reported with
// the provider's error text when the body carries one.
func (g *Gateway) post(ctx context.Context, req *delivery.CourierRequest, endpoint string, body any) (map[string]any, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, delivery.NewTransportFailureError("courier: encoding request body failed", err)
	}

	ctx, cancel := context.WithTimeout(ctx, req.Company.API.Timeout())
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, delivery.NewTransportFailureError("courier: building request failed", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	applyAuth(httpReq, req)

	g.logExchange("request", endpoint, body)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, delivery.NewTransportFailureError(
			augmentDBHint(req, fmt.Sprintf("courier: request to %s failed: %v", endpoint, err)), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, delivery.NewTransportFailureError("courier: reading response failed", err)
	}

	var decoded map[string]any
	if len(respBody) > 0 {
		// Tolerate non-JSON bodies on error statuses; they become part of
		// the transport error text below.
		_ = json.Unmarshal(respBody, &decoded)
	}

	g.logExchange("response", endpoint, decoded)

	if resp.StatusCode >= 400 {
		if code, msg, ok := providerError(decoded); ok {
			return nil, delivery.NewProviderRejectedError(code, msg)
		}
		text := strings.TrimSpace(string(respBody))
		if len(text) > 512 {
			text = text[:512]
		}
		return nil, delivery.NewTransportFailureError(
			augmentDBHint(req, fmt.Sprintf("courier: %s returned HTTP %d: %s", endpoint, resp.StatusCode, text)), nil)
	}

	if decoded == nil {
		return nil, delivery.NewTransportFailureError(
			fmt.Sprintf("courier: %s returned a non-JSON body", endpoint), nil)
	}
	return decoded, nil
}

// providerError extracts an explicit error envelope from a decoded response.
// Providers send either {"error": "text"} or
// {"error": {"code": ..., "message"|"data.message": ...}}.
func providerError(decoded map[string]any) (code, message string, ok bool) {
	if decoded == nil {
		return "", "", false
	}
	raw, present := decoded["error"]
	if !present || raw == nil {
		return "", "", false
	}

	switch e := raw.(type) {
	case string:
		return "", e, true
	case map[string]any:
		code = stringifyField(e["code"])
		message = stringifyField(e["message"])
		if data, isMap := e["data"].(map[string]any); isMap {
			if m := stringifyField(data["message"]); m != "" {
				message = m
			}
		}
		if message == "" {
			message = "provider returned an error"
		}
		return code, message, true
	default:
		return "", stringifyField(raw), true
	}
}

// ---------------------------------------------------------------------------
// Response field extraction
// ---------------------------------------------------------------------------

// trackingFields is the ordered list of response keys checked for a tracking
// identifier.
var trackingFields = []string{
	"trackingNumber", "tracking_id", "trackingId",
	"reference", "reference_id", "order_id", "id",
}

// statusFields is the ordered list of response keys checked for the provider
// status string.
var statusFields = []string{"deliveryStatus", "status", "current_status", "state"}

// extractTracking returns the first non-empty tracking field, in order.
func extractTracking(m map[string]any) string {
	for _, field := range trackingFields {
		if v := stringifyField(m[field]); v != "" {
			return v
		}
	}
	return ""
}

// extractStatus returns the first non-empty status field, defaulting to
// "created".
func extractStatus(m map[string]any) string {
	for _, field := range statusFields {
		if v := stringifyField(m[field]); v != "" {
			return v
		}
	}
	return "created"
}

// stringifyField renders a scalar response field as a string. Maps and
// slices never identify a tracking number or status.
func stringifyField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

var sensitiveKey = regexp.MustCompile(`(?i)(authorization|api[-_]?key|token|password|secret|signature)`)

// maskSensitive deep-copies a payload with values of sensitive keys replaced
// by "***". Only keys are inspected, never values.
func maskSensitive(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if sensitiveKey.MatchString(k) {
				out[k] = "***"
				continue
			}
			out[k] = maskSensitive(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = maskSensitive(val)
		}
		return out
	default:
		return v
	}
}

// logExchange writes a masked, truncated debug line for one request or
// response body. No-op above debug level.
func (g *Gateway) logExchange(direction, endpoint string, body any) {
	if !g.log.Core().Enabled(zap.DebugLevel) {
		return
	}
	masked := maskSensitive(normalizeForMasking(body))
	raw, err := json.Marshal(masked)
	if err != nil {
		return
	}
	if len(raw) > maxLoggedPayload {
		raw = append(raw[:maxLoggedPayload], []byte("...")...)
	}
	g.log.Debug("courier exchange",
		zap.String("direction", direction),
		zap.String("endpoint", endpoint),
		zap.ByteString("body", raw),
	)
}

// normalizeForMasking converts typed payload structs into generic maps so
// maskSensitive can walk them uniformly.
func normalizeForMasking(v any) any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

var dbErrorHint = regexp.MustCompile(`(?i)keyerror.*'db'|database .* does not exist|\bdb\b.*(missing|required)|missing.*\bdb\b`)

// augmentDBHint appends configuration guidance when a transport error looks
// like a missing backend database parameter.
func augmentDBHint(req *delivery.CourierRequest, msg string) string {
	if !dbErrorHint.MatchString(msg) {
		return msg
	}
	if resolveDB(req) != "" {
		return msg
	}
	return msg + " (hint: the provider expects a db parameter; set it in the company static params, the company credentials database, or the hub configuration)"
}
