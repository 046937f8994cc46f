package courier

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/delivery"
)

// jsonrpcVersion is the protocol version stamped on every envelope.
const jsonrpcVersion = "2.0"

// jsonrpcEnvelope is the outbound JSON-RPC 2.0 request. Method is omitted
// for providers that route purely on the URL.
type jsonrpcEnvelope struct {
	Jsonrpc string         `json:"jsonrpc"`
	Method  string         `json:"method,omitempty"`
	Params  map[string]any `json:"params"`
	ID      int64          `json:"id"`
}

// sendJSONRPC wraps the merged payload in a JSON-RPC 2.0 envelope. The
// method name comes from the company configuration, falling back to the hub
// default; OmitMethod drops it entirely.
func (g *Gateway) sendJSONRPC(ctx context.Context, req *delivery.CourierRequest) (*delivery.DispatchResult, error) {
	endpoint, err := buildRequestURL(req)
	if err != nil {
		return nil, delivery.NewTransportFailureError(err.Error(), err)
	}

	params := mergeBodyParams(req)
	if req.Company.API.InlineCredentials {
		inlineCredentials(params, req)
	}

	envelope := jsonrpcEnvelope{
		Jsonrpc: jsonrpcVersion,
		Params:  params,
		ID:      time.Now().UnixMilli(),
	}
	if !req.Company.API.OmitMethod {
		envelope.Method = req.Company.API.JSONRPCMethod
		if envelope.Method == "" && req.Hub != nil {
			envelope.Method = req.Hub.Method
		}
	}

	decoded, err := g.post(ctx, req, endpoint, envelope)
	if err != nil {
		return nil, err
	}

	// JSON-RPC errors arrive in a 200 response with an error member.
	if code, msg, ok := providerError(decoded); ok {
		return nil, delivery.NewProviderRejectedError(code, msg)
	}

	source := decoded
	switch result := decoded["result"].(type) {
	case map[string]any:
		if code, msg, ok := providerError(result); ok {
			return nil, delivery.NewProviderRejectedError(code, msg)
		}
		source = result
	case nil:
		// Keep the envelope as the extraction source.
	default:
		// Scalar results (Odoo record ids) are the tracking identifier.
		if v := stringifyField(result); v != "" {
			return &delivery.DispatchResult{
				TrackingNumber:   v,
				ProviderStatus:   "created",
				ProviderResponse: decoded,
			}, nil
		}
	}

	return resultFrom(decoded, source), nil
}

// inlineCredentials injects login fields into the params for providers that
// authenticate inside the JSON-RPC body instead of HTTP headers. Existing
// params are never overwritten.
func inlineCredentials(params map[string]any, req *delivery.CourierRequest) {
	creds := req.Company.API.Credentials
	if req.Hub.Enabled() && req.Hub.Credentials.Username != "" {
		creds = req.Hub.Credentials
	}
	if creds.Username == "" && creds.Password == "" {
		return
	}
	for _, key := range []string{"username", "login"} {
		if _, ok := params[key]; !ok && creds.Username != "" {
			params[key] = creds.Username
		}
	}
	if _, ok := params["password"]; !ok && creds.Password != "" {
		params["password"] = creds.Password
	}
}
