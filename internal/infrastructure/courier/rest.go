package courier

import (
	"context"

	"github.com/storefront/backend/internal/domain/delivery"
)

// sendREST posts the merged payload as a plain JSON document. Some providers
// report failures inside a 200 response, so the error envelope is checked on
// every decoded body, not only on HTTP error statuses.
func (g *Gateway) sendREST(ctx context.Context, req *delivery.CourierRequest) (*delivery.DispatchResult, error) {
	endpoint, err := buildRequestURL(req)
	if err != nil {
		return nil, delivery.NewTransportFailureError(err.Error(), err)
	}

	body := mergeBodyParams(req)

	decoded, err := g.post(ctx, req, endpoint, body)
	if err != nil {
		return nil, err
	}

	if code, msg, ok := providerError(decoded); ok {
		return nil, delivery.NewProviderRejectedError(code, msg)
	}

	return resultFrom(decoded, extractionSource(decoded)), nil
}

// extractionSource picks the map the tracking and status fields are read
// from. Providers wrapping their payload under "data" or "result" are
// unwrapped one level; the raw envelope is preserved separately.
func extractionSource(decoded map[string]any) map[string]any {
	for _, key := range []string{"data", "result"} {
		if inner, ok := decoded[key].(map[string]any); ok {
			return inner
		}
	}
	return decoded
}

// resultFrom normalizes a decoded success response.
func resultFrom(envelope, source map[string]any) *delivery.DispatchResult {
	return &delivery.DispatchResult{
		TrackingNumber:   extractTracking(source),
		ProviderStatus:   extractStatus(source),
		ProviderResponse: envelope,
	}
}
