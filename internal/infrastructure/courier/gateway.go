package courier

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/delivery"
)

// maxResponseSize limits response bodies to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Gateway implements the delivery.CourierGateway port over HTTP. One
// instance serves every configured company; all per-company behavior comes
// from the CourierRequest.
type Gateway struct {
	client *http.Client
	log    *zap.Logger
}

// NewGateway creates a gateway logging diagnostics through the given logger.
// Per-request timeouts come from each company's configuration, so the shared
// client carries none.
func NewGateway(log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		client: &http.Client{},
		log:    log.Named("courier"),
	}
}

// NewGatewayWithClient creates a gateway with a custom HTTP client.
func NewGatewayWithClient(client *http.Client, log *zap.Logger) *Gateway {
	g := NewGateway(log)
	if client != nil {
		g.client = client
	}
	return g
}

// Send performs the outbound call for a dispatch via the protocol named in
// the request.
func (g *Gateway) Send(ctx context.Context, req *delivery.CourierRequest) (*delivery.DispatchResult, error) {
	switch req.Format {
	case delivery.ProtocolREST:
		return g.sendREST(ctx, req)
	case delivery.ProtocolJSONRPC:
		return g.sendJSONRPC(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %s", delivery.ErrUnsupportedProtocol, req.Format)
	}
}

// Ensure Gateway implements the CourierGateway port
var _ delivery.CourierGateway = (*Gateway)(nil)
