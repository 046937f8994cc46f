package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/storefront/backend/internal/domain/delivery"
)

// ErrDispatchInProgress means another dispatch for the same order currently
// holds the idempotency guard.
var ErrDispatchInProgress = errors.New("delivery: dispatch already in progress for this order")

// ConfigurationInvalidError carries the pre-flight issue list when a company
// cannot be dispatched against.
type ConfigurationInvalidError struct {
	Issues []string
}

// Error implements the error interface
func (e *ConfigurationInvalidError) Error() string {
	return fmt.Sprintf("delivery: company configuration invalid: %s", strings.Join(e.Issues, ", "))
}

// Unwrap ties the error into the domain sentinel for errors.Is checks
func (e *ConfigurationInvalidError) Unwrap() error {
	return domain.ErrConfigurationInvalid
}

// DispatchGuard serializes dispatch attempts per order. Acquire returns
// false when another attempt holds the guard. A nil guard disables the
// protection entirely.
type DispatchGuard interface {
	Acquire(ctx context.Context, orderID uuid.UUID) (bool, error)
	Release(ctx context.Context, orderID uuid.UUID) error
}

// DispatchService orchestrates sending orders to delivery companies and
// persisting the resulting assignment. The network call happens outside the
// database transaction; only the order mutation is transactional.
type DispatchService struct {
	orders    domain.OrderRepository
	companies domain.DeliveryCompanyRepository
	gateway   domain.CourierGateway
	tx        TransactionScope
	hub       *domain.Hub
	guard     DispatchGuard
	now       func() time.Time
}

// NewDispatchService creates a DispatchService. hub and guard may be nil.
func NewDispatchService(
	orders domain.OrderRepository,
	companies domain.DeliveryCompanyRepository,
	gateway domain.CourierGateway,
	tx TransactionScope,
	hub *domain.Hub,
	guard DispatchGuard,
) *DispatchService {
	return &DispatchService{
		orders:    orders,
		companies: companies,
		gateway:   gateway,
		tx:        tx,
		hub:       hub,
		guard:     guard,
		now:       time.Now,
	}
}

// ---------------------------------------------------------------------------
// Orchestrator
// ---------------------------------------------------------------------------

// SendToCompany performs one dispatch attempt against a company. It builds
// and validates the payload, short-circuits in test mode, and sends via the
// resolved protocol with a single REST to JSON-RPC correction when the
// backend turns out to speak JSON-RPC. It never touches persistence.
func (s *DispatchService) SendToCompany(ctx context.Context, order *domain.Order, company *domain.DeliveryCompany) (*domain.DispatchResult, domain.ConfigMode, error) {
	url := company.API.BaseURL
	format := company.API.Format
	if s.hub.Enabled() {
		url = s.hub.BaseURL
		if s.hub.Format != "" {
			format = s.hub.Format
		}
	}

	if company.API.IsTestMode || url == "" {
		return s.simulatedResult(order), domain.ModeTest, nil
	}

	validation := domain.ValidateRequiredMappings(order, company)
	payload := validation.Payload
	for k, v := range company.CustomFields {
		if v != nil {
			payload[k] = v
		}
	}
	// Custom fields can satisfy a required target, so re-check violations
	// against the merged payload.
	var missing []domain.MissingMapping
	for _, m := range validation.Missing {
		if v, ok := payload[m.TargetField]; !ok || v == nil || v == "" {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 {
		return nil, domain.ModeLive, domain.NewMappingMissingError(missing)
	}

	if params := domain.MissingRequiredParams(company, s.hub, url); len(params) > 0 {
		return nil, domain.ModeLive, domain.NewParamsMissingError(params)
	}

	if !format.Dispatchable() {
		return nil, domain.ModeLive, fmt.Errorf("%w: %s", domain.ErrUnsupportedProtocol, format)
	}

	req := &domain.CourierRequest{
		Order:   order,
		Company: company,
		Format:  format,
		URL:     url,
		Payload: payload,
		Hub:     s.hub,
	}

	result, err := s.gateway.Send(ctx, req)
	if err != nil && format == domain.ProtocolREST && looksLikeJSONRPCFailure(company, err) {
		// One shot only, and never the other way around.
		retry := *req
		retry.Format = domain.ProtocolJSONRPC
		if retried, retryErr := s.gateway.Send(ctx, &retry); retryErr == nil {
			return retried, domain.ModeLive, nil
		} else {
			return nil, domain.ModeLive, retryErr
		}
	}
	if err != nil {
		return nil, domain.ModeLive, err
	}
	return result, domain.ModeLive, nil
}

// simulatedResult fabricates the test-mode success without a network call.
func (s *DispatchService) simulatedResult(order *domain.Order) *domain.DispatchResult {
	tracking := fmt.Sprintf("TEST-%s-%d", order.Ref(), s.now().UnixMilli()%1_000_000)
	return &domain.DispatchResult{
		TrackingNumber: tracking,
		ProviderStatus: "created",
		ProviderResponse: map[string]any{
			"simulated": true,
			"tracking":  tracking,
		},
	}
}

// looksLikeJSONRPCFailure decides whether a failed REST attempt hit a
// JSON-RPC backend: either the error body mentions the protocol, or the
// company's provider family is known to be JSON-RPC based.
func looksLikeJSONRPCFailure(company *domain.DeliveryCompany, err error) bool {
	de, ok := domain.AsDispatchError(err)
	if !ok {
		return false
	}
	if de.Code != domain.CodeProviderRejected && de.Code != domain.CodeTransportFailure {
		return false
	}
	msg := strings.ToLower(de.Message)
	if strings.Contains(msg, "jsonrpc") || strings.Contains(msg, "json-rpc") {
		return true
	}
	return company.API.Family().RequiresDatabaseParam()
}

// ---------------------------------------------------------------------------
// Use cases
// ---------------------------------------------------------------------------

// Dispatch sends one order to the requested (or default) company and
// persists the assignment. The provider call completes before the
// transaction opens; a commit failure after a live send leaves an orphaned
// provider booking, which is reported as the returned error.
func (s *DispatchService) Dispatch(ctx context.Context, orderID uuid.UUID, req DispatchRequest) (*DispatchResponse, error) {
	company, err := s.resolveCompany(ctx, req.CompanyID, req.CompanyCode)
	if err != nil {
		return nil, err
	}
	return s.dispatchResolved(ctx, orderID, company, req.DeliveryFee)
}

// BatchDispatch sends several orders to one company, sequentially. Failures
// are isolated per order unless StopOnError is set.
func (s *DispatchService) BatchDispatch(ctx context.Context, req BatchDispatchRequest) (*BatchDispatchResponse, error) {
	company, err := s.resolveCompany(ctx, req.CompanyID, req.CompanyCode)
	if err != nil {
		return nil, err
	}

	resp := &BatchDispatchResponse{Items: make([]BatchDispatchItem, 0, len(req.OrderIDs))}
	for i, orderID := range req.OrderIDs {
		item := BatchDispatchItem{OrderID: orderID}
		result, err := s.dispatchResolved(ctx, orderID, company, req.DeliveryFee)
		if err != nil {
			detail := ToDispatchErrorDetail(err)
			item.Error = &detail
			resp.Failed++
		} else {
			item.Success = true
			item.Response = result
			resp.Succeeded++
		}
		resp.Items = append(resp.Items, item)

		if err != nil && req.StopOnError {
			resp.Stopped = i < len(req.OrderIDs)-1
			break
		}
	}
	return resp, nil
}

// AutoDispatch sends an order through the first active auto-dispatch company
// eligible for the order's storefront status. Returns ErrCompanyNotFound
// when no company qualifies.
func (s *DispatchService) AutoDispatch(ctx context.Context, orderID uuid.UUID) (*DispatchResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	company, err := s.companies.FindAutoDispatchCandidate(ctx, order.Status)
	if err != nil {
		return nil, err
	}
	return s.dispatchResolved(ctx, orderID, company, nil)
}

// UpdateProviderStatus maps a provider status onto the order's internal
// delivery status and persists it. The order must already be assigned.
func (s *DispatchService) UpdateProviderStatus(ctx context.Context, orderID uuid.UUID, providerStatus string) (*StatusUpdateResponse, error) {
	var resp *StatusUpdateResponse
	err := s.tx.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		order, err := repos.Orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Delivery.CompanyID == nil {
			return domain.ErrOrderNotAssigned
		}
		company, err := repos.Companies.FindByID(ctx, *order.Delivery.CompanyID)
		if err != nil {
			return err
		}

		mapped := domain.MapStatus(company, providerStatus)
		if err := order.UpdateDeliveryStatus(mapped); err != nil {
			return err
		}
		if err := repos.Orders.Save(ctx, order); err != nil {
			return err
		}
		resp = &StatusUpdateResponse{
			OrderID:        order.ID,
			ProviderStatus: providerStatus,
			DeliveryStatus: mapped,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetOrderDelivery returns the delivery-facing state of one order. The
// company code is resolved when the order is assigned; a company that was
// deleted after assignment leaves the code empty rather than failing the read.
func (s *DispatchService) GetOrderDelivery(ctx context.Context, orderID uuid.UUID) (*OrderDeliveryResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	resp := &OrderDeliveryResponse{
		OrderID:          order.ID,
		OrderNumber:      order.OrderNumber,
		Status:           order.Status,
		CompanyID:        order.Delivery.CompanyID,
		DeliveryStatus:   order.Delivery.Status,
		TrackingNumber:   order.Delivery.TrackingNumber,
		ProviderResponse: order.Delivery.ProviderResponse,
		AssignedAt:       order.Delivery.AssignedAt,
		DeliveryFee:      order.Delivery.Fee,
	}
	if order.Delivery.CompanyID != nil {
		if company, err := s.companies.FindByID(ctx, *order.Delivery.CompanyID); err == nil {
			resp.CompanyCode = company.Code
		}
	}
	return resp, nil
}

// ---------------------------------------------------------------------------
// Internals
// ---------------------------------------------------------------------------

// resolveCompany loads the dispatch target: explicit ID, then explicit code,
// then the default company.
func (s *DispatchService) resolveCompany(ctx context.Context, id *uuid.UUID, code string) (*domain.DeliveryCompany, error) {
	switch {
	case id != nil:
		return s.companies.FindByID(ctx, *id)
	case code != "":
		return s.companies.FindByCode(ctx, code)
	default:
		return s.companies.FindDefault(ctx)
	}
}

func (s *DispatchService) dispatchResolved(ctx context.Context, orderID uuid.UUID, company *domain.DeliveryCompany, fee *decimal.Decimal) (*DispatchResponse, error) {
	if s.guard != nil {
		ok, err := s.guard.Acquire(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDispatchInProgress
		}
		defer func() { _ = s.guard.Release(ctx, orderID) }()
	}

	cfg := domain.ValidateCompanyConfiguration(company, s.hub)
	if !cfg.OK {
		return nil, &ConfigurationInvalidError{Issues: cfg.Issues}
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if fee != nil {
		order.Delivery.Fee = *fee
	}

	result, mode, err := s.SendToCompany(ctx, order, company)
	if err != nil {
		return nil, err
	}

	mapped := domain.MapStatus(company, result.ProviderStatus)
	assignedAt := s.now()

	err = s.tx.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		if err := order.AssignDelivery(company.ID, mapped, result.TrackingNumber, order.Delivery.Fee, result.ProviderResponse, assignedAt); err != nil {
			return err
		}
		return repos.Orders.Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	return &DispatchResponse{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		CompanyID:      company.ID,
		CompanyCode:    company.Code,
		TrackingNumber: result.TrackingNumber,
		DeliveryStatus: mapped,
		ProviderStatus: result.ProviderStatus,
		Mode:           mode,
		AssignedAt:     assignedAt,
	}, nil
}
