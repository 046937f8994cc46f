package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Dispatch result
// ---------------------------------------------------------------------------

// DispatchResult is the normalized outcome of one successful send.
type DispatchResult struct {
	// TrackingNumber is the provider's tracking identifier; may be empty
	// when the provider's response carries none of the known fields
	TrackingNumber string
	// ProviderStatus is the raw provider status string (default "created")
	ProviderStatus string
	// ProviderResponse is the decoded provider response body
	ProviderResponse map[string]any
}

// ---------------------------------------------------------------------------
// Dispatch errors
// ---------------------------------------------------------------------------

// DispatchErrorCode classifies dispatch failures. Every code is fatal for
// the current attempt; the only built-in resilience is the orchestrator's
// one-shot REST to JSON-RPC protocol correction.
type DispatchErrorCode string

const (
	// CodeMappingMissing means required mapping rules resolved empty
	CodeMappingMissing DispatchErrorCode = "MAPPING_MISSING"
	// CodeParamsMissing means required low-level params cannot be satisfied
	CodeParamsMissing DispatchErrorCode = "PARAMS_MISSING"
	// CodeProviderRejected means the provider returned an explicit error envelope
	CodeProviderRejected DispatchErrorCode = "PROVIDER_REJECTED"
	// CodeTransportFailure means the HTTP call itself failed
	CodeTransportFailure DispatchErrorCode = "TRANSPORT_FAILURE"
)

// DispatchError is the error union produced by the dispatch pipeline. The
// populated detail fields depend on Code.
type DispatchError struct {
	Code    DispatchErrorCode
	Message string
	// Missing is set for CodeMappingMissing
	Missing []MissingMapping
	// MissingParams is set for CodeParamsMissing
	MissingParams []string
	// ProviderCode is set for CodeProviderRejected when the provider sent one
	ProviderCode string
	// Cause is set for CodeTransportFailure
	Cause error
}

// Error implements the error interface
func (e *DispatchError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap exposes the transport cause for errors.Is/As chains
func (e *DispatchError) Unwrap() error {
	return e.Cause
}

// NewMappingMissingError builds the error for unmet required mappings.
func NewMappingMissingError(missing []MissingMapping) *DispatchError {
	fields := make([]string, len(missing))
	for i, m := range missing {
		fields[i] = m.TargetField
	}
	return &DispatchError{
		Code:    CodeMappingMissing,
		Message: fmt.Sprintf("delivery: required field mappings resolved empty: %s", strings.Join(fields, ", ")),
		Missing: missing,
	}
}

// NewParamsMissingError builds the error for unsatisfiable required params.
func NewParamsMissingError(params []string) *DispatchError {
	return &DispatchError{
		Code:          CodeParamsMissing,
		Message:       fmt.Sprintf("delivery: required parameters not satisfiable: %s", strings.Join(params, ", ")),
		MissingParams: params,
	}
}

// NewProviderRejectedError builds the error for an explicit provider error
// envelope.
func NewProviderRejectedError(providerCode, message string) *DispatchError {
	msg := fmt.Sprintf("delivery: provider rejected dispatch: %s", message)
	if providerCode != "" {
		msg = fmt.Sprintf("delivery: provider rejected dispatch (%s): %s", providerCode, message)
	}
	return &DispatchError{
		Code:         CodeProviderRejected,
		Message:      msg,
		ProviderCode: providerCode,
	}
}

// NewTransportFailureError wraps a network-level failure.
func NewTransportFailureError(message string, cause error) *DispatchError {
	return &DispatchError{
		Code:    CodeTransportFailure,
		Message: message,
		Cause:   cause,
	}
}

// AsDispatchError extracts a DispatchError from an error chain.
func AsDispatchError(err error) (*DispatchError, bool) {
	var de *DispatchError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// ---------------------------------------------------------------------------
// CourierGateway port
// ---------------------------------------------------------------------------

// CourierRequest is everything a protocol dispatcher needs to perform one
// outbound call. The orchestrator resolves URL and format before handing
// the request over, so the gateway never consults global state.
type CourierRequest struct {
	Order   *Order
	Company *DeliveryCompany
	// Format is the resolved protocol (rest or jsonrpc)
	Format ProtocolFormat
	// URL is the resolved order-creation endpoint
	URL string
	// Payload is the built, merged outbound payload
	Payload map[string]any
	// Hub is the active hub override, or nil
	Hub *Hub
}

// CourierGateway performs the outbound call for a dispatch. Implementations
// live in the infrastructure layer (Ports & Adapters); the domain only
// defines the contract.
type CourierGateway interface {
	Send(ctx context.Context, req *CourierRequest) (*DispatchResult, error)
}
