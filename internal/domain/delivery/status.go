package delivery

import "strings"

// commonStatusSynonyms maps normalized provider status strings to internal
// statuses. It is consulted only when the company's own status mapping has
// no entry for the provider status.
var commonStatusSynonyms = map[string]DeliveryStatus{
	// assigned
	"created":   StatusAssigned,
	"accepted":  StatusAssigned,
	"pending":   StatusAssigned,
	"new":       StatusAssigned,
	"confirmed": StatusAssigned,
	"assigned":  StatusAssigned,

	// picked up
	"picked_up": StatusPickedUp,
	"pickup":    StatusPickedUp,
	"picked":    StatusPickedUp,
	"collected": StatusPickedUp,

	// in transit
	"in_transit": StatusInTransit,
	"transit":    StatusInTransit,
	"dispatched": StatusInTransit,
	"shipped":    StatusInTransit,
	"on_the_way": StatusInTransit,

	// out for delivery
	"out_for_delivery": StatusOutForDelivery,
	"last_mile":        StatusOutForDelivery,

	// delivered
	"delivered": StatusDelivered,
	"completed": StatusDelivered,
	"done":      StatusDelivered,

	// failed
	"delivery_failed": StatusFailed,
	"failed":          StatusFailed,
	"undelivered":     StatusFailed,
	"exception":       StatusFailed,

	// returned
	"returned":  StatusReturned,
	"return":    StatusReturned,
	"rto":       StatusReturned,
	"rejected":  StatusReturned,

	// cancelled
	"cancelled": StatusCancelled,
	"canceled":  StatusCancelled,
	"void":      StatusCancelled,
}

// MapStatus translates a provider status string into an internal delivery
// status. The company's status mapping table wins over the common synonym
// dictionary; the company lookup is case-insensitive. Anything that still
// does not land on a valid internal status falls back to StatusAssigned.
func MapStatus(company *DeliveryCompany, providerStatus string) DeliveryStatus {
	if company != nil {
		for _, entry := range company.StatusMappings {
			if strings.EqualFold(entry.CompanyStatus, providerStatus) {
				if entry.InternalStatus.IsValid() {
					return entry.InternalStatus
				}
				break
			}
		}
	}

	normalized := normalizeProviderStatus(providerStatus)
	if mapped, ok := commonStatusSynonyms[normalized]; ok {
		return mapped
	}
	if s := DeliveryStatus(normalized); s.IsValid() {
		return s
	}
	return StatusAssigned
}

// normalizeProviderStatus lowercases a provider status and collapses spaces
// and hyphens into underscores.
func normalizeProviderStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
