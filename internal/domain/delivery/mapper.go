package delivery

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// Transform is a closed set of value transformations applicable to a
// mapping rule. Unknown transform names behave like TransformNone.
type Transform string

const (
	// TransformNone passes the resolved value through unchanged
	TransformNone Transform = ""
	// TransformFullName emits the customer's first and last name joined
	TransformFullName Transform = "full_name"
	// TransformUppercase upper-cases the value
	TransformUppercase Transform = "uppercase"
	// TransformLowercase lower-cases the value
	TransformLowercase Transform = "lowercase"
	// TransformTrim trims surrounding whitespace
	TransformTrim Transform = "trim"
	// TransformPhoneDigits strips every non-digit character
	TransformPhoneDigits Transform = "phone_digits"
	// TransformPhoneLast10 strips non-digits, then keeps the last 10 digits
	TransformPhoneLast10 Transform = "phone_last10"
	// TransformToString renders the value as a string
	TransformToString Transform = "to_string"
	// TransformToNumber parses the value as a number, keeping the original
	// value when parsing fails
	TransformToNumber Transform = "to_number"
	// TransformArrayLength emits the length of the array at the source field
	TransformArrayLength Transform = "array_length"
	// TransformProductNames emits the comma-joined line-item names
	TransformProductNames Transform = "product_names"
)

// IsValid returns true if the transform is a known value
func (t Transform) IsValid() bool {
	switch t {
	case TransformNone, TransformFullName, TransformUppercase, TransformLowercase,
		TransformTrim, TransformPhoneDigits, TransformPhoneLast10, TransformToString,
		TransformToNumber, TransformArrayLength, TransformProductNames:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Order path resolution
// ---------------------------------------------------------------------------

// ResolveOrderPath resolves a dotted source path against an order. The path
// grammar is a closed set of known order fields rather than reflective
// traversal; unknown paths resolve to nil.
func ResolveOrderPath(order *Order, path string) any {
	switch strings.TrimSpace(path) {
	case "id", "_id":
		return order.ID.String()
	case "orderNumber":
		return order.OrderNumber
	case "status":
		return order.Status
	case "customerInfo.firstName":
		return order.Customer.FirstName
	case "customerInfo.lastName":
		return order.Customer.LastName
	case "customerInfo.email":
		return order.Customer.Email
	case "customerInfo.mobile":
		return order.Customer.Mobile
	case "shippingAddress":
		return order.Shipping.Oneline()
	case "shippingAddress.street":
		return order.Shipping.Street
	case "shippingAddress.city":
		return order.Shipping.City
	case "shippingAddress.country":
		return order.Shipping.Country
	case "totalAmount":
		return order.TotalAmount
	case "totalWithShipping":
		return order.TotalWithShipping()
	case "currency":
		return order.Currency
	case "notes":
		return order.Notes
	case "items":
		return order.Items
	case "deliveryFee":
		return order.Delivery.Fee
	case "createdAt":
		return order.CreatedAt
	default:
		return nil
	}
}

// isEmptyValue reports whether a resolved value counts as missing for
// defaulting and required-mapping purposes.
func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// ---------------------------------------------------------------------------
// Payload building
// ---------------------------------------------------------------------------

// legacyPayloadField pairs a standard outbound payload key with the order
// path it is synthesized from when a company has no usable mapping rules.
type legacyPayloadField struct {
	Key  string
	Path string
}

// legacyPayloadFields is the fixed fallback dictionary for companies
// configured before declarative mapping rules existed.
var legacyPayloadFields = []legacyPayloadField{
	{Key: "orderId", Path: "orderNumber"},
	{Key: "customerName", Path: "customerInfo.firstName"},
	{Key: "customerPhone", Path: "customerInfo.mobile"},
	{Key: "customerEmail", Path: "customerInfo.email"},
	{Key: "deliveryAddress", Path: "shippingAddress"},
	{Key: "city", Path: "shippingAddress.city"},
	{Key: "country", Path: "shippingAddress.country"},
	{Key: "amount", Path: "totalAmount"},
	{Key: "totalWithShipping", Path: "totalWithShipping"},
	{Key: "productName", Path: "items"},
	{Key: "itemCount", Path: "items"},
	{Key: "currency", Path: "currency"},
	{Key: "notes", Path: "notes"},
	{Key: "orderDate", Path: "createdAt"},
}

// BuildPayload produces the flat outbound payload for a company from the
// order's fields and the company's mapping rules. It is pure: no I/O, and
// deterministic for identical inputs.
//
// Rules are applied in configuration order. A rule whose source field is
// "static" takes its DefaultValue verbatim. DefaultValuePriority forces the
// default over any resolved value; otherwise the default only substitutes an
// empty resolution. Values that are still nil after transformation are not
// written.
//
// When no rule produces output (no rules configured, or all disabled), the
// payload is synthesized from the fixed legacy dictionary, renamed through
// the company's LegacyFieldMapping where configured.
func BuildPayload(order *Order, company *DeliveryCompany) map[string]any {
	payload := make(map[string]any)

	for i := range company.FieldMappings {
		rule := &company.FieldMappings[i]
		if !rule.Usable() {
			continue
		}

		var value any
		if rule.SourceField == StaticSourceField {
			value = rule.DefaultValue
		} else {
			value = ResolveOrderPath(order, rule.SourceField)
		}

		if rule.DefaultValuePriority && rule.DefaultValue != "" {
			value = rule.DefaultValue
		} else if isEmptyValue(value) && rule.DefaultValue != "" {
			value = rule.DefaultValue
		}

		value = applyTransform(order, rule.Transform, value)
		if value == nil {
			continue
		}
		payload[rule.TargetField] = value
	}

	if len(payload) > 0 {
		return payload
	}
	return buildLegacyPayload(order, company)
}

// buildLegacyPayload synthesizes the fallback payload from the fixed
// standard dictionary.
func buildLegacyPayload(order *Order, company *DeliveryCompany) map[string]any {
	payload := make(map[string]any, len(legacyPayloadFields))
	for _, f := range legacyPayloadFields {
		var value any
		switch f.Key {
		case "customerName":
			value = order.Customer.FullName()
		case "productName":
			value = order.ProductNames()
		case "itemCount":
			value = order.ItemCount()
		default:
			value = ResolveOrderPath(order, f.Path)
		}
		if isEmptyValue(value) {
			continue
		}
		key := f.Key
		if renamed, ok := company.LegacyFieldMapping[f.Key]; ok && strings.TrimSpace(renamed) != "" {
			key = renamed
		}
		payload[key] = value
	}
	return payload
}

// applyTransform applies a rule transform to a resolved value. Transforms
// that derive from the whole order (full_name, product_names) ignore the
// resolved value.
func applyTransform(order *Order, t Transform, value any) any {
	switch t {
	case TransformFullName:
		return order.Customer.FullName()
	case TransformProductNames:
		return order.ProductNames()
	case TransformUppercase:
		return strings.ToUpper(stringify(value))
	case TransformLowercase:
		return strings.ToLower(stringify(value))
	case TransformTrim:
		return strings.TrimSpace(stringify(value))
	case TransformPhoneDigits:
		return digitsOnly(stringify(value))
	case TransformPhoneLast10:
		digits := digitsOnly(stringify(value))
		if len(digits) > 10 {
			return digits[len(digits)-10:]
		}
		return digits
	case TransformToString:
		if value == nil {
			return nil
		}
		return stringify(value)
	case TransformToNumber:
		if n, err := strconv.ParseFloat(strings.TrimSpace(stringify(value)), 64); err == nil {
			return n
		}
		return value
	case TransformArrayLength:
		return arrayLength(value)
	default:
		return value
	}
}

// stringify renders any resolved value as a string.
func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// digitsOnly strips every non-digit rune.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// arrayLength returns the length of an array-ish value, or nil when the
// value is not one.
func arrayLength(v any) any {
	switch arr := v.(type) {
	case []OrderItem:
		return len(arr)
	case []any:
		return len(arr)
	case []string:
		return len(arr)
	default:
		return nil
	}
}
