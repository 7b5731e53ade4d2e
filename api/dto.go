/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DECIMALS:
  Quantities, factors, coefficients and bounds travel as JSON strings (or
  numbers; decimal.Decimal accepts both on input) so clients keep the
  4-digit precision instead of receiving binary floats.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/converter.go: ConverterJSON definition shared with storage
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/uom-engine/factory"
)

// =============================================================================
// UNIT TYPES
// =============================================================================

// UnitDTO represents a catalog unit in API responses.
type UnitDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Factor   string `json:"factor"`
}

// CreateUnitRequest is the request to register a catalog unit.
type CreateUnitRequest struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Factor   decimal.Decimal `json:"factor"`
}

// =============================================================================
// CONVERTER TYPES
// =============================================================================

// ConverterDTO represents a converter in API responses.
type ConverterDTO struct {
	factory.ConverterJSON
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// =============================================================================
// CONVERSION TYPES
// =============================================================================

// ConvertRequest is the request body for a conversion. input_unit and
// output_unit are optional and default to the converter's configured units.
type ConvertRequest struct {
	Quantity   decimal.Decimal `json:"quantity"`
	InputUnit  string          `json:"input_unit,omitempty"`
	OutputUnit string          `json:"output_unit,omitempty"`
}

// ConvertResponse carries the conversion result and the unit denominating it.
type ConvertResponse struct {
	Converter string `json:"converter"`
	Result    string `json:"result"`
	Unit      string `json:"unit"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
