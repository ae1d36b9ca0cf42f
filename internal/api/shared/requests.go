package shared

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// validate is shared across handlers; validator.Validate caches struct
// metadata, so a single instance is cheaper than one per request.
var validate = validator.New()

// DecodeJSON decodes the request body into the given DTO.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// ValidateRequest validates a decoded request DTO. Types carrying their own
// Validate method are trusted over the struct tags; everything else goes
// through the tag-driven validator.
func ValidateRequest(v interface{}) error {
	if custom, ok := v.(interface{ Validate() error }); ok {
		return custom.Validate()
	}
	return validate.Struct(v)
}
