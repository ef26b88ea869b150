package session

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// decode unmarshals an inbound payload and enforces its validate tags.  State
// is never touched on a payload that fails either step.
func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, err
	}
	if err := validate.Struct(v); err != nil {
		return v, err
	}
	return v, nil
}
