// Copyright (c) 2026 Corkboard. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts common body decoding patterns, ensuring consistent error handling
across the delivery layer.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/corkboard/corkboard/internal/platform/apperr"
)

// ErrInvalidJSON is returned when a request body cannot be decoded.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return ErrInvalidJSON
	}
	return nil
}
