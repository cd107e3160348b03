// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package webapi

import (
	"fmt"
	"net/http"
)

// Status is an HTTP status code as reported by the Web API.
type Status int

func (s Status) String() string {
	switch s {
	case http.StatusOK:
		return "OK"
	case http.StatusCreated:
		return "Created"
	case http.StatusAccepted:
		return "Accepted"
	case http.StatusNoContent:
		return "No Content"
	case http.StatusNotModified:
		return "Not Modified"
	case http.StatusBadRequest:
		return "Bad Request"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "Not Found"
	case http.StatusTooManyRequests:
		return "Too Many Requests"
	case http.StatusInternalServerError:
		return "Internal Server Error"
	case http.StatusBadGateway:
		return "Bad Gateway"
	case http.StatusServiceUnavailable:
		return "Service Unavailable"
	default:
		return "Unexpected status: " + http.StatusText(int(s))
	}
}

// GoString includes the numeric code, e.g. "Not Found (404)".
func (s Status) GoString() string {
	return fmt.Sprintf("%s (%d)", s.String(), int(s))
}

// IsSuccess reports a 2xx code.
func (s Status) IsSuccess() bool {
	return s >= 200 && s < 300
}
