package inventory

import (
	"errors"
	"fmt"
	"net"

	"github.com/aws/smithy-go"
)

// Kind classifies why a query produced no blob.
type Kind string

const (
	KindAuth        Kind = "auth"
	KindNetwork     Kind = "network"
	KindAPI         Kind = "api"
	KindUnsupported Kind = "unsupported"
	KindUnknown     Kind = "unknown"
)

// UnavailableError is returned by a Source when a query has no usable response.
type UnavailableError struct {
	Query Query
	Kind  Kind
	Err   error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Query, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Query)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

var authCodes = map[string]bool{
	"AuthFailure":                 true,
	"UnauthorizedOperation":       true,
	"UnrecognizedClientException": true,
	"InvalidClientTokenId":        true,
	"SignatureDoesNotMatch":       true,
	"ExpiredToken":                true,
	"ExpiredTokenException":       true,
	"AccessDenied":                true,
	"AccessDeniedException":       true,
}

// Unavailable wraps err for q and classifies it.
func Unavailable(q Query, err error) *UnavailableError {
	return &UnavailableError{Query: q, Kind: classify(err), Err: err}
}

func classify(err error) Kind {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if authCodes[apiErr.ErrorCode()] {
			return KindAuth
		}
		return KindAPI
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	return KindUnknown
}

// IsAuthFailure reports whether err came from rejected or expired credentials.
func IsAuthFailure(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue) && ue.Kind == KindAuth
}
