package azure

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
)

// IsTransient reports whether err is a provider error worth retrying:
// throttling or a server-side failure.
func IsTransient(err error) bool {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	switch respErr.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// MapResponseError converts an ARM error into the domain taxonomy. Auth
// failures map to the auth sentinels, throttling and server failures become
// TransientError with the provider's retry hint, everything else becomes a
// PermanentError surfaced without retry.
func MapResponseError(err error) error {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return err
	}
	switch respErr.StatusCode {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	}
	if IsTransient(err) {
		return &domain.TransientError{Err: err, RetryAfter: retryAfter(respErr)}
	}
	return &domain.PermanentError{Err: err, Detail: respErr.ErrorCode}
}

func retryAfter(respErr *azcore.ResponseError) time.Duration {
	if respErr.RawResponse == nil {
		return 0
	}
	header := respErr.RawResponse.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
