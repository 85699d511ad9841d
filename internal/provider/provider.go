package provider

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrUnavailable covers transport failures and non-2xx answers from a
// bibliographic provider. Callers surface it as a server error and do not
// retry.
var ErrUnavailable = errors.New("provider unavailable")

const userAgent = "bookmap/1.0"

// ProviderError is an error the provider reported inside an otherwise
// successful response.
type ProviderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %s: %s", e.Code, e.Message)
}

func newClient(baseURL string) *resty.Client {
	c := resty.New()
	c.SetBaseURL(baseURL)
	c.SetTimeout(12 * time.Second)
	c.SetHeader("User-Agent", userAgent)
	return c
}

func unavailable(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	body := resp.String()
	if len(body) > 256 {
		body = body[:256]
	}
	return fmt.Errorf("%s: %w: http %d: %s", op, ErrUnavailable, resp.StatusCode(), body)
}
