package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type apiClient struct {
	http *resty.Client
}

func newAPIClient(baseURL string) *apiClient {
	c := resty.New()
	c.SetBaseURL(baseURL)
	c.SetTimeout(15 * time.Second)
	return &apiClient{http: c}
}

type apiError struct {
	Error string `json:"error"`
}

// get decodes the body into out. Statuses listed in accept are decoded too,
// so soft "not found" answers that carry a hint still reach the caller.
func (a *apiClient) get(ctx context.Context, path string, params map[string]string, out any, accept ...int) (int, error) {
	resp, err := a.http.R().SetContext(ctx).SetQueryParams(params).Get(path)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", path, err)
	}

	ok := resp.IsSuccess()
	for _, s := range accept {
		if resp.StatusCode() == s {
			ok = true
		}
	}
	if !ok {
		var e apiError
		if json.Unmarshal(resp.Body(), &e) == nil && e.Error != "" {
			return resp.StatusCode(), fmt.Errorf("GET %s: %d %s", path, resp.StatusCode(), e.Error)
		}
		return resp.StatusCode(), fmt.Errorf("GET %s: status %d", path, resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return resp.StatusCode(), fmt.Errorf("decode %s: %w", path, err)
	}
	return resp.StatusCode(), nil
}
