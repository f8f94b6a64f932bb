// Package network holds the HTTP client shared by in-process renderers and the update check.
package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anisan-cli/trackplayer/constant"
)

// ErrStatus is returned for responses other than 200 OK.
var ErrStatus = errors.New("unexpected status")

// Client has no overall timeout since a media download may run for minutes.
// Requests are bounded by their context and the response header timeout.
var Client = &http.Client{
	Transport: newTransport(),
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 4
	t.IdleConnTimeout = 90 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	return t
}

// Get requests target with headers set. An empty userAgent sends constant.UserAgent.
// The caller closes the body of the returned response.
func Get(ctx context.Context, target string, headers map[string]string, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if userAgent == "" {
		userAgent = constant.UserAgent
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := Client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	return resp, nil
}
