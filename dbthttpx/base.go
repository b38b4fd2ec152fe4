package dbthttpx

import (
	"context"
	"io"
	"net/http"
)

type RequestBuilder struct {
	UserAgent     string
	Endpoint      string
	BearerToken   string
	PartnerSource string
	RequestId     string
}

func (h RequestBuilder) NewRequest(
	ctx context.Context,
	method, path, contentType string,
	body io.Reader,
) (*http.Request, error) {
	uri := h.Endpoint + path
	req, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	if h.PartnerSource != "" {
		req.Header.Set("X-dbt-partner-source", h.PartnerSource)
	}

	if h.RequestId != "" {
		req.Header.Set("X-Request-Id", h.RequestId)
	}

	if h.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+h.BearerToken)
	}

	return req, nil
}
