package dbthttpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

type GraphQLRequest struct {
	Query         string          `json:"query"`
	Variables     json.RawMessage `json:"variables,omitempty"`
	OperationName string          `json:"operationName,omitempty"`
}

type graphQLErrorJson struct {
	Message string `json:"message"`
}

type graphQLResponseJson struct {
	Data   json.RawMessage    `json:"data"`
	Errors []graphQLErrorJson `json:"errors"`
}

type GraphQLExecutor struct {
	UserAgent     string
	Transport     http.RoundTripper
	Endpoint      string
	Path          string
	BearerToken   string
	PartnerSource string
	RequestId     string
}

// Execute posts a single GraphQL request and returns the raw data payload.
// Non-2xx responses become ServiceError, envelope errors become ServerError.
func (h GraphQLExecutor) Execute(ctx context.Context, greq *GraphQLRequest) (json.RawMessage, error) {
	reqBytes, err := json.Marshal(greq)
	if err != nil {
		return nil, err
	}

	req, err := RequestBuilder{
		UserAgent:     h.UserAgent,
		Endpoint:      h.Endpoint,
		BearerToken:   h.BearerToken,
		PartnerSource: h.PartnerSource,
		RequestId:     h.RequestId,
	}.NewRequest(ctx, "POST", h.Path, "application/json", bytes.NewReader(reqBytes))
	if err != nil {
		return nil, err
	}

	resp, err := Client{
		Transport: h.Transport,
	}.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Endpoint:   h.Endpoint,
			Body:       string(errBody),
		}
	}

	var respJson graphQLResponseJson
	if err := json.NewDecoder(resp.Body).Decode(&respJson); err != nil {
		return nil, err
	}

	if len(respJson.Errors) > 0 {
		msgs := make([]string, len(respJson.Errors))
		for i, errJson := range respJson.Errors {
			msgs[i] = errJson.Message
		}
		return nil, &ServerError{Messages: msgs}
	}

	return respJson.Data, nil
}
