// Copyright 2022 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api fetches resources from a REST API which wraps its responses in
// a {"data": ...} envelope, where data is either a single resource
// {"id": ..., "attributes": {...}} or a list of them.
//
// Provider specific operations are implemented in the subpackages.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/fintual/frame"
	"github.com/stockparfait/logging"
)

// Client for a single REST API server. The HTTP client is taken from the
// context at request time, see fetch.UseClient.
type Client struct {
	baseURL string // e.g. https://fintual.cl/api
}

// NewClient creates a new client for the base URL.
func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL}
}

// BaseURL of the server.
func (c *Client) BaseURL() string { return c.baseURL }

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query parameters. The builder methods always
// create a copy, leaving the original intact.
type Params []Param

// Add a parameter at the end.
func (p Params) Add(key, value string) Params {
	p2 := make(Params, len(p), len(p)+1)
	copy(p2, p)
	return append(p2, Param{Key: key, Value: value})
}

// AddDate adds a date parameter formatted as YYYY-MM-DD.
func (p Params) AddDate(key string, d frame.Date) Params {
	return p.Add(key, d.String())
}

// Encode joins the parameters as key=value with '&' in their order, and
// percent-encodes the result as a whole, keeping '&' and '=' intact.
func (p Params) Encode() string {
	pairs := make([]string, len(p))
	for i, kv := range p {
		pairs[i] = kv.Key + "=" + kv.Value
	}
	return url.PathEscape(strings.Join(pairs, "&"))
}

// URL for the resource path and the query parameters.
func (c *Client) URL(path string, params Params) string {
	uri := strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		uri += "?" + params.Encode()
	}
	return uri
}

// HTTPError is returned by Fetch for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Status     string // e.g. "404 Not Found"
	URL        string
}

var _ error = &HTTPError{}

func (e *HTTPError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	return fmt.Sprintf("GET %s: HTTP status %s", e.URL, status)
}

// envelope is the top-level JSON object of every response.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// DecodeEnvelope extracts the list of resources from the response body. A
// single resource is returned as a list of one, and a missing or null data
// as an empty list.
func DecodeEnvelope(body []byte) ([]frame.Item, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Annotate(err, "response is not a JSON object")
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []frame.Item{}, nil
	}
	if data[0] == '[' {
		items := []frame.Item{}
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, errors.Annotate(err, "failed to decode the data list")
		}
		return items, nil
	}
	var item frame.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, errors.Annotate(err, "failed to decode the data object")
	}
	return []frame.Item{item}, nil
}

// Fetch issues a single GET request for the resource path and returns the
// resources from the response envelope. Non-2xx responses return *HTTPError
// as is, without annotation. No retries are attempted.
func (c *Client) Fetch(ctx context.Context, path string, params Params) ([]frame.Item, error) {
	uri := c.URL(path, params)
	logging.Debugf(ctx, "GET %s", uri)
	resp, err := fetch.Get(ctx, uri, nil)
	if resp != nil {
		defer resp.Body.Close()
		if !fetch.ResponseOK(resp) {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, URL: uri}
		}
	}
	if err != nil {
		return nil, errors.Annotate(err, "failed to GET %s", uri)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Annotate(err, "failed to read response body from %s", uri)
	}
	items, err := DecodeEnvelope(body)
	if err != nil {
		return nil, errors.Annotate(err, "failed to decode response from %s", uri)
	}
	logging.Debugf(ctx, "received %d resources from %s", len(items), uri)
	return items, nil
}
