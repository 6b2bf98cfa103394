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

// Package fintual implements the public Fintual API (https://fintual.cl/api):
// asset providers, banks, conceptual assets (funds), real assets (fund series)
// and their daily prices. Every call returns a frame.Table keyed by the
// resource id.
package fintual

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stockparfait/fetch"
	"github.com/stockparfait/fintual/api"
	"github.com/stockparfait/fintual/frame"
)

type contextKey int

const (
	clientContextKey contextKey = iota
)

// URL is the default base URL of the server, used unless another one is set
// with UseURL.
var URL = "https://fintual.cl/api"

// Schema is the conversion rules for the columns returned by the Fintual API.
// It tracks the remote schema and must be updated when the API changes.
var Schema = frame.Rules{
	Nested:  []string{"last_day"},
	Integer: []string{"id", "max_scale", "previous_asset_id"},
	Numeric: []string{
		"price",
		"close_price",
		"net_asset_value",
		"total_assets",
		"total_net_assets",
		"fixed_management_fee",
		"variable_management_fee",
		"purchase_fee",
		"redemption_fee",
		"last_day_close_price",
		"last_day_net_asset_value",
		"last_day_price",
	},
	Date: []string{"date", "start_date", "end_date", "last_day_date"},
}

// UseClient injects the HTTP client for all the calls into the context. A nil
// httpClient means http.DefaultClient.
func UseClient(ctx context.Context, httpClient *http.Client) context.Context {
	return fetch.UseClient(ctx, httpClient)
}

// UseURL injects an API client for the base URL into the context.
func UseURL(ctx context.Context, baseURL string) context.Context {
	return context.WithValue(ctx, clientContextKey, api.NewClient(baseURL))
}

// GetClient extracts the API client from the context, or creates a default
// one for URL.
func GetClient(ctx context.Context) *api.Client {
	c, ok := ctx.Value(clientContextKey).(*api.Client)
	if !ok {
		return api.NewClient(URL)
	}
	return c
}

// InvalidArgumentError is returned before any request when the arguments of a
// call are inconsistent.
type InvalidArgumentError struct {
	Reason string
}

var _ error = &InvalidArgumentError{}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Reason
}

// fetchTable is the common part of all the calls. Errors are returned as is,
// in particular *api.HTTPError.
func fetchTable(ctx context.Context, path string, params api.Params) (*frame.Table, error) {
	items, err := GetClient(ctx).Fetch(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return frame.Normalize(ctx, items, Schema), nil
}

// AssetProvider fetches a single asset provider (fund manager).
func AssetProvider(ctx context.Context, id int) (*frame.Table, error) {
	return fetchTable(ctx, fmt.Sprintf("asset_providers/%d", id), nil)
}

// AssetProviders fetches all the asset providers.
func AssetProviders(ctx context.Context) (*frame.Table, error) {
	return fetchTable(ctx, "asset_providers", nil)
}

// Banks fetches the banks whose name matches the query, or all the banks for
// an empty query.
func Banks(ctx context.Context, query string) (*frame.Table, error) {
	var params api.Params
	if query != "" {
		params = params.Add("q", query)
	}
	return fetchTable(ctx, "banks", params)
}

// ConceptualAsset fetches a single conceptual asset (a fund).
func ConceptualAsset(ctx context.Context, id int) (*frame.Table, error) {
	return fetchTable(ctx, fmt.Sprintf("conceptual_assets/%d", id), nil)
}

// ConceptualAssetsQuery filters conceptual assets. Zero values are not sent.
type ConceptualAssetsQuery struct {
	ProviderID int    // only the funds of this asset provider
	Run        string // the fund's registration number (RUN)
	Name       string
}

// Path for the query.
func (q ConceptualAssetsQuery) Path() string {
	if q.ProviderID != 0 {
		return fmt.Sprintf("asset_providers/%d/conceptual_assets", q.ProviderID)
	}
	return "conceptual_assets"
}

// Params for the query.
func (q ConceptualAssetsQuery) Params() api.Params {
	var p api.Params
	if q.Run != "" {
		p = p.Add("run", q.Run)
	}
	if q.Name != "" {
		p = p.Add("name", q.Name)
	}
	return p
}

// ConceptualAssets fetches conceptual assets, possibly filtered.
func ConceptualAssets(ctx context.Context, q ConceptualAssetsQuery) (*frame.Table, error) {
	return fetchTable(ctx, q.Path(), q.Params())
}

// RealAsset fetches a single real asset (a series of a fund).
func RealAsset(ctx context.Context, id int) (*frame.Table, error) {
	return fetchTable(ctx, fmt.Sprintf("real_assets/%d", id), nil)
}

// RealAssets fetches the real assets of a conceptual asset.
func RealAssets(ctx context.Context, conceptualAssetID int) (*frame.Table, error) {
	return fetchTable(ctx,
		fmt.Sprintf("conceptual_assets/%d/real_assets", conceptualAssetID), nil)
}

// DaysQuery selects the daily records of a real asset: either a single Date,
// or a range bounded by From and/or To. Zero dates are not sent.
type DaysQuery struct {
	Date frame.Date
	From frame.Date
	To   frame.Date
}

// Params for the query. Date combined with a range bound is an
// *InvalidArgumentError.
func (q DaysQuery) Params() (api.Params, error) {
	if !q.Date.IsZero() && (!q.From.IsZero() || !q.To.IsZero()) {
		return nil, &InvalidArgumentError{
			Reason: "date cannot be combined with from_date or to_date"}
	}
	var p api.Params
	if !q.Date.IsZero() {
		p = p.AddDate("date", q.Date)
	}
	if !q.To.IsZero() {
		p = p.AddDate("to_date", q.To)
	}
	if !q.From.IsZero() {
		p = p.AddDate("from_date", q.From)
	}
	return p, nil
}

// RealAssetDays fetches the daily records (prices, fees, assets) of a real
// asset. Inconsistent query fails with *InvalidArgumentError before any
// request is made.
func RealAssetDays(ctx context.Context, id int, q DaysQuery) (*frame.Table, error) {
	params, err := q.Params()
	if err != nil {
		return nil, err
	}
	return fetchTable(ctx, fmt.Sprintf("real_assets/%d/days", id), params)
}
