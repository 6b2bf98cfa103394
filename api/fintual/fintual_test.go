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

package fintual

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fintual/api"
	"github.com/stockparfait/fintual/frame"
	"github.com/stockparfait/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

// countingTransport records the requests and never reaches the network.
type countingTransport struct {
	calls int
}

func (t *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	t.calls++
	return nil, errors.Reason("unexpected request to %s", r.URL)
}

type testCall struct {
	name  string
	call  func(ctx context.Context) (*frame.Table, error)
	path  string
	query url.Values
}

var testCalls = []testCall{
	{
		name: "AssetProvider",
		call: func(ctx context.Context) (*frame.Table, error) { return AssetProvider(ctx, 3) },
		path: "/api/asset_providers/3",
	},
	{
		name: "AssetProviders",
		call: AssetProviders,
		path: "/api/asset_providers",
	},
	{
		name: "Banks",
		call: func(ctx context.Context) (*frame.Table, error) { return Banks(ctx, "") },
		path: "/api/banks",
	},
	{
		name:  "Banks with query",
		call:  func(ctx context.Context) (*frame.Table, error) { return Banks(ctx, "de Chile") },
		path:  "/api/banks",
		query: url.Values{"q": {"de Chile"}},
	},
	{
		name: "ConceptualAsset",
		call: func(ctx context.Context) (*frame.Table, error) { return ConceptualAsset(ctx, 16) },
		path: "/api/conceptual_assets/16",
	},
	{
		name: "ConceptualAssets",
		call: func(ctx context.Context) (*frame.Table, error) {
			return ConceptualAssets(ctx, ConceptualAssetsQuery{})
		},
		path: "/api/conceptual_assets",
	},
	{
		name: "ConceptualAssets filtered",
		call: func(ctx context.Context) (*frame.Table, error) {
			return ConceptualAssets(ctx, ConceptualAssetsQuery{Run: "9118", Name: "Risky Norris"})
		},
		path:  "/api/conceptual_assets",
		query: url.Values{"run": {"9118"}, "name": {"Risky Norris"}},
	},
	{
		name: "ConceptualAssets by provider",
		call: func(ctx context.Context) (*frame.Table, error) {
			return ConceptualAssets(ctx, ConceptualAssetsQuery{ProviderID: 1, Name: "Norris"})
		},
		path:  "/api/asset_providers/1/conceptual_assets",
		query: url.Values{"name": {"Norris"}},
	},
	{
		name: "RealAsset",
		call: func(ctx context.Context) (*frame.Table, error) { return RealAsset(ctx, 166) },
		path: "/api/real_assets/166",
	},
	{
		name: "RealAssets",
		call: func(ctx context.Context) (*frame.Table, error) { return RealAssets(ctx, 16) },
		path: "/api/conceptual_assets/16/real_assets",
	},
	{
		name: "RealAssetDays",
		call: func(ctx context.Context) (*frame.Table, error) {
			return RealAssetDays(ctx, 186, DaysQuery{})
		},
		path: "/api/real_assets/186/days",
	},
	{
		name: "RealAssetDays on a date",
		call: func(ctx context.Context) (*frame.Table, error) {
			return RealAssetDays(ctx, 186, DaysQuery{Date: frame.NewDate(2020, 9, 22)})
		},
		path:  "/api/real_assets/186/days",
		query: url.Values{"date": {"2020-09-22"}},
	},
	{
		name: "RealAssetDays in a range",
		call: func(ctx context.Context) (*frame.Table, error) {
			return RealAssetDays(ctx, 186, DaysQuery{
				From: frame.NewDate(2020, 1, 1), To: frame.NewDate(2020, 2, 1)})
		},
		path:  "/api/real_assets/186/days",
		query: url.Values{"from_date": {"2020-01-01"}, "to_date": {"2020-02-01"}},
	},
}

func TestFintual(t *testing.T) {
	t.Parallel()

	Convey("API calls work correctly", t, func() {
		server := testutil.NewTestServer()
		defer server.Close()
		server.ResponseBody = []string{`{"data": []}`}

		ctx := UseClient(context.Background(), server.Client())
		ctx = UseURL(ctx, server.URL()+"/api")

		Convey("requests the right path and query", func() {
			for _, tc := range testCalls {
				_, err := tc.call(ctx)
				So(err, ShouldBeNil)
				So(server.RequestPath, ShouldEqual, tc.path)
				if tc.query == nil {
					So(len(server.RequestQuery), ShouldEqual, 0)
				} else {
					So(server.RequestQuery, ShouldResemble, tc.query)
				}
			}
		})

		Convey("empty data yields an empty table", func() {
			for _, tc := range testCalls {
				tbl, err := tc.call(ctx)
				So(err, ShouldBeNil)
				So(tbl.Len(), ShouldEqual, 0)
				So(len(tbl.Columns), ShouldEqual, 0)
			}
		})

		Convey("AssetProvider", func() {
			server.ResponseBody = []string{
				`{"data": {"id": "3", "type": "asset_provider", "attributes": {"name": "Banco X"}}}`}
			tbl, err := AssetProvider(ctx, 3)
			So(err, ShouldBeNil)
			So(tbl.Columns, ShouldResemble, []string{"name"})
			So(tbl.Index, ShouldResemble, []frame.Value{int64(3)})
			So(tbl.Rows, ShouldResemble, [][]frame.Value{{"Banco X"}})
		})

		Convey("AssetProviders are sorted by id", func() {
			server.ResponseBody = []string{`{"data": [
				{"id": "10", "type": "asset_provider", "attributes": {"name": "Ten"}},
				{"id": "2", "type": "asset_provider", "attributes": {"name": "Two"}}]}`}
			tbl, err := AssetProviders(ctx)
			So(err, ShouldBeNil)
			So(tbl.Index, ShouldResemble, []frame.Value{int64(2), int64(10)})
			col, _ := tbl.Column("name")
			So(col, ShouldResemble, []frame.Value{"Two", "Ten"})
		})

		Convey("ConceptualAssets", func() {
			server.ResponseBody = []string{`{"data": [{"id": "186", "type": "conceptual_asset",
				"attributes": {"name": "Risky Norris", "symbol": "FFMM-FINTUAL-A",
				"category": "aggressive", "currency": "CLP", "max_scale": 4,
				"run": "9570", "data_source": "fintual"}}]}`}
			tbl, err := ConceptualAssets(ctx, ConceptualAssetsQuery{})
			So(err, ShouldBeNil)
			So(tbl.Columns, ShouldResemble, []string{"name", "symbol", "category",
				"currency", "max_scale", "run", "data_source"})
			scale, _ := tbl.Get(0, "max_scale")
			So(scale, ShouldEqual, int64(4))
			run, _ := tbl.Get(0, "run")
			So(run, ShouldEqual, "9570")
		})

		Convey("RealAsset", func() {
			server.ResponseBody = []string{`{"data": {"id": "186", "type": "real_asset",
				"attributes": {"name": "Risky Norris", "symbol": "FFMM-FINTUAL-A",
				"serie": "A", "start_date": "2018-04-01", "end_date": null,
				"previous_asset_id": null,
				"last_day": {"close_price": "10.5", "date": "2020-09-22"}}}}`}
			tbl, err := RealAsset(ctx, 186)
			So(err, ShouldBeNil)
			So(tbl.Columns, ShouldResemble, []string{"name", "symbol", "serie",
				"start_date", "end_date", "previous_asset_id",
				"last_day_close_price", "last_day_date"})
			So(tbl.Index, ShouldResemble, []frame.Value{int64(186)})
			So(tbl.Rows[0], ShouldResemble, []frame.Value{
				"Risky Norris", "FFMM-FINTUAL-A", "A", frame.NewDate(2018, 4, 1),
				nil, nil, 10.5, frame.NewDate(2020, 9, 22)})
		})

		Convey("RealAssetDays", func() {
			server.ResponseBody = []string{`{"data": [
				{"id": 2, "type": "real_asset_day", "attributes": {
					"date": "2020-09-22", "price": 1234.56, "net_asset_value": "1234.56",
					"fixed_management_fee": "n/a"}},
				{"id": 1, "type": "real_asset_day", "attributes": {
					"date": "2020-09-21", "price": 1230, "net_asset_value": "1230.0",
					"fixed_management_fee": 0.5}}]}`}
			tbl, err := RealAssetDays(ctx, 186, DaysQuery{})
			So(err, ShouldBeNil)
			So(tbl.Index, ShouldResemble, []frame.Value{int64(1), int64(2)})
			So(tbl.Rows, ShouldResemble, [][]frame.Value{
				{frame.NewDate(2020, 9, 21), 1230.0, 1230.0, 0.5},
				{frame.NewDate(2020, 9, 22), 1234.56, 1234.56, nil},
			})
		})
	})

	Convey("HTTP errors propagate unchanged", t, func() {
		server := testutil.NewTestServer()
		defer server.Close()
		server.ResponseStatus = []int{http.StatusNotFound}
		ctx := UseClient(context.Background(), server.Client())
		ctx = UseURL(ctx, server.URL()+"/api")

		for _, tc := range testCalls {
			_, err := tc.call(ctx)
			httpErr, ok := err.(*api.HTTPError)
			So(ok, ShouldBeTrue)
			So(httpErr.StatusCode, ShouldEqual, http.StatusNotFound)
		}
	})

	Convey("Invalid arguments fail before any request", t, func() {
		transport := &countingTransport{}
		ctx := UseClient(context.Background(), &http.Client{Transport: transport})
		day := frame.NewDate(2020, 9, 22)

		for _, q := range []DaysQuery{
			{Date: day, From: day},
			{Date: day, To: day},
			{Date: day, From: day, To: day},
		} {
			_, err := RealAssetDays(ctx, 186, q)
			So(err, ShouldNotBeNil)
			_, ok := err.(*InvalidArgumentError)
			So(ok, ShouldBeTrue)
		}
		So(transport.calls, ShouldEqual, 0)

		Convey("while a valid query reaches the transport", func() {
			_, err := RealAssetDays(ctx, 186, DaysQuery{Date: day})
			So(err, ShouldNotBeNil)
			So(transport.calls, ShouldEqual, 1)
		})
	})

	Convey("GetClient", t, func() {
		Convey("defaults to URL", func() {
			So(GetClient(context.Background()).BaseURL(), ShouldEqual, URL)
		})

		Convey("uses the injected URL", func() {
			ctx := UseURL(context.Background(), "https://example.test/api")
			So(GetClient(ctx).BaseURL(), ShouldEqual, "https://example.test/api")
		})
	})
}
