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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/fintual/api/fintual"
	"github.com/stockparfait/fintual/frame"
	"github.com/stockparfait/iterator"
	"github.com/stockparfait/logging"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/exp/slices"
)

type Flags struct {
	Config   string // optional TOML config file
	LogLevel logging.Level
	Op       string // name of the operation flag, e.g. "providers"
	// Exactly one of the following must be present.
	Providers       bool
	Provider        int
	Banks           bool
	Conceptual      bool
	ConceptualAsset int
	RealAsset       int
	RealAssets      int   // conceptual asset ID to list real assets for
	Days            []int // real asset IDs to print daily records for
	// Modifiers.
	Query      string // for -banks
	ProviderID int    // for -conceptual
	Run        string // for -conceptual
	Name       string // for -conceptual
	Date       frame.Date
	From       frame.Date
	To         frame.Date
	CSV        bool // dump CSV format; default: text
	Describe   bool // print summary statistics instead of the table
	Rows       int  // max. rows to print; 0 = config value or unlimited
}

// dateFlag parses a YYYY-MM-DD flag value into a Date.
type dateFlag struct {
	date *frame.Date
}

var _ flag.Value = &dateFlag{}

func (f *dateFlag) String() string {
	if f.date == nil || f.date.IsZero() {
		return ""
	}
	return f.date.String()
}

func (f *dateFlag) Set(s string) error {
	d, err := frame.NewDateFromString(s)
	if err != nil {
		return err
	}
	*f.date = d
	return nil
}

func parseIDs(s string) ([]int, error) {
	var ids []int
	for _, p := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Annotate(err, "invalid ID '%s'", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// operations are the flags selecting what to fetch.
var operations = []string{
	"providers", "provider", "banks", "conceptual", "conceptual-asset",
	"real-asset", "real-assets", "days",
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	var days string
	fs := flag.NewFlagSet("parfait-fintual", flag.ExitOnError)
	fs.StringVar(&flags.Config, "config", "", "TOML config file (optional)")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")
	fs.BoolVar(&flags.Providers, "providers", false, "print all asset providers")
	fs.IntVar(&flags.Provider, "provider", 0, "asset provider ID to print")
	fs.BoolVar(&flags.Banks, "banks", false, "print banks, filtered by -q")
	fs.BoolVar(&flags.Conceptual, "conceptual", false,
		"print conceptual assets, filtered by -provider-id, -run and -name")
	fs.IntVar(&flags.ConceptualAsset, "conceptual-asset", 0, "conceptual asset ID to print")
	fs.IntVar(&flags.RealAsset, "real-asset", 0, "real asset ID to print")
	fs.IntVar(&flags.RealAssets, "real-assets", 0,
		"conceptual asset ID to print real assets for")
	fs.StringVar(&days, "days", "",
		"comma separated real asset IDs to print daily records for")
	fs.StringVar(&flags.Query, "q", "", "bank name query")
	fs.IntVar(&flags.ProviderID, "provider-id", 0, "asset provider ID of conceptual assets")
	fs.StringVar(&flags.Run, "run", "", "conceptual asset RUN")
	fs.StringVar(&flags.Name, "name", "", "conceptual asset name")
	fs.Var(&dateFlag{&flags.Date}, "date", "day of the daily records, YYYY-MM-DD")
	fs.Var(&dateFlag{&flags.From}, "from", "first day of the daily records, YYYY-MM-DD")
	fs.Var(&dateFlag{&flags.To}, "to", "last day of the daily records, YYYY-MM-DD")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")
	fs.BoolVar(&flags.Describe, "describe", false, "print statistics of numeric columns")
	fs.IntVar(&flags.Rows, "rows", 0, "max. number of rows to print (0 = unlimited)")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	if days != "" {
		if flags.Days, err = parseIDs(days); err != nil {
			return nil, errors.Annotate(err, "failed to parse -days")
		}
	}
	var ops []string
	fs.Visit(func(f *flag.Flag) {
		if slices.Contains(operations, f.Name) {
			ops = append(ops, f.Name)
		}
	})
	if len(ops) != 1 {
		return nil, errors.Reason("expected exactly one of -providers, -provider, " +
			"-banks, -conceptual, -conceptual-asset, -real-asset, -real-assets or -days")
	}
	flags.Op = ops[0]
	if flags.Op == "days" && len(flags.Days) == 0 {
		return nil, errors.Reason("-days requires at least one real asset ID")
	}
	return &flags, nil
}

type Config struct {
	URL  string `toml:"url"`  // base API URL; default: fintual.URL
	Rows int    `toml:"rows"` // default max. number of rows to print
}

func parseConfig(path string) (*Config, error) {
	var c Config
	if path == "" {
		return &c, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open config file %s", path)
	}
	defer f.Close()

	d := toml.NewDecoder(f)
	if err := d.Decode(&c); err != nil {
		return nil, errors.Annotate(err, "failed to read config file %s", path)
	}
	return &c, nil
}

// assetDays is the result of downloading daily records of a real asset.
type assetDays struct {
	ID    int
	Table *frame.Table
	Err   error
}

// fetchDays downloads daily records for all the real assets in parallel and
// returns them in the order of IDs.
func fetchDays(ctx context.Context, ids []int, q fintual.DaysQuery) ([]assetDays, error) {
	f := func(id int) assetDays {
		tbl, err := fintual.RealAssetDays(ctx, id, q)
		return assetDays{ID: id, Table: tbl, Err: err}
	}
	pm := iterator.ParallelMap(ctx, runtime.NumCPU(), iterator.FromSlice(ids), f)

	res := iterator.Reduce[assetDays, []assetDays](pm, []assetDays{},
		func(d assetDays, acc []assetDays) []assetDays {
			return append(acc, d)
		})
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	for _, d := range res {
		if d.Err != nil {
			return nil, errors.Annotate(d.Err, "failed to fetch days for real asset %d", d.ID)
		}
	}
	return res, nil
}

// fetchTables runs the operation selected by the flags. Each resulting table
// is titled when there is more than one.
func fetchTables(ctx context.Context, flags *Flags) ([]*frame.Table, []string, error) {
	var tbl *frame.Table
	var err error
	switch flags.Op {
	case "providers":
		tbl, err = fintual.AssetProviders(ctx)
	case "provider":
		tbl, err = fintual.AssetProvider(ctx, flags.Provider)
	case "banks":
		tbl, err = fintual.Banks(ctx, flags.Query)
	case "conceptual":
		tbl, err = fintual.ConceptualAssets(ctx, fintual.ConceptualAssetsQuery{
			ProviderID: flags.ProviderID,
			Run:        flags.Run,
			Name:       flags.Name,
		})
	case "conceptual-asset":
		tbl, err = fintual.ConceptualAsset(ctx, flags.ConceptualAsset)
	case "real-asset":
		tbl, err = fintual.RealAsset(ctx, flags.RealAsset)
	case "real-assets":
		tbl, err = fintual.RealAssets(ctx, flags.RealAssets)
	case "days":
		q := fintual.DaysQuery{Date: flags.Date, From: flags.From, To: flags.To}
		days, err := fetchDays(ctx, flags.Days, q)
		if err != nil {
			return nil, nil, err
		}
		var tables []*frame.Table
		var titles []string
		for _, d := range days {
			tables = append(tables, d.Table)
			titles = append(titles, fmt.Sprintf("real asset %d", d.ID))
		}
		return tables, titles, nil
	default:
		return nil, nil, errors.Reason("unknown operation '%s'", flags.Op)
	}
	if err != nil {
		return nil, nil, err
	}
	return []*frame.Table{tbl}, []string{""}, nil
}

func printData(ctx context.Context, flags *Flags, w io.Writer) error {
	config, err := parseConfig(flags.Config)
	if err != nil {
		return errors.Annotate(err, "failed to parse config")
	}
	if config.URL != "" {
		ctx = fintual.UseURL(ctx, config.URL)
	}

	tables, titles, err := fetchTables(ctx, flags)
	if err != nil {
		return errors.Annotate(err, "failed to fetch data")
	}
	p := frame.Params{Rows: config.Rows}
	if flags.Rows > 0 {
		p.Rows = flags.Rows
	}
	for i, tbl := range tables {
		if len(tables) > 1 {
			if _, err := fmt.Fprintf(w, "%s:\n", titles[i]); err != nil {
				return errors.Annotate(err, "failed to print title")
			}
		}
		if flags.Describe {
			tbl = tbl.Describe()
		}
		if flags.CSV {
			if err := tbl.WriteCSV(w, p); err != nil {
				return errors.Annotate(err, "failed to print CSV")
			}
			continue
		}
		if err := tbl.WriteText(w, p); err != nil {
			return errors.Annotate(err, "failed to print text")
		}
	}
	return nil
}

func main() {
	ctx := context.Background()
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, "failed to parse flags: %s", err.Error())
		os.Exit(1)
	}
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	if err := printData(ctx, flags, os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
