// Command dashboard-report prints one dashboard screen to the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/analytics"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/catalog"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/config"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/dashboard"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/daterange"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/format"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/middleware"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/storage"
)

type options struct {
	product string
	preset  string
	start   string
	end     string
	view    string
	sort    string
	top     int
	daily   bool
	timeout time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.product, "product", catalog.DefaultProductID, "product id")
	flag.StringVar(&opts.preset, "preset", "", "date preset (today, yesterday, last7days, ...)")
	flag.StringVar(&opts.start, "start", "", "range start, YYYY-MM-DD")
	flag.StringVar(&opts.end, "end", "", "range end, YYYY-MM-DD")
	flag.StringVar(&opts.view, "view", "", "leads or mql (lead products)")
	flag.StringVar(&opts.sort, "sort", "", "leaderboard sort key")
	flag.IntVar(&opts.top, "top", 0, "creatives to list")
	flag.BoolVar(&opts.daily, "daily", false, "print the daily breakdown")
	flag.DurationVar(&opts.timeout, "timeout", time.Minute, "overall timeout")
	flag.Parse()

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(opts options, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// The report writes to stdout, so logs stay quiet unless asked for.
	level := cfg.Log.Level
	if level == "info" {
		level = "warn"
	}
	logger, err := middleware.NewLogger(level, "console")
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	store, _, closeStore, err := storage.Open(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	loc, err := daterange.LoadLocation(cfg.Dashboard.Timezone)
	if err != nil {
		return err
	}
	resolver := daterange.NewResolver(loc,
		daterange.WithLaunchDates(catalog.LaunchDates()),
		daterange.WithEndDates(catalog.EndDates()),
		daterange.WithOpeningStarts(catalog.OpeningStarts()),
		daterange.WithDefaults(catalog.DefaultProductID, catalog.DefaultLaunchDate),
	)

	rg, err := pickRange(resolver, opts)
	if err != nil {
		return err
	}
	logger.Debug("loading report",
		zap.String("product", opts.product),
		zap.String("backend", cfg.Store.Backend),
		zap.String("range", rg.String()),
	)

	svc := dashboard.NewService(store, resolver, logger, dashboard.WithLeaderboardTop(cfg.Dashboard.LeaderboardTop),
		dashboard.WithLoadTimeout(cfg.Dashboard.LoadTimeout),
	)
	snap, err := svc.Load(ctx, opts.product, rg)
	if err != nil {
		return err
	}

	lb, err := rank(snap, opts)
	if err != nil {
		return err
	}
	return render(out, snap, lb, opts.daily)
}

func pickRange(r *daterange.Resolver, opts options) (daterange.Range, error) {
	switch {
	case opts.start != "" || opts.end != "":
		return daterange.Explicit(opts.start, opts.end)
	case opts.preset != "":
		p, ok := daterange.ParsePreset(opts.preset)
		if !ok {
			return daterange.Range{}, fmt.Errorf("unknown preset %q", opts.preset)
		}
		return r.Resolve(p, opts.product), nil
	default:
		return r.DefaultRange(opts.product), nil
	}
}

func rank(snap *dashboard.Snapshot, opts options) (analytics.Leaderboard, error) {
	var view analytics.LeadsView
	if opts.view != "" {
		v, ok := analytics.ParseLeadsView(opts.view)
		if !ok {
			return analytics.Leaderboard{}, fmt.Errorf("unknown view %q", opts.view)
		}
		view = v
	}
	var key analytics.SortKey
	if opts.sort != "" {
		k, ok := analytics.ParseSortKey(opts.sort)
		if !ok {
			return analytics.Leaderboard{}, fmt.Errorf("unknown sort %q", opts.sort)
		}
		key = k
	}
	return snap.Rank(view, key, opts.top), nil
}

func render(out io.Writer, snap *dashboard.Snapshot, lb analytics.Leaderboard, daily bool) error {
	fmt.Fprintf(out, "%s  %s a %s\n", snap.Product.Name, format.DateFull(snap.Range.Start), format.DateFull(snap.Range.End))
	if snap.IncludesPartialDay {
		fmt.Fprintln(out, "Inclui o dia de hoje: dados parciais.")
	}
	for _, w := range snap.Warnings {
		fmt.Fprintln(out, "Aviso:", w)
	}

	if snap.Metrics == nil {
		if snap.LatestAvailableDate != "" {
			fmt.Fprintf(out, "\nSem dados no período. Último dia disponível: %s\n", format.Date(snap.LatestAvailableDate))
		} else {
			fmt.Fprintln(out, "\nSem dados no período.")
		}
		return nil
	}
	if snap.UsingCreativesFallback {
		fmt.Fprintln(out, "Resumo diário vazio: números calculados a partir dos criativos.")
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw)
	for _, c := range snap.Cards {
		fmt.Fprintf(tw, "%s\t%s\n", c.Label, format.Card(c))
	}

	fmt.Fprintln(tw)
	for _, s := range snap.Funnel {
		rate := ""
		if s.Rate != nil {
			rate = format.Percent(*s.Rate)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Label, format.Int(s.Value), rate)
	}

	if daily {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Dia\tInvestimento\tImpressões\tCliques\tLeads\tVendas\tMQLs")
		for _, d := range snap.Metrics.DailyData {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				format.Date(d.Date),
				format.Currency(d.TotalSpend),
				format.Int(d.TotalImpressions),
				format.Int(d.TotalLinkClicks),
				format.Int(d.TotalLeads),
				format.Int(d.SheetSales),
				format.Int(d.SheetMqls),
			)
		}
	}

	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "#\tCriativo\tInvestimento\tCliques\tCPC\tConversões\tCusto/Conv.\n")
	for _, r := range lb.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Rank,
			r.Name,
			format.Currency(r.Spend),
			format.Int(r.LinkClicks),
			format.Cost(r.CPC),
			format.Int(r.Conversions),
			format.Cost(r.CostPerConversion),
		)
	}
	if lb.Unassigned != nil {
		fmt.Fprintf(tw, "\t%s\t\t\t\t%s\t\n", lb.Unassigned.Label, format.Int(lb.Unassigned.Conversions))
	}

	return tw.Flush()
}
