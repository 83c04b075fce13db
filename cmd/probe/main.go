// probe печатает, какой источник выбирает резолвер для каждой категории
// и чем закончилась каждая попытка.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"mpsite/internal/app"
	"mpsite/internal/config"
	content "mpsite/internal/services/content_service"

	"github.com/fatih/color"
)

func main() {
	keys := flag.String("keys", "", "block keys, comma separated")
	only := flag.String("category", "", "probe a single category")
	timeout := flag.Duration("timeout", 10*time.Second, "overall timeout")

	cfg := config.MustLoad()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	factory := app.NewFactory(ctx, log, cfg)
	defer factory.Close()

	svc := app.NewContentService(log, cfg, factory)
	if !svc.Configured() {
		color.Yellow("backend not configured: the site serves static content")
		os.Exit(1)
	}

	var blockKeys []string
	for _, k := range strings.Split(*keys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			blockKeys = append(blockKeys, k)
		}
	}

	failed := 0
	for _, t := range content.Targets() {
		if *only != "" && string(t.Category) != *only {
			continue
		}

		q, err := svc.QueryFor(t.Category, t.Kind, blockKeys)
		if err != nil {
			report(os.Stdout, t, nil, err)
			failed++
			continue
		}

		res, err := svc.Probe(ctx, q)
		report(os.Stdout, t, res, err)
		if err != nil {
			failed++
		}
	}

	if failed > 0 {
		os.Exit(2)
	}
}

var (
	okColor   = color.New(color.FgGreen).SprintFunc()
	warnColor = color.New(color.FgYellow).SprintFunc()
	errColor  = color.New(color.FgRed).SprintFunc()
	dimColor  = color.New(color.Faint).SprintFunc()
)

func title(t content.Target) string {
	if t.Kind != "" {
		return string(t.Category) + "/" + string(t.Kind)
	}
	return string(t.Category)
}

func report(w io.Writer, t content.Target, res *content.Resolution, err error) {
	switch {
	case err != nil:
		fmt.Fprintf(w, "%-16s %s\n", title(t), errColor("FAIL "+err.Error()))
	case res != nil:
		fmt.Fprintf(w, "%-16s %s\n", title(t), okColor("OK   "+res.Source))
	}

	if res == nil {
		return
	}

	for _, a := range res.Attempts {
		order := "unordered"
		if a.Ordered {
			order = "ordered"
		}

		line := fmt.Sprintf("  %-24s %-10s %-22s rows=%d", a.Source, order, a.Outcome, a.Rows)
		switch a.Outcome {
		case content.OutcomeOK:
			fmt.Fprintln(w, okColor(line))
		case content.OutcomeMissingRelation, content.OutcomeMissingOrder:
			fmt.Fprintln(w, warnColor(line))
		default:
			fmt.Fprintln(w, errColor(line))
		}
		if a.Error != "" {
			fmt.Fprintln(w, dimColor("    "+a.Error))
		}
	}
}
