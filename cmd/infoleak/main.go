/*
* Information leakage estimation command
* Copyright (C) 2025  Artem Stefankiv
*
* This program is free software: you can redistribute it and/or modify
* it under the terms of the GNU General Public License as published by
* the Free Software Foundation, either version 3 of the License, or
* (at your option) any later version.
*
* This program is distributed in the hope that it will be useful,
* but WITHOUT ANY WARRANTY; without even the implied warranty of
* MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
* GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License
* along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gilah-EnE/infoleak/internal/analyzer"
	"github.com/Gilah-EnE/infoleak/internal/config"
	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/leakage"
	"github.com/Gilah-EnE/infoleak/internal/logging"
	"github.com/Gilah-EnE/infoleak/internal/metrics"
	"github.com/Gilah-EnE/infoleak/internal/modeler"
)

func main() {
	cfgPath := flag.String("config", "", "path to config yaml (defaults apply when empty or missing)")
	input := flag.String("input", "", "fingerprint table in CSV format (required)")
	labelColumn := flag.String("label", "site", "CSV column holding the site label")
	discrete := flag.String("discrete", "", "comma-separated features to treat as discrete")
	continuous := flag.String("continuous", "", "comma-separated features to treat as continuous")
	domainList := flag.String("domain", "", "comma-separated name=domain pairs, e.g. dir=discrete,time=c")
	output := flag.String("output", "", "write the JSON report here instead of stdout")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	top := flag.Int("top", 10, "number of features in the summary")
	flag.Parse()

	if *input == "" {
		log.Fatalf("input flag is required")
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	logger, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}

	domains, err := parseDomains(*discrete, *continuous, *domainList)
	if err != nil {
		log.Fatalf("domains: %v", err)
	}
	ds, err := readDataset(*input, *labelColumn, domains)
	if err != nil {
		log.Fatalf("read %s: %v", *input, err)
	}

	opts := []modeler.Option{modeler.WithLogger(logger)}
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		rec, err := metrics.NewRecorder(reg)
		if err != nil {
			log.Fatalf("metrics: %v", err)
		}
		opts = append(opts, modeler.WithMetrics(rec))
		serveMetrics(*metricsAddr, reg)
	}

	m, err := modeler.New(cfg, opts...)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	report, runErr := analyzer.New(m).Run(ctx, ds)
	logger.WithField("took", time.Since(start).String()).Infof("analysis ended in state %s", report.State)

	if err := writeReport(*output, report); err != nil {
		log.Fatalf("write report: %v", err)
	}
	printSummary(os.Stderr, report, *top)

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			log.Println("analysis interrupted; partial report written")
			os.Exit(130)
		}
		log.Fatalf("analysis: %v", runErr)
	}
}

func readDataset(path, labelColumn string, domains map[string]dataset.Domain) (*dataset.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			log.Println("close input:", err)
		}
	}(file)

	return readTable(file, labelColumn, domains)
}

// parseDomains merges the domain flags. Later pairs win over earlier ones.
func parseDomains(discrete, continuous, pairs string) (map[string]dataset.Domain, error) {
	domains := map[string]dataset.Domain{}
	for _, name := range splitList(discrete) {
		domains[name] = dataset.Discrete
	}
	for _, name := range splitList(continuous) {
		domains[name] = dataset.Continuous
	}
	for _, pair := range splitList(pairs) {
		name, kind, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("domain %q is not name=domain", pair)
		}
		d, err := dataset.ParseDomain(kind)
		if err != nil {
			return nil, err
		}
		domains[name] = d
	}
	return domains, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server: %v", err)
		}
	}()
}

func writeReport(path string, report *leakage.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printSummary(w io.Writer, report *leakage.Report, top int) {
	ranked := leakage.Rank(report.Features)
	if len(ranked) > top {
		ranked = ranked[:top]
	}
	fmt.Fprintf(w, "Most leaking features (%d estimated):\n", len(report.Features))
	for i, e := range ranked {
		interval := "no interval"
		if e.IntervalValid {
			interval = fmt.Sprintf("[%.3f, %.3f]", e.Lo, e.Hi)
		}
		fmt.Fprintf(w, "%3d. %-32s %.3f bits %s\n", i+1, e.Subject.String(), e.Bits, interval)
	}
	if final, ok := report.Greedy.Final(); ok {
		fmt.Fprintf(w, "Greedy combined leakage: %.3f bits from %s (%s)\n", final.Bits, final.Subject.String(), report.Greedy.StopReason)
		fmt.Fprintln(w, "Note:", report.Greedy.Approximation)
	}
}
