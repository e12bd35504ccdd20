/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main runs a workflow declared in a blueprint.
//
//	agentflow [-stream] [-env .env] <blueprint.yaml> <workflow> <input...>
//
// Vendor credentials come from the environment (see provider.Config) and
// from the optional dotenv file. The step results are printed as a table.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chainguard.dev/agentflow/agents/agentzero"
	"chainguard.dev/agentflow/agents/blueprint"
	"chainguard.dev/agentflow/agents/container"
	"chainguard.dev/agentflow/agents/metrics"
	"chainguard.dev/agentflow/agents/model"
	"chainguard.dev/agentflow/agents/provider"
	"chainguard.dev/agentflow/agents/workflow"
	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"
)

type config struct {
	// Comma separated glob patterns; empty allows every image.
	AllowedImages []string `env:"AGENTFLOW_ALLOWED_IMAGES"`
	DockerBinary  string   `env:"AGENTFLOW_DOCKER,default=docker"`
	MaxSteps      int      `env:"AGENTFLOW_MAX_STEPS,default=64"`
	// Serve Prometheus metrics on this port while running; 0 disables.
	MetricsPort int `env:"METRICS_PORT,default=0"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, nil); err != nil {
		clog.FatalContextf(ctx, "agentflow: %v", err)
	}
}

// run executes the command line. A nil factory builds adapters from the
// environment.
func run(ctx context.Context, args []string, stdout io.Writer, factory provider.Factory) error {
	fs := flag.NewFlagSet("agentflow", flag.ContinueOnError)
	stream := fs.Bool("stream", false, "stream step answers as they are generated")
	envFile := fs.String("env", ".env", "dotenv file to load before reading the environment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 3 {
		return errors.New("usage: agentflow [-stream] [-env file] <blueprint.yaml> <workflow> <input...>")
	}
	path, name, input := fs.Arg(0), fs.Arg(1), strings.Join(fs.Args()[2:], " ")

	if err := provider.LoadDotEnv(*envFile); err != nil {
		return err
	}
	pcfg, err := provider.LoadConfig(ctx)
	if err != nil {
		return err
	}
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}
	if factory == nil {
		factory = pcfg.Factory()
	}

	if cfg.MetricsPort > 0 {
		stop := serveMetrics(ctx, cfg.MetricsPort)
		defer stop()
	}

	docker, err := container.NewDocker(
		container.WithBinary(cfg.DockerBinary),
		container.WithAllowedImages(cfg.AllowedImages...),
	)
	if err != nil {
		return err
	}

	z, err := agentzero.New(
		agentzero.WithMaxDepth(pcfg.MaxDepth),
		agentzero.WithMaxSteps(cfg.MaxSteps),
		agentzero.WithMetrics(metrics.New()),
	)
	if err != nil {
		return err
	}
	applied, err := z.LoadBlueprint(ctx, path, factory, blueprint.WithRuntime(docker))
	if err != nil {
		return err
	}
	defer applied.Close()

	var results workflow.Results
	if *stream {
		results, err = z.StreamWorkflow(ctx, name, model.Text(input), workflow.Callbacks{
			OnStep: func(si workflow.StepInfo) {
				fmt.Fprintf(stdout, "\n== %s (%s)\n", si.Name, si.Agent)
			},
			OnChunk: func(_ string, c model.Chunk) {
				fmt.Fprint(stdout, c.Content)
			},
		})
		fmt.Fprintln(stdout)
	} else {
		results, err = z.RunWorkflow(ctx, name, model.Text(input))
	}
	if len(results) > 0 {
		if rerr := workflow.WriteReport(stdout, results); rerr != nil {
			return errors.Join(err, rerr)
		}
	}
	if err != nil {
		return err
	}
	if final, ok := results.Final(); ok && !*stream {
		fmt.Fprintf(stdout, "\n%s\n", final.Content)
	}
	return nil
}

func serveMetrics(ctx context.Context, port int) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			clog.FromContext(ctx).With("error", err).Error("Metrics server failed")
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
