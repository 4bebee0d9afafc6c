package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"phishguard/ai"
	"phishguard/classifier"
	"phishguard/config"
	"phishguard/detect"
	"phishguard/features"
	"phishguard/logging"
	"phishguard/policy"
	"phishguard/probes"
)

// buildDetector wires probes, model, policy and narrator from flags and cfg.
// A missing model is logged, not fatal: the detector reports it per request.
func buildDetector(c *cli.Context, cfg config.Config, logger *slog.Logger) (*detect.Detector, error) {
	set := probes.NewSet(probes.Options{
		Timeout:    c.Duration("probe-timeout"),
		Sequential: c.Bool("sequential"),
		DNSServer:  c.String("dns-server"),
		MaxBody:    cfg.Probes.MaxBody,
		Logger:     logger,
	})

	format, err := classifier.ParseFormat(c.String("model-format"))
	if err != nil {
		return nil, err
	}
	model, err := classifier.Load(classifier.Config{
		Path:     c.String("model"),
		Format:   format,
		Features: features.NumModelFeatures,
		ONNXLib:  c.String("onnx-lib"),
	})
	if err != nil {
		logger.Error("model not loaded", "path", c.String("model"), "error", err)
		model = nil
	} else {
		logger.Info("model loaded", "path", c.String("model"), "backend", model.Name(), "features", model.NumFeatures())
	}

	var pf *policy.Prefilter
	if path := c.String("policy"); path != "" {
		pf, err = policy.LoadFile(path)
		if err != nil {
			return nil, err
		}
		allow, deny := pf.Len()
		logger.Info("policy loaded", "path", path, "allow", allow, "deny", deny)
	}

	var narrator detect.Narrator
	if client, err := ai.NewGeminiClient(cfg.Narrator.APIKey, cfg.Narrator.Model); err == nil {
		narrator = ai.NewNarrator(client)
	} else {
		logger.Debug("narration disabled", "reason", err)
	}

	return detect.New(detect.Config{
		Aggregator: features.NewAggregator(set, logger),
		Model:      model,
		Prefilter:  pf,
		Narrator:   narrator,
		Logger:     logger,
	}), nil
}

func serveAction(c *cli.Context, cfg config.Config) error {
	logger := logging.Init(true, logging.ParseLevel(c.String("log-level")))

	d, err := buildDetector(c, cfg, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	detect.NewHandler(d, logger).Register(mux)

	srv := &http.Server{
		Addr:              ":" + c.String("port"),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("phishguard listening", "addr", srv.Addr,
			"endpoints", []string{"POST /predict", "GET /network/info", "GET /healthz"})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func checkAction(c *cli.Context, cfg config.Config) error {
	logger := logging.Init(false, logging.ParseLevel(c.String("log-level")))
	if c.NArg() == 0 {
		return errors.New("at least one URL is required")
	}

	d, err := buildDetector(c, cfg, logger)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	opts := detect.Options{Basic: c.Bool("basic"), Narrate: c.Bool("explain")}

	var failed int
	for _, url := range c.Args().Slice() {
		report, err := d.Analyze(c.Context, url, opts)
		if err != nil {
			failed++
			logger.Error("analysis failed", "url", url, "error", err)
			continue
		}
		if err := enc.Encode(report); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d URLs could not be analysed", failed, c.NArg())
	}
	return nil
}

func featuresAction(c *cli.Context, cfg config.Config) error {
	logger := logging.Init(false, logging.ParseLevel(c.String("log-level")))
	if c.NArg() != 1 {
		return errors.New("exactly one URL is required")
	}

	set := probes.NewSet(probes.Options{
		Timeout:    c.Duration("probe-timeout"),
		Sequential: c.Bool("sequential"),
		DNSServer:  c.String("dns-server"),
		MaxBody:    cfg.Probes.MaxBody,
		Logger:     logger,
	})
	d := detect.New(detect.Config{
		Aggregator: features.NewAggregator(set, logger),
		Logger:     logger,
	})

	ex, err := d.Extract(c.Context, c.Args().First(), c.Bool("basic"))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(ex)
}
