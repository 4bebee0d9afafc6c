package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"phishguard/config"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	app := &cli.App{
		Name:  "phishguard",
		Usage: "classify URLs as phishing or legitimate from lexical and network signals",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: cfg.LogLevel, Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "model", Value: cfg.Model.Path, Usage: "path to the trained model"},
			&cli.StringFlag{Name: "model-format", Value: cfg.Model.Format, Usage: "xgboost or onnx"},
			&cli.StringFlag{Name: "onnx-lib", Value: cfg.Model.ONNXLib, Usage: "ONNX Runtime shared library"},
			&cli.StringFlag{Name: "policy", Value: cfg.Policy.Path, Usage: "YAML allow/deny list"},
			&cli.DurationFlag{Name: "probe-timeout", Value: cfg.Probes.Timeout, Usage: "per-probe network timeout"},
			&cli.BoolFlag{Name: "sequential", Value: cfg.Probes.Sequential, Usage: "run network probes one at a time"},
			&cli.StringFlag{Name: "dns-server", Value: cfg.Probes.DNSServer, Usage: "resolver host:port (default: system)"},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "port", Value: cfg.Server.Port},
				},
				Action: func(c *cli.Context) error { return serveAction(c, cfg) },
			},
			{
				Name:      "check",
				Usage:     "classify one or more URLs and print JSON reports",
				ArgsUsage: "URL...",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "basic", Usage: "skip network probes"},
					&cli.BoolFlag{Name: "explain", Usage: "add an LLM narrative (needs GEMINI_API_KEY)"},
				},
				Action: func(c *cli.Context) error { return checkAction(c, cfg) },
			},
			{
				Name:      "features",
				Usage:     "print the model row and display features for a URL",
				ArgsUsage: "URL",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "basic", Usage: "lexical features only"},
				},
				Action: func(c *cli.Context) error { return featuresAction(c, cfg) },
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
