// Command cutplan plans pipe cuts from the command line and optionally writes
// Excel and PDF reports.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/pipe-cutter/internal/cutting"
	"github.com/eugenenazirov/pipe-cutter/internal/export"
	"github.com/eugenenazirov/pipe-cutter/internal/input"
	"github.com/eugenenazirov/pipe-cutter/internal/logging"
	"github.com/eugenenazirov/pipe-cutter/internal/planner"
	"github.com/eugenenazirov/pipe-cutter/internal/storage"
)

type options struct {
	stock    float64
	cuts     string
	file     string
	policy   string
	xlsx     string
	pdf      string
	logLevel string
	maxCuts  int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "cutplan: %v\n", err)
		return 2
	}

	logger, err := logging.New(opts.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "cutplan: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	if err := execute(opts, stdout, logger); err != nil {
		fmt.Fprintf(stderr, "cutplan: %v\n", err)
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options
	app := kingpin.New("cutplan", "Plan pipe cuts onto stock bars").UsageWriter(stderr).ErrorWriter(stderr)
	app.Flag("stock", "Stock bar length").Default(fmt.Sprint(storage.DefaultStockLength)).Float64Var(&opts.stock)
	app.Flag("cuts", "Requested lengths, separated by commas, semicolons or spaces").StringVar(&opts.cuts)
	app.Flag("file", "CSV, TXT or XLSX file listing requested lengths").ExistingFileVar(&opts.file)
	app.Flag("policy", "Packing policy (best-fit or first-fit)").Default(string(cutting.DefaultPolicy)).StringVar(&opts.policy)
	app.Flag("xlsx", "Write an Excel summary to this path").StringVar(&opts.xlsx)
	app.Flag("pdf", "Write a PDF cutting diagram to this path").StringVar(&opts.pdf)
	app.Flag("max-cuts", "Maximum number of cuts in one batch after splitting").Default(strconv.Itoa(planner.DefaultMaxCuts)).IntVar(&opts.maxCuts)
	app.Flag("log-level", "Log level for diagnostics written to stderr").Default("warn").StringVar(&opts.logLevel)

	if _, err := app.Parse(args); err != nil {
		return options{}, err
	}
	if opts.maxCuts <= 0 {
		return options{}, fmt.Errorf("--max-cuts must be positive, got %d", opts.maxCuts)
	}
	return opts, nil
}

func execute(opts options, stdout io.Writer, logger *zap.Logger) error {
	requests, err := collectRequests(opts)
	if err != nil {
		return err
	}

	policy, err := cutting.ParsePolicy(opts.policy)
	if err != nil {
		return err
	}

	if err := planner.CheckLimit(requests, opts.stock, opts.maxCuts); err != nil {
		return err
	}

	plan, err := cutting.New().Optimize(opts.stock, requests, policy)
	if err != nil {
		return err
	}
	logger.Debug("plan computed",
		zap.Int("requests", len(requests)),
		zap.Int("bars", plan.BarCount()),
		zap.Float64("total_waste", plan.TotalWaste),
	)

	if err := export.WriteTable(stdout, plan); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	if opts.xlsx != "" {
		if err := writeFile(opts.xlsx, plan, export.WriteExcel); err != nil {
			return err
		}
		logger.Info("excel report written", zap.String("path", opts.xlsx))
	}
	if opts.pdf != "" {
		if err := writeFile(opts.pdf, plan, export.WritePDF); err != nil {
			return err
		}
		logger.Info("pdf report written", zap.String("path", opts.pdf))
	}
	return nil
}

func collectRequests(opts options) ([]float64, error) {
	var requests []float64
	if strings.TrimSpace(opts.cuts) != "" {
		parsed, err := input.ParseList(opts.cuts, opts.maxCuts)
		if err != nil {
			return nil, err
		}
		requests = append(requests, parsed...)
	}

	if opts.file != "" {
		f, err := os.Open(opts.file)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()

		parsed, err := input.Parse(filepath.Base(opts.file), f, opts.maxCuts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opts.file, err)
		}
		requests = append(requests, parsed...)
	}

	if len(requests) == 0 {
		return nil, input.ErrNoCuts
	}
	return requests, nil
}

func writeFile(path string, plan cutting.Plan, write func(io.Writer, cutting.Plan) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := write(f, plan); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
