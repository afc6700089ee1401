// Command kite-advisor drives the Kite MCP advisory flow from the
// terminal: connect, print the login URL, verify the pasted callback URL,
// and fetch an investment recommendation. The -offline flag skips the
// remote side and runs only the local portfolio calculator.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Jaysankar7991/kite-advisor-go/pkg/advisor"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/client"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/logging"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/observability"
	"github.com/Jaysankar7991/kite-advisor-go/pkg/transport"
)

const version = "1.0.0"

type options struct {
	endpoint    string
	age         int
	amount      float64
	plan        string
	risk        string
	offline     bool
	metricsAddr string
	otlpTarget  string
	jsonLogs    bool
	verbose     bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	flag.StringVar(&opts.endpoint, "endpoint", transport.DefaultEndpoint, "Kite MCP endpoint")
	flag.IntVar(&opts.age, "age", 30, "investor age in years")
	flag.Float64Var(&opts.amount, "amount", 100000, "investment amount in rupees (monthly for SIP)")
	flag.StringVar(&opts.plan, "plan", "SIP", "investment plan: SIP, Lumpsum, or SWP")
	flag.StringVar(&opts.risk, "risk", "medium", "risk tolerance: low, medium, or high")
	flag.BoolVar(&opts.offline, "offline", false, "run only the local calculator, no network")
	flag.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (empty: disabled)")
	flag.StringVar(&opts.otlpTarget, "otlp-endpoint", "", "OTLP gRPC trace collector (empty: tracing disabled)")
	flag.BoolVar(&opts.jsonLogs, "log-json", false, "emit logs as JSON")
	flag.BoolVar(&opts.verbose, "v", false, "enable debug logging")
	flag.Parse()

	logger := newLogger(opts)

	plan, err := advisor.ParsePlanType(opts.plan)
	if err != nil {
		return err
	}
	risk, err := advisor.ParseRiskLevel(opts.risk)
	if err != nil {
		return err
	}

	if err := printLocalPlan(opts.age, opts.amount, plan, risk); err != nil {
		return err
	}
	if opts.offline {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	metrics, err := observability.NewMetrics(observability.MetricsConfig{})
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	tracing, err := observability.NewTracingProvider(observability.TracingConfig{
		ServiceName:    "kite-advisor",
		ServiceVersion: version,
		ExporterType:   exporterType(opts.otlpTarget),
		Endpoint:       opts.otlpTarget,
		Insecure:       true,
	})
	if err != nil {
		return fmt.Errorf("create tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("trace exporter shutdown failed")
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	if opts.metricsAddr != "" {
		srv := &http.Server{Addr: opts.metricsAddr, Handler: metricsMux(metrics)}
		g.Go(func() error {
			logger.Info("serving metrics", logging.String("addr", opts.metricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer stop() // workflow done, release the metrics server
		return adviseFlow(ctx, opts, plan, risk, logger, metrics, tracing)
	})

	return g.Wait()
}

// adviseFlow runs the remote advisory session end to end.
func adviseFlow(ctx context.Context, opts options, plan advisor.PlanType, risk advisor.RiskLevel,
	logger logging.Logger, metrics *observability.Metrics, tracing *observability.TracingProvider) error {

	config := client.DefaultConfig()
	config.Transport.Endpoint = opts.endpoint
	config.Transport.EnableObservability = true
	config.Transport.Observability.Tracing = tracing
	config.Logger = logger
	config.Metrics = metrics

	return client.WithSession(config, func(c *client.Client) error {
		if init := c.Initialize(ctx); !init.Success {
			return errors.New(init.Err)
		}

		login := c.RequestLogin(ctx)
		if !login.Success {
			return fmt.Errorf("login request failed: %s", login.Err)
		}
		fmt.Println("Login here:", login.LoginURL)
		fmt.Print("Paste the callback URL after logging in: ")

		callback, err := readLine(ctx)
		if err != nil {
			return err
		}
		if _, err := c.HandleCallback(callback); err != nil {
			return fmt.Errorf("verify callback: %w", err)
		}
		fmt.Println("Authenticated, session id:", c.SessionID())

		res := c.GetAdvice(ctx, client.AdviceRequest{
			Age:       opts.age,
			Amount:    opts.amount,
			PlanType:  string(plan),
			RiskLevel: string(risk),
		})
		if !res.Success {
			return fmt.Errorf("advice request failed: %s", res.Err)
		}
		if text, ok := res.AdviceText(); ok {
			fmt.Println("\nKite recommendation:")
			fmt.Println(text)
		} else {
			fmt.Println("\nKite recommendation (raw):")
			fmt.Println(string(res.Data))
		}
		return nil
	})
}

// printLocalPlan renders the offline calculator's view of the profile.
func printLocalPlan(age int, amount float64, plan advisor.PlanType, risk advisor.RiskLevel) error {
	calc := advisor.NewCalculator()
	alloc, err := calc.Allocate(age, plan, risk)
	if err != nil {
		return err
	}
	proj := calc.Project(amount, alloc.ExpectedReturn, plan)
	rec := calc.RecommendFunds(alloc, plan)

	p := message.NewPrinter(language.English)
	p.Printf("Portfolio for age %d, ₹%.0f, %s, %s risk\n", age, amount, plan, risk)
	p.Printf("  Allocation: %.1f%% equity / %.1f%% debt / %.1f%% gold\n",
		alloc.EquityPercent, alloc.DebtPercent, alloc.GoldPercent)
	p.Printf("  Expected return: %.1f%% (%.1f%% real)  Profile: %s\n",
		alloc.ExpectedReturn, alloc.RealReturn, alloc.RiskScore)
	p.Printf("  Projections: 5y ₹%.0f  10y ₹%.0f  15y ₹%.0f  20y ₹%.0f\n",
		proj.Year5, proj.Year10, proj.Year15, proj.Year20)

	printFunds := func(label string, funds []string) {
		if len(funds) == 0 {
			return
		}
		fmt.Printf("  %s funds:\n", label)
		for _, f := range funds {
			fmt.Printf("    - %s\n", f)
		}
	}
	printFunds("Equity", rec.EquityFunds)
	printFunds("Debt", rec.DebtFunds)
	printFunds("Gold", rec.GoldFunds)
	return nil
}

func newLogger(opts options) logging.Logger {
	var formatter logging.Formatter
	if opts.jsonLogs {
		formatter = logging.NewJSONFormatter()
	} else {
		formatter = logging.NewTextFormatter()
	}
	logger := logging.New(os.Stderr, formatter)
	if opts.verbose {
		logger.SetLevel(logging.DebugLevel)
	}
	return logger
}

func exporterType(otlpTarget string) observability.ExporterType {
	if otlpTarget == "" {
		return observability.ExporterTypeNoop
	}
	return observability.ExporterTypeOTLPGRPC
}

func metricsMux(metrics *observability.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// readLine reads one line from stdin without blocking shutdown.
func readLine(ctx context.Context) (string, error) {
	type lineResult struct {
		line string
		err  error
	}
	ch := make(chan lineResult, 1)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		ch <- lineResult{strings.TrimSpace(line), err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.err != nil && res.line == "" {
			return "", res.err
		}
		return res.line, nil
	}
}
