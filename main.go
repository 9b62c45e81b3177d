package main

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goware/urlx"
	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Target struct {
		URL string `long:"url" description:"base URL of the demo API to generate traffic against" default:"http://localhost:8001"`
	} `group:"Target Options" yaml:"target"`
	Quantity struct {
		Count int           `long:"count" description:"total number of top-level iterations to run" default:"100"`
		Delay time.Duration `long:"delay" description:"base delay between iterations, as a duration with units (100ms, 0.5s); actual delay is drawn from [0.5x, 1.5x]" default:"100ms"`
	} `group:"Quantity Options" yaml:"quantity"`
	Mix struct {
		Standard     float64 `long:"standard" description:"weight of plain requests against the safe endpoint set" default:"0.35"`
		Error        float64 `long:"error" description:"weight of requests against the error-prone endpoint set" default:"0.35"`
		Slow         float64 `long:"slow" description:"weight of requests against the latency-injecting endpoint" default:"0.15"`
		Trace        float64 `long:"trace" description:"weight of multi-request trace chains" default:"0.10"`
		Burst        float64 `long:"burst" description:"weight of concurrent burst groups" default:"0.05"`
		Continuation float64 `long:"continuation" description:"chance per iteration of revisiting a previously seen root identifier" default:"0.15"`
	} `group:"Traffic Mix Options" yaml:"mix"`
	Global struct {
		LogLevel string `long:"loglevel" description:"level of logging" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"warn" yaml:"loglevel"`
		Seed     string `long:"seed" description:"string seed for the random number generator; a fixed seed reproduces a run exactly" yaml:",omitempty"`
		Config   string `long:"config" description:"name of config file to load(*)" default:"" yaml:"-"`
		WriteCfg string `long:"writecfg" description:"write effective YAML config to the specified output file and quit(*)" default:"" yaml:"-"`
	} `group:"Global Options" yaml:"global"`
	target *url.URL
}

func newOptions() *Options {
	return &Options{}
}

func (o *Options) CopyStarredFieldsFrom(other *Options) {
	o.Global.Config = other.Global.Config
	o.Global.WriteCfg = other.Global.WriteCfg
}

func (o *Options) DebugLevel() int {
	switch o.Global.LogLevel {
	case "debug":
		return 3
	case "info":
		return 2
	case "warn":
		return 1
	case "error":
		return 0
	default:
		return 0
	}
}

func (o *Options) Weights() Weights {
	return Weights{
		Standard: o.Mix.Standard,
		Error:    o.Mix.Error,
		Slow:     o.Mix.Slow,
		Trace:    o.Mix.Trace,
		Burst:    o.Mix.Burst,
	}
}

// Validate rejects configurations the run loop cannot recover from.
func (o *Options) Validate() error {
	if o.Quantity.Count <= 0 {
		return fmt.Errorf("count must be positive, got %d", o.Quantity.Count)
	}
	if o.Quantity.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %s", o.Quantity.Delay)
	}
	if o.Mix.Continuation < 0 || o.Mix.Continuation > 1 {
		return fmt.Errorf("continuation must be in [0,1], got %v", o.Mix.Continuation)
	}
	return o.Weights().Validate()
}

// parseTarget cleans up the target URL so bare hostnames and schemeless
// strings still work. Exits if it can't make sense of it.
func parseTarget(log Logger, target string) *url.URL {
	u, err := urlx.ParseWithDefaultScheme(target, "http")
	if err != nil {
		log.Fatal("unable to parse target url: %s\n", err)
	}
	if u.Port() == "" {
		u.Host = fmt.Sprintf("%s:8001", u.Host) // the demo API's default port
	}
	return u
}

func ReadConfig(opts *Options, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	err = dec.Decode(opts)
	if err != nil {
		return err
	}
	log.Printf("read config from %s\n", filename)
	return nil
}

func WriteConfig(opts *Options, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	err = enc.Encode(opts)
	if err != nil {
		return err
	}
	log.Printf("wrote config to %s\n", filename)
	return nil
}

func main() {
	cmdopts := newOptions()

	parser := flags.NewParser(cmdopts, flags.Default)
	parser.Usage = `[OPTIONS]

	trafficgen fires randomized HTTP traffic at a demo API to populate an
	observability stack with realistic sample data. Each iteration picks one
	of five weighted scenarios -- standard, error, slow, trace, burst -- and
	issues the corresponding request(s), every one tagged with a correlation
	identifier. Trace iterations follow a primary request with 1-4 correlated
	children; burst iterations fire 5-10 requests concurrently under a shared
	group identifier. 15% of iterations additionally revisit a previously
	seen root identifier to simulate a returning user.

	One line is written to stdout per attempted request, plus a summary line
	at the end; diagnostics go to stderr. With a fixed --seed, two runs with
	the same parameters make identical scenario choices and parameter draws.

	Options can be set in a config file, or on the command line; to specify
	them in the config file, specify it on the command line with
	"--config=FILENAME". The config file format is YAML. If a config file is
	used, it MUST be used for all options, except for the ones marked in the
	help text with (*) -- these fields CANNOT be set in the config file.
	`

	_, err := parser.Parse()
	if err != nil {
		switch flagsErr := err.(type) {
		case *flags.Error:
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		log.Fatalf("error reading command line: %v", err)
	}

	opts := newOptions()
	if cmdopts.Global.Config != "" {
		if err := ReadConfig(opts, cmdopts.Global.Config); err != nil {
			log.Fatalf("err %v -- unable to read config file %s", err, cmdopts.Global.Config)
		}
		opts.CopyStarredFieldsFrom(cmdopts)
	} else {
		opts = cmdopts // we don't have to read from a file
	}

	if opts.Global.WriteCfg != "" {
		err := WriteConfig(opts, opts.Global.WriteCfg)
		if err != nil {
			log.Fatalf("unable to write config: %s\n", err)
		}
		os.Exit(0)
	}

	if opts.Global.Seed == "" {
		opts.Global.Seed = "trafficgen"
	}

	logg := NewLogger(opts.DebugLevel())

	if err := opts.Validate(); err != nil {
		logg.Fatal("invalid configuration: %s\n", err)
	}

	opts.target = parseTarget(logg, opts.Target.URL)
	baseURL := strings.TrimRight(opts.target.String(), "/")

	logg.Info("target: %s, count: %d, base delay: %s, seed: %q\n",
		baseURL, opts.Quantity.Count, opts.Quantity.Delay, opts.Global.Seed)

	rng := NewRng(opts.Global.Seed)
	reporter := NewPrintReporter(os.Stdout)
	dispatcher := NewDispatcher(baseURL, rng, logg, reporter)
	pacer := NewPacer(opts.Quantity.Delay, rng)
	runner := NewRunner(opts.Quantity.Count, opts.Weights(), opts.Mix.Continuation, rng, dispatcher, pacer, reporter, logg)

	// create a stop channel so we can shut down gracefully on ctrl-c
	stop := make(chan struct{})
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigch
		logg.Warn("\nshutting down from operating system signal\n")
		close(stop)
	}()

	runner.Run(stop)
}
