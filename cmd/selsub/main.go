package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mengelbart/moqtransport"
	"github.com/mengelbart/moqtransport/quicmoq"
	"github.com/mengelbart/moqtransport/webtransportmoq"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/webtransport-go"

	"github.com/Eyevinn/moqtracksel/internal"
)

const (
	appName          = "selsub"
	defaultNamespace = "moqlivemock"
)

var usg = `%s is a MoQ subscriber for WARP catalogs that chooses which tracks to play.
It subscribes to the catalog, selects one video, audio and text track according to the
preferences and subscribes to them. Sending SIGHUP re-reads the preferences file and
switches subscriptions if the selection changed.

With -catalog or -asset no connection is made: the selection for the given catalog is
printed as JSON.

Usage of %s:
`

type options struct {
	addr         string
	webtransport bool
	namespace    string
	catalog      string
	asset        string
	wvttLangs    string
	stppLangs    string
	mainLang     string
	forcedLangs  string
	prefs        string
	audioLang    string
	textLang     string
	maxSize      string
	viewport     string
	adaptive     bool
	logLevel     string
	qlog         string
	metrics      string
	duration     int
	outDir       string
	version      bool
}

func parseOptions(fs *flag.FlagSet, args []string) (*options, error) {
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, usg, appName, appName)
		fmt.Fprintf(os.Stderr, "%s [options]\n\noptions:\n", appName)
		fs.PrintDefaults()
	}

	opts := options{}
	fs.StringVar(&opts.addr, "addr", "localhost:4443", "connect address")
	fs.BoolVar(&opts.webtransport, "webtransport", false, "Use webtransport instead of QUIC")
	fs.StringVar(&opts.namespace, "namespace", defaultNamespace, "MoQ namespace of the catalog")
	fs.StringVar(&opts.catalog, "catalog", "", "Select from a catalog JSON file instead of connecting")
	fs.StringVar(&opts.asset, "asset", "", "Select from a directory of fMP4 files instead of connecting")
	fs.StringVar(&opts.wvttLangs, "wvttlangs", "", "Comma-separated WebVTT subtitle languages added to -asset")
	fs.StringVar(&opts.stppLangs, "stpplangs", "", "Comma-separated STPP subtitle languages added to -asset")
	fs.StringVar(&opts.mainLang, "mainlang", "", "Audio language marked as main in -asset")
	fs.StringVar(&opts.forcedLangs, "forcedlangs", "", "Comma-separated subtitle languages marked as forced in -asset")
	fs.StringVar(&opts.prefs, "prefs", "", "YAML preferences file, re-read on SIGHUP")
	fs.StringVar(&opts.audioLang, "audiolang", "", "Preferred audio language (overrides -prefs)")
	fs.StringVar(&opts.textLang, "textlang", "", "Preferred text language (overrides -prefs)")
	fs.StringVar(&opts.maxSize, "maxsize", "", "Max video size: unbounded, sd or WxH (overrides -prefs)")
	fs.StringVar(&opts.viewport, "viewport", "", "Display size used as viewport: unbounded or WxH (overrides -prefs)")
	fs.BoolVar(&opts.adaptive, "adaptive", true, "Allow adaptive video selections")
	fs.StringVar(&opts.logLevel, "loglevel", "info", "Log level: debug, info, warning, error")
	fs.StringVar(&opts.qlog, "qlog", "", "Write MoQ qlog to this file (- for stderr)")
	fs.StringVar(&opts.metrics, "metrics", "", "Serve Prometheus metrics on this address, e.g. :9090")
	fs.IntVar(&opts.duration, "duration", 0, "Duration of session in seconds (0 means unlimited)")
	fs.StringVar(&opts.outDir, "outdir", ".", "Directory for received tracks")
	fs.BoolVar(&opts.version, "version", false, fmt.Sprintf("Get %s version", appName))
	err := fs.Parse(args[1:])
	if err != nil {
		return &opts, err
	}
	if opts.catalog != "" && opts.asset != "" {
		return &opts, fmt.Errorf("-catalog and -asset are mutually exclusive")
	}
	return &opts, nil
}

func main() {
	if err := run(os.Args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	opts, err := parseOptions(fs, args)

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if opts.version {
		fmt.Fprintf(stdout, "%s %s\n", appName, internal.GetVersion())
		return nil
	}

	logger := internal.NewLogger(os.Stderr, opts.logLevel)
	slog.SetDefault(logger)

	eng, err := newEngine(opts, logger)
	if err != nil {
		return err
	}

	if opts.catalog != "" || opts.asset != "" {
		return runOffline(opts, eng, stdout)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if opts.duration > 0 {
		tctx, tcancel := context.WithTimeout(ctx, time.Duration(opts.duration)*time.Second)
		defer tcancel()
		ctx = tctx
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Fprintf(os.Stderr, "\nReceived signal, cancelling...\n")
		cancel()
	}()

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)

	if opts.metrics != "" {
		go func() {
			if err := serveMetrics(ctx, opts.metrics, logger); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	return runClient(ctx, opts, eng, reload)
}

func runClient(ctx context.Context, opts *options, eng *engine, reload <-chan os.Signal) error {
	qlogOut, closeQlog, err := openQlog(opts.qlog)
	if err != nil {
		return err
	}
	defer closeQlog()

	var conn moqtransport.Connection
	if opts.webtransport {
		conn, err = dialWebTransport(ctx, opts.addr)
	} else {
		conn, err = dialQUIC(ctx, opts.addr)
	}
	if err != nil {
		return fmt.Errorf("could not connect to %s: %w", opts.addr, err)
	}

	h := &moqHandler{
		namespace: []string{opts.namespace},
		outDir:    opts.outDir,
		engine:    eng,
		logger:    eng.logger,
	}
	return h.run(ctx, conn, qlogOut, reload)
}

// openQlog returns the qlog destination, nil if qlog is disabled.
func openQlog(path string) (io.Writer, func(), error) {
	switch path {
	case "":
		return nil, func() {}, nil
	case "-":
		return os.Stderr, func() {}, nil
	}
	fh, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create qlog file: %w", err)
	}
	return fh, func() { fh.Close() }, nil
}

func dialQUIC(ctx context.Context, addr string) (moqtransport.Connection, error) {
	conn, err := quic.DialAddr(ctx, addr, &tls.Config{
		InsecureSkipVerify: true,
		NextProtos:         []string{"moq-00"},
	}, &quic.Config{
		EnableDatagrams: true,
	})
	if err != nil {
		return nil, err
	}
	return quicmoq.NewClient(conn), nil
}

func dialWebTransport(ctx context.Context, addr string) (moqtransport.Connection, error) {
	dialer := webtransport.Dialer{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
		},
	}
	_, session, err := dialer.Dial(ctx, addr, nil)
	if err != nil {
		return nil, err
	}
	return webtransportmoq.NewClient(session), nil
}
