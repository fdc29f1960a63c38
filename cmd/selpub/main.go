package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Eyevinn/moqtracksel/internal"
)

const (
	appName          = "selpub"
	defaultNamespace = "moqlivemock"
)

var usg = `%s is a MoQ server publishing a directory of fMP4 files as a WARP catalog
with one track per file. Each track loops its fragments, one MoQ group per fragment.
It is the counterpart of selsub for trying out track selection.

Usage of %s:
`

type options struct {
	certFile    string
	keyFile     string
	addr        string
	namespace   string
	asset       string
	wvttLangs   string
	stppLangs   string
	mainLang    string
	forcedLangs string
	logLevel    string
	qlog        string
	version     bool
}

func parseOptions(fs *flag.FlagSet, args []string) (*options, error) {
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, usg, appName, appName)
		fmt.Fprintf(os.Stderr, "%s [options]\n\noptions:\n", appName)
		fs.PrintDefaults()
	}

	opts := options{}
	fs.StringVar(&opts.certFile, "cert", "localhost.pem", "TLS certificate file")
	fs.StringVar(&opts.keyFile, "key", "localhost-key.pem", "TLS key file")
	fs.StringVar(&opts.addr, "addr", "localhost:4443", "listen address")
	fs.StringVar(&opts.namespace, "namespace", defaultNamespace, "MoQ namespace to announce")
	fs.StringVar(&opts.asset, "asset", "content", "Directory of fMP4 files to serve")
	fs.StringVar(&opts.wvttLangs, "wvttlangs", "", "Comma-separated WebVTT subtitle languages to add to the catalog")
	fs.StringVar(&opts.stppLangs, "stpplangs", "", "Comma-separated STPP subtitle languages to add to the catalog")
	fs.StringVar(&opts.mainLang, "mainlang", "", "Audio language to mark as main in the catalog")
	fs.StringVar(&opts.forcedLangs, "forcedlangs", "", "Comma-separated subtitle languages to mark as forced in the catalog")
	fs.StringVar(&opts.logLevel, "loglevel", "info", "Log level: debug, info, warning, error")
	fs.StringVar(&opts.qlog, "qlog", "", "Write MoQ qlog to this file (- for stderr)")
	fs.BoolVar(&opts.version, "version", false, fmt.Sprintf("Get %s version", appName))
	err := fs.Parse(args[1:])
	return &opts, err
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

	tlsConfig, err := generateTLSConfigWithCertAndKey(opts.certFile, opts.keyFile)
	if err != nil {
		logger.Warn("failed to load TLS cert and key, generating in-memory certs", "error", err)
		tlsConfig, err = generateTLSConfig()
		if err != nil {
			return err
		}
	}

	asset, catalog, err := loadAsset(opts)
	if err != nil {
		return err
	}
	logger.Info("serving asset", "asset", asset.Name, "tracks", len(catalog.Tracks))

	qlogOut, closeQlog, err := openQlog(opts.qlog)
	if err != nil {
		return err
	}
	defer closeQlog()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	h := newMoqHandler(logger, opts.addr, tlsConfig, []string{opts.namespace}, asset, catalog, qlogOut)
	return h.runServer(ctx)
}

func loadAsset(opts *options) (*internal.Asset, *internal.Catalog, error) {
	asset, err := internal.LoadAsset(opts.asset)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load asset: %w", err)
	}
	if err := asset.AddSubtitleTracks(splitList(opts.wvttLangs), splitList(opts.stppLangs)); err != nil {
		return nil, nil, err
	}
	asset.MainLanguage = opts.mainLang
	asset.ForcedSubtitleLanguages = splitList(opts.forcedLangs)
	catalog, err := asset.GenCatalog(opts.namespace)
	if err != nil {
		return nil, nil, err
	}
	return asset, catalog, nil
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

func generateTLSConfigWithCertAndKey(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{"moq-00", "h3"},
	}, nil
}

// generateTLSConfig creates a self-signed certificate in memory.
func generateTLSConfig() (*tls.Config, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	template := x509.Certificate{SerialNumber: big.NewInt(1)}
	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})

	tlsCert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{tlsCert},
		NextProtos:   []string{"moq-00", "h3"},
	}, nil
}
