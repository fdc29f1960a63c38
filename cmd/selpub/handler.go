package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/mengelbart/moqtransport"
	"github.com/mengelbart/moqtransport/quicmoq"
	"github.com/mengelbart/moqtransport/webtransportmoq"
	"github.com/mengelbart/qlog"
	"github.com/mengelbart/qlog/moqt"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"github.com/quic-go/webtransport-go"

	"github.com/Eyevinn/moqtracksel/internal"
)

const catalogTrack = "catalog"

type moqHandler struct {
	logger        *slog.Logger
	addr          string
	tlsConfig     *tls.Config
	namespace     []string
	asset         *internal.Asset
	catalog       *internal.Catalog
	qlogOut       io.Writer
	nextSessionID atomic.Uint64

	// ctx is the server context, publishing stops when it is done.
	ctx context.Context

	mu         sync.Mutex
	closing    bool
	publishers sync.WaitGroup
}

func newMoqHandler(logger *slog.Logger, addr string, tlsConfig *tls.Config, namespace []string,
	asset *internal.Asset, catalog *internal.Catalog, qlogOut io.Writer) *moqHandler {
	return &moqHandler{
		logger:    logger,
		addr:      addr,
		tlsConfig: tlsConfig,
		namespace: namespace,
		asset:     asset,
		catalog:   catalog,
		qlogOut:   qlogOut,
		ctx:       context.Background(),
	}
}

// runServer accepts QUIC and WebTransport connections until ctx is done.
func (h *moqHandler) runServer(ctx context.Context) error {
	h.ctx = ctx
	defer h.stopPublishers()

	listener, err := quic.ListenAddr(h.addr, h.tlsConfig, &quic.Config{
		EnableDatagrams: true,
	})
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	wt := webtransport.Server{
		H3: http3.Server{
			Addr:      h.addr,
			TLSConfig: h.tlsConfig,
			Handler:   mux,
		},
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	mux.HandleFunc("/moq", func(w http.ResponseWriter, r *http.Request) {
		session, err := wt.Upgrade(w, r)
		if err != nil {
			h.logger.Error("upgrading to webtransport failed", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		h.handle(webtransportmoq.NewServer(session))
	})
	go func() {
		<-ctx.Done()
		listener.Close()
		wt.Close()
	}()
	h.logger.Info("listening", "addr", h.addr, "namespace", h.namespace)
	for {
		conn, err := listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		switch conn.ConnectionState().TLS.NegotiatedProtocol {
		case "h3":
			go func() {
				if err := wt.ServeQUICConn(conn); err != nil {
					h.logger.Error("failed to serve QUIC connection", "error", err)
				}
			}()
		case "moq-00":
			go h.handle(quicmoq.NewServer(conn))
		}
	}
}

func (h *moqHandler) handle(conn moqtransport.Connection) {
	id := h.nextSessionID.Add(1)
	session := &moqtransport.Session{
		Handler:             h.getHandler(id),
		SubscribeHandler:    h.getSubscribeHandler(id),
		InitialMaxRequestID: 100,
	}
	if h.qlogOut != nil {
		session.Qlogger = qlog.NewQLOGHandler(h.qlogOut, "MoQ QLOG", "MoQ QLOG",
			conn.Perspective().String(), moqt.Schema)
	}
	if err := session.Run(conn); err != nil {
		h.logger.Error("MoQ Session initialization failed", "sessionID", id, "error", err)
		if err := conn.CloseWithError(0, "session initialization error"); err != nil {
			h.logger.Error("failed to close connection", "sessionID", id, "error", err)
		}
		return
	}
	if err := session.Announce(h.ctx, h.namespace); err != nil {
		h.logger.Error("failed to announce namespace", "sessionID", id, "namespace", h.namespace, "error", err)
	}
}

func (h *moqHandler) getHandler(sessionID uint64) moqtransport.Handler {
	return moqtransport.HandlerFunc(func(w moqtransport.ResponseWriter, r *moqtransport.Message) {
		switch r.Method {
		case moqtransport.MessageAnnounce:
			h.logger.Warn("got unexpected announcement", "sessionID", sessionID, "namespace", r.Namespace)
			if err := w.Reject(0, fmt.Sprintf("%s doesn't take announcements", appName)); err != nil {
				h.logger.Error("failed to reject announcement", "sessionID", sessionID, "error", err)
			}
		}
	})
}

func (h *moqHandler) getSubscribeHandler(sessionID uint64) moqtransport.SubscribeHandler {
	return moqtransport.SubscribeHandlerFunc(func(
		w *moqtransport.SubscribeResponseWriter,
		m *moqtransport.SubscribeMessage,
	) {
		logger := h.logger.With("sessionID", sessionID, "requestID", m.RequestID, "track", m.Track)
		if !tupleEqual(m.Namespace, h.namespace) {
			logger.Warn("got unexpected subscription namespace", "received", m.Namespace, "expected", h.namespace)
			if err := w.Reject(moqtransport.ErrorCodeSubscribeTrackDoesNotExist, "unknown namespace"); err != nil {
				logger.Error("failed to reject subscription", "error", err)
			}
			return
		}
		if m.Track == catalogTrack {
			if err := h.serveCatalog(w); err != nil {
				logger.Error("failed to serve catalog", "error", err)
			}
			return
		}
		ct := h.asset.GetTrackByName(m.Track)
		if ct == nil {
			logger.Warn("subscription to unknown track")
			if err := w.Reject(moqtransport.ErrorCodeSubscribeTrackDoesNotExist, "track not found: "+m.Track); err != nil {
				logger.Error("failed to reject subscription", "error", err)
			}
			return
		}
		if h.ctx.Err() != nil {
			if err := w.Reject(0, "server shutting down"); err != nil {
				logger.Error("failed to reject subscription", "error", err)
			}
			return
		}
		if err := w.Accept(); err != nil {
			logger.Error("failed to accept subscription", "error", err)
			return
		}
		logger.Info("subscription accepted", "fragments", len(ct.Fragments))
		started := h.startPublisher(func() {
			err := publishFragments(h.ctx, ct.Fragments, subgroupWriter(w), logger)
			if err != nil {
				logger.Info("publishing stopped, subscriber may have gone", "error", err)
			}
		})
		if !started {
			logger.Info("server shutting down, not publishing")
		}
	})
}

// startPublisher runs publish in a tracked goroutine. It returns false once
// stopPublishers has been called.
func (h *moqHandler) startPublisher(publish func()) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.publishers.Add(1)
	go func() {
		defer h.publishers.Done()
		publish()
	}()
	return true
}

// stopPublishers refuses new publishers and waits for the running ones.
func (h *moqHandler) stopPublishers() {
	h.mu.Lock()
	h.closing = true
	h.mu.Unlock()
	h.publishers.Wait()
}

// serveCatalog sends the catalog as object 0 of group 0.
func (h *moqHandler) serveCatalog(w *moqtransport.SubscribeResponseWriter) error {
	if err := w.Accept(); err != nil {
		return fmt.Errorf("failed to accept catalog subscription: %w", err)
	}
	catalogJSON, err := json.Marshal(h.catalog)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return subgroupWriter(w)(0, catalogJSON)
}

func tupleEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i, t := range a {
		if t != b[i] {
			return false
		}
	}
	return true
}
