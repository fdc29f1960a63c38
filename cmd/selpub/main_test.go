package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Eyevinn/moqtracksel/internal"
)

func TestParseOptions(t *testing.T) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	opts, err := parseOptions(fs, []string{appName, "-asset", "media", "-wvttlangs", "en,sv"})
	require.NoError(t, err)
	require.Equal(t, "media", opts.asset)
	require.Equal(t, defaultNamespace, opts.namespace)
	require.Equal(t, []string{"en", "sv"}, splitList(opts.wvttLangs))
	require.Nil(t, splitList(opts.stppLangs))
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{appName, "-version"}, &out))
	require.Contains(t, out.String(), appName)
}

func TestGenerateTLSConfig(t *testing.T) {
	cfg, err := generateTLSConfig()
	require.NoError(t, err)
	require.Len(t, cfg.Certificates, 1)
	require.Equal(t, []string{"moq-00", "h3"}, cfg.NextProtos)

	_, err = generateTLSConfigWithCertAndKey("missing.pem", "missing-key.pem")
	require.Error(t, err)
}

type recordedGroup struct {
	groupID uint64
	payload string
}

type groupRecorder struct {
	mu     sync.Mutex
	groups []recordedGroup
	failAt int
}

func (r *groupRecorder) write(groupID uint64, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAt > 0 && len(r.groups) == r.failAt {
		return errors.New("stream closed")
	}
	r.groups = append(r.groups, recordedGroup{groupID, string(payload)})
	return nil
}

func (r *groupRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.groups)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishFragmentsLoops(t *testing.T) {
	defer goleak.VerifyNone(t)
	fragments := []internal.Fragment{
		{Data: []byte("f0"), Duration: time.Millisecond},
		{Data: []byte("f1"), Duration: time.Millisecond},
	}
	rec := &groupRecorder{failAt: 5}
	err := publishFragments(context.Background(), fragments, rec.write, discardLogger())
	require.ErrorContains(t, err, "group 5")
	require.Equal(t, []recordedGroup{
		{0, "f0"}, {1, "f1"}, {2, "f0"}, {3, "f1"}, {4, "f0"},
	}, rec.groups)
}

func TestPublishFragmentsStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx, cancel := context.WithCancel(context.Background())
	rec := &groupRecorder{}
	done := make(chan error, 1)
	go func() {
		done <- publishFragments(ctx, []internal.Fragment{{Data: []byte("f0"), Duration: time.Hour}}, rec.write, discardLogger())
	}()
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	require.Equal(t, 1, rec.count())

	require.NoError(t, publishFragments(context.Background(), nil, rec.write, discardLogger()))
}

func TestStopPublishersRefusesNewOnes(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := newMoqHandler(discardLogger(), "localhost:0", nil, []string{defaultNamespace}, nil, nil, nil)

	release := make(chan struct{})
	var ran sync.WaitGroup
	ran.Add(1)
	require.True(t, h.startPublisher(func() {
		ran.Done()
		<-release
	}))
	ran.Wait()

	stopped := make(chan struct{})
	go func() {
		h.stopPublishers()
		close(stopped)
	}()
	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.closing
	}, time.Second, time.Millisecond)
	require.False(t, h.startPublisher(func() { t.Error("publisher started after stop") }))

	select {
	case <-stopped:
		t.Fatal("stopPublishers returned while a publisher was running")
	default:
	}
	close(release)
	<-stopped
}
