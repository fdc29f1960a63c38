package trackselection

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestDefaultParameters(t *testing.T) {
	want := Parameters{
		AllowNonSeamlessAdaptiveness:      true,
		MaxVideoWidth:                     Unbounded,
		MaxVideoHeight:                    Unbounded,
		ExceedVideoConstraintsIfNecessary: true,
		ViewportWidth:                     Unbounded,
		ViewportHeight:                    Unbounded,
		ViewportOrientationMayChange:      true,
		VideoOverride:                     NoOverrides,
		AudioOverride:                     NoOverrides,
	}
	if diff := cmp.Diff(want, NewConfig().Parameters()); diff != "" {
		t.Errorf("default parameters mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigVersioning(t *testing.T) {
	var notified []uint64
	cfg := NewConfig(WithInvalidationListener(func(v uint64) {
		notified = append(notified, v)
	}))
	require.Equal(t, uint64(0), cfg.Version())

	cfg.SetPreferredAudioLanguage("deu")
	require.Equal(t, uint64(1), cfg.Version())
	require.Equal(t, "de", cfg.Parameters().PreferredAudioLanguage)

	// Equal values after normalization are no-ops.
	cfg.SetPreferredAudioLanguage("de")
	cfg.SetMaxVideoSize(Unbounded, Unbounded)
	cfg.SetAllowNonSeamlessAdaptiveness(true)
	cfg.ClearViewportConstraints()
	cfg.ClearOverrides()
	require.Equal(t, uint64(1), cfg.Version())

	cfg.SetMaxVideoSizeSD()
	cfg.SetViewportSizeFromDisplay(1920, 1080, false)
	cfg.SetVideoOverride(1, NoOverride)
	cfg.SetAudioOverride(NoOverride, 0)
	cfg.ClearOverrides()
	cfg.Invalidate()
	require.Equal(t, uint64(7), cfg.Version())
	require.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7}, notified)

	p, v := cfg.Snapshot()
	require.Equal(t, uint64(7), v)
	require.Equal(t, MaxVideoWidthSD, p.MaxVideoWidth)
	require.Equal(t, MaxVideoHeightSD, p.MaxVideoHeight)
	require.Equal(t, 1920, p.ViewportWidth)
	require.False(t, p.ViewportOrientationMayChange)
	require.Equal(t, NoOverrides, p.VideoOverride)
}

func TestConfigConcurrentUpdates(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var calls atomic.Int64
	cfg := NewConfig(WithInvalidationListener(func(uint64) {
		calls.Add(1)
	}))

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg.SetViewportSize(1000+i, 500+i, false)
			_ = cfg.Parameters()
		}(i)
	}
	wg.Wait()

	require.Equal(t, uint64(calls.Load()), cfg.Version())
	require.LessOrEqual(t, cfg.Version(), uint64(workers))
	require.GreaterOrEqual(t, cfg.Version(), uint64(1))
}
