package devreload

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherDebouncesBurst(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	sub := filepath.Join(dir, "pages")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	file := filepath.Join(sub, "home.tmpl")
	require.NoError(t, os.WriteFile(file, []byte("v1"), 0o644))

	var calls atomic.Int32
	w, err := New(func() error {
		calls.Add(1)
		return nil
	}, []string{dir}, WithDebounce(60*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(file, []byte("v2"), 0o644))
	}
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	settled := calls.Load()
	require.LessOrEqual(t, settled, int32(2))

	// unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(250 * time.Millisecond)
	require.Equal(t, settled, calls.Load())

	w.Stop()
}

func TestWatcherStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := New(func() error { return nil }, []string{t.TempDir(), filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()
	w.Stop()
}
