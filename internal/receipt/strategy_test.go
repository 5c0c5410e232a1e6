package receipt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testDoc() Document {
	return Document{
		Data:     []byte("%PDF-1.4 body"),
		Filename: "USPizza_Receipt_SO-0099.pdf",
		MIME:     "application/pdf",
	}
}

func TestSaveStrategy(t *testing.T) {
	dir := t.TempDir()
	s := &SaveStrategy{Dir: dir}

	out, err := s.Deliver(context.Background(), testDoc())
	require.NoError(t, err)
	require.Equal(t, "saved as USPizza_Receipt_SO-0099.pdf", out.Message)

	data, err := os.ReadFile(filepath.Join(dir, "USPizza_Receipt_SO-0099.pdf"))
	require.NoError(t, err)
	require.Equal(t, testDoc().Data, data)
}

func TestSaveStrategyUnwritableDir(t *testing.T) {
	// A regular file where the directory should be makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := &SaveStrategy{Dir: blocker}
	_, err := s.Deliver(context.Background(), testDoc())
	require.Error(t, err)
}

func TestShareStrategyInvokesOpener(t *testing.T) {
	dir := t.TempDir()
	var opened string
	s := &ShareStrategy{
		Dir: dir,
		Open: func(ctx context.Context, target string) error {
			opened = target
			return nil
		},
	}

	out, err := s.Deliver(context.Background(), testDoc())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "USPizza_Receipt_SO-0099.pdf"), opened)
	require.Contains(t, out.Message, "system viewer")

	// The file stays on disk for the viewer; it is the delivery surface.
	_, err = os.Stat(opened)
	require.NoError(t, err)
}

func TestShareStrategyFallsBackWithoutOpener(t *testing.T) {
	s := &ShareStrategy{Dir: t.TempDir(), Open: nil}

	out, err := s.Deliver(context.Background(), testDoc())
	require.NoError(t, err)
	require.Equal(t, "saved as USPizza_Receipt_SO-0099.pdf", out.Message)
}

func TestShareStrategyOpenerError(t *testing.T) {
	s := &ShareStrategy{
		Dir: t.TempDir(),
		Open: func(ctx context.Context, target string) error {
			return errors.New("no handler registered")
		},
	}

	_, err := s.Deliver(context.Background(), testDoc())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no handler registered")
}

type countingWriter struct {
	buf    bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.buf.Write(p)
}

func TestStreamStrategyWritesExactlyOnce(t *testing.T) {
	w := &countingWriter{}
	s := &StreamStrategy{W: w}

	out, err := s.Deliver(context.Background(), testDoc())
	require.NoError(t, err)
	require.Equal(t, "download started: USPizza_Receipt_SO-0099.pdf", out.Message)
	require.Equal(t, 1, w.writes)
	require.Equal(t, testDoc().Data, w.buf.Bytes())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestStreamStrategyWriterError(t *testing.T) {
	s := &StreamStrategy{W: failingWriter{}}

	_, err := s.Deliver(context.Background(), testDoc())
	require.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestStreamStrategyToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.pdf")
	s := &StreamStrategy{Path: path}

	out, err := s.Deliver(context.Background(), testDoc())
	require.NoError(t, err)
	require.Contains(t, out.Message, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, testDoc().Data, data)
}

func TestStreamStrategyPathCreateError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "receipt.pdf")
	s := &StreamStrategy{Path: path}

	_, err := s.Deliver(context.Background(), testDoc())
	require.Error(t, err)

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestPreviewStrategyServesDocument(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &PreviewStrategy{Addr: "127.0.0.1:0", Logger: zaptest.NewLogger(t)}
	out, err := s.Deliver(ctx, testDoc())
	require.NoError(t, err)

	url := strings.TrimPrefix(out.Message, "receipt preview at ")
	require.True(t, strings.HasPrefix(url, "http://127.0.0.1:"))

	resp, err := http.Get(url)
	require.NoError(t, err)
	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Contains(t, string(page), `<iframe src="/receipt.pdf"`)

	resp, err = http.Get(url + "receipt.pdf")
	require.NoError(t, err)
	require.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, testDoc().Data, body)

	// The serving goroutine stops with the invocation context.
	cancel()
	require.Eventually(t, func() bool {
		_, err := http.Get(url)
		return err != nil
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSelect(t *testing.T) {
	logger := zaptest.NewLogger(t)

	testCases := []struct {
		name string
		opts SelectOptions
		want string
	}{
		{
			name: "explicit save",
			opts: SelectOptions{Mode: "save", DocumentsDir: "/tmp/docs"},
			want: "save",
		},
		{
			name: "explicit share",
			opts: SelectOptions{Mode: "share", DocumentsDir: "/tmp/docs"},
			want: "share",
		},
		{
			name: "explicit stream",
			opts: SelectOptions{Mode: "stream", Stdout: os.Stdout},
			want: "stream",
		},
		{
			name: "explicit preview",
			opts: SelectOptions{Mode: "preview", PreviewAddr: "127.0.0.1:0", Logger: logger},
			want: "preview",
		},
		{
			name: "auto with out path streams",
			opts: SelectOptions{Mode: "auto", OutPath: "/tmp/r.pdf"},
			want: "stream",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Select(tc.opts)
			require.NoError(t, err)
			require.Equal(t, tc.want, s.Name())
		})
	}
}

func TestSelectUnknownMode(t *testing.T) {
	_, err := Select(SelectOptions{Mode: "carrier-pigeon"})
	require.Error(t, err)
}

func TestSelectStreamWithoutOutput(t *testing.T) {
	_, err := Select(SelectOptions{Mode: "stream"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "output path or stdout")
}
