package receipt

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// previewPage mirrors the inline rendering trick the mobile web client
// uses: a bare full-viewport iframe pointed at the document.
const previewPage = `<!doctype html>
<html>
<head><title>Receipt</title></head>
<body style="margin:0">
<iframe src="/receipt.pdf" style="border:0;width:100vw;height:100vh"></iframe>
</body>
</html>
`

// PreviewStrategy serves the receipt from a short-lived localhost server
// and points the browser at it. The serving goroutine stops with the
// invocation context; the opened browser window is the user's to close.
type PreviewStrategy struct {
	Addr   string
	Open   Opener
	Logger *zap.Logger
}

func (s *PreviewStrategy) Name() string { return "preview" }

func (s *PreviewStrategy) Deliver(ctx context.Context, doc Document) (Outcome, error) {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return Outcome{}, err
	}

	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(previewPage))
	})
	r.Get("/receipt.pdf", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", doc.MIME)
		w.Header().Set("Content-Disposition", `inline; filename="`+doc.Filename+`"`)
		_, _ = w.Write(doc.Data)
	})

	srv := &http.Server{Handler: r}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.Logger.Warn("preview server stopped", zap.Error(err))
		}
	}()

	url := "http://" + ln.Addr().String() + "/"
	if s.Open != nil {
		if err := s.Open(ctx, url); err != nil {
			s.Logger.Warn("could not open browser", zap.Error(err))
		}
	}
	return Outcome{Message: "receipt preview at " + url}, nil
}
