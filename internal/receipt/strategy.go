package receipt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ErrNotSaved marks a write that reported success but left no file
// behind. It is treated as a failure, never assumed-successful.
var ErrNotSaved = errors.New("file was not saved")

// Opener hands a path or URL to the OS default handler. A nil Opener
// means the facility is unavailable on this system.
type Opener func(ctx context.Context, target string) error

// SystemOpener probes for the platform opener. Returns nil when none is
// installed, which callers use to fall back to a plain save.
func SystemOpener() Opener {
	bin := "xdg-open"
	if runtime.GOOS == "darwin" {
		bin = "open"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil
	}
	return func(ctx context.Context, target string) error {
		// Hand off and return; the viewer outlives the invocation the
		// same way an opened tab does.
		return exec.CommandContext(ctx, bin, target).Start()
	}
}

// SaveStrategy writes the receipt into the documents directory and
// verifies the file actually landed on disk.
type SaveStrategy struct {
	Dir string
}

func (s *SaveStrategy) Name() string { return "save" }

func (s *SaveStrategy) Deliver(ctx context.Context, doc Document) (Outcome, error) {
	if _, err := writeAndVerify(s.Dir, doc); err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: "saved as " + doc.Filename}, nil
}

// ShareStrategy saves the receipt and then hands the path to the OS
// opener, the closest desktop analog of a share sheet. Without an opener
// it degrades to the save behavior.
type ShareStrategy struct {
	Dir  string
	Open Opener
}

func (s *ShareStrategy) Name() string { return "share" }

func (s *ShareStrategy) Deliver(ctx context.Context, doc Document) (Outcome, error) {
	path, err := writeAndVerify(s.Dir, doc)
	if err != nil {
		return Outcome{}, err
	}
	if s.Open == nil {
		return Outcome{Message: "saved as " + doc.Filename}, nil
	}
	if err := s.Open(ctx, path); err != nil {
		return Outcome{}, fmt.Errorf("opening %s: %w", doc.Filename, err)
	}
	return Outcome{Message: "opened " + doc.Filename + " with the system viewer"}, nil
}

// StreamStrategy copies the receipt to an output the caller chose: stdout
// when piped, or an explicit file path. Completion past the write is not
// observed, matching a browser handing off to its download manager.
type StreamStrategy struct {
	W    io.Writer // used when Path is empty
	Path string
}

func (s *StreamStrategy) Name() string { return "stream" }

func (s *StreamStrategy) Deliver(ctx context.Context, doc Document) (Outcome, error) {
	if s.Path == "" {
		if _, err := s.W.Write(doc.Data); err != nil {
			return Outcome{}, err
		}
		return Outcome{Message: "download started: " + doc.Filename}, nil
	}

	f, err := os.Create(s.Path)
	if err != nil {
		return Outcome{}, err
	}
	if _, err := f.Write(doc.Data); err != nil {
		_ = f.Close()
		_ = os.Remove(s.Path) // no partial artifact left behind
		return Outcome{}, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(s.Path)
		return Outcome{}, err
	}
	return Outcome{Message: "download started: " + s.Path}, nil
}

func writeAndVerify(dir string, doc Document) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, doc.Filename)
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return "", err
	}
	// A write that reports success but produces no file is a failure,
	// not assumed-successful.
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return "", ErrNotSaved
	}
	return path, nil
}
