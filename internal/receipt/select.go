package receipt

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

type SelectOptions struct {
	Mode         string // auto, save, share, stream, preview
	DocumentsDir string
	PreviewAddr  string
	OutPath      string
	Stdout       *os.File
	Logger       *zap.Logger
}

// Select picks the delivery strategy once per invocation by inspecting
// the runtime, the way the app branches on its platform.
func Select(opts SelectOptions) (Strategy, error) {
	switch opts.Mode {
	case "save":
		return &SaveStrategy{Dir: opts.DocumentsDir}, nil
	case "share":
		return &ShareStrategy{Dir: opts.DocumentsDir, Open: SystemOpener()}, nil
	case "stream":
		if opts.OutPath != "" {
			return &StreamStrategy{Path: opts.OutPath}, nil
		}
		if opts.Stdout == nil {
			return nil, errors.New("stream delivery needs an output path or stdout")
		}
		return &StreamStrategy{W: opts.Stdout}, nil
	case "preview":
		return &PreviewStrategy{Addr: opts.PreviewAddr, Open: SystemOpener(), Logger: opts.Logger}, nil
	case "", "auto":
	default:
		return nil, fmt.Errorf("unknown delivery mode %q", opts.Mode)
	}

	if opts.OutPath != "" {
		return &StreamStrategy{Path: opts.OutPath}, nil
	}
	if opts.Stdout != nil {
		if info, err := opts.Stdout.Stat(); err == nil && info.Mode()&os.ModeCharDevice == 0 {
			return &StreamStrategy{W: opts.Stdout}, nil
		}
	}
	if open := SystemOpener(); open != nil {
		return &ShareStrategy{Dir: opts.DocumentsDir, Open: open}, nil
	}
	return &SaveStrategy{Dir: opts.DocumentsDir}, nil
}
