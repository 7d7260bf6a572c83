// Package reader decodes factor files into tables.
//
// Two strategies exist. Mapped decoding maps the file read-only and hands out
// column views that point straight into the mapping; it refuses compressed files.
// Buffered decoding streams the file, through a decompressor when it is framed,
// and copies every column into owned memory.
//
//	t, err := reader.Read("prices.fact", reader.WithMode(format.ModeBuffered))
//	if err != nil {
//	    var de *reader.DecodeError
//	    if errors.As(err, &de) && errors.Is(err, errs.ErrTruncated) {
//	        // de.Stage tells how far decoding got
//	    }
//	    return err
//	}
//	defer t.Close()
//
// A decode either returns a complete table or no table at all.
package reader

import (
	"fmt"

	"github.com/colvec/factor/format"
	"github.com/colvec/factor/internal/options"
	"github.com/colvec/factor/table"
)

// Stage is the last decode stage completed before a failure.
type Stage uint8

const (
	StageUnopened Stage = iota
	StageHeaderParsed
	StageSegmentDecoded
	StageAssembled
)

func (s Stage) String() string {
	switch s {
	case StageUnopened:
		return "unopened"
	case StageHeaderParsed:
		return "header-parsed"
	case StageSegmentDecoded:
		return "segment-decoded"
	case StageAssembled:
		return "assembled"
	default:
		return "Unknown"
	}
}

// DecodeError reports a failed decode. It unwraps to the sentinel in package errs
// describing the failure.
type DecodeError struct {
	Path  string
	Mode  format.Mode
	Stage Stage
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s decode of %s failed after stage %s: %v", e.Mode, e.Path, e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Read decodes the factor file at path.
//
// Parameters:
//   - path: File to decode
//   - opts: Decode options; mapped mode with frame sniffing by default
//
// Returns:
//   - *table.Table: The decoded table. Mapped tables must be closed to release the mapping.
//   - error: *DecodeError wrapping errs.ErrFormat, errs.ErrEncoding, errs.ErrUnsupportedMode,
//     errs.ErrTruncated or errs.ErrAssembly, or an I/O error
func Read(path string, opts ...Option) (*table.Table, error) {
	cfg := NewConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, &DecodeError{Path: path, Mode: cfg.mode, Stage: StageUnopened, Err: err}
	}

	var (
		t     *table.Table
		stage Stage
		err   error
	)
	switch cfg.mode {
	case format.ModeBuffered:
		t, stage, err = decodeBuffered(path, cfg)
	default:
		t, stage, err = decodeMapped(path, cfg)
	}
	if err != nil {
		return nil, &DecodeError{Path: path, Mode: cfg.mode, Stage: stage, Err: err}
	}

	return t, nil
}
