package compress

import (
	"io"
	"sync"
)

// pooledReader adapts a reusable decoder to io.ReadCloser.
//
// Close hands the decoder back through release exactly once; further reads
// after Close report io.ErrClosedPipe.
type pooledReader struct {
	r       io.Reader
	release func()
	once    sync.Once
}

func newPooledReader(r io.Reader, release func()) *pooledReader {
	return &pooledReader{r: r, release: release}
}

func (p *pooledReader) Read(b []byte) (int, error) {
	if p.r == nil {
		return 0, io.ErrClosedPipe
	}

	return p.r.Read(b)
}

func (p *pooledReader) Close() error {
	p.once.Do(func() {
		p.r = nil
		if p.release != nil {
			p.release()
		}
	})

	return nil
}
