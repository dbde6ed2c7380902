// Package csv provides the restartable row source the loader reads twice:
// once to sample values, once to insert every row.
//
// A Source knows how to (re)open its input: files are reopened, http(s) URLs
// are fetched again, and stdin is buffered in memory on first use.
package csv

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Rows is one pass over a Source.
type Rows interface {
	// Header returns the detected header fields, or nil when the input has
	// no header row.
	Header() []string

	// Next returns the next data record, or io.EOF after the last one. The
	// returned slice is only valid until the following call.
	Next() ([]string, error)

	// Line is the 1-based input line on which the last returned record
	// starts. It is 0 before the first record.
	Line() int

	Close() error
}

type opener func(ctx context.Context) (io.ReadCloser, error)

// Source is a restartable CSV input.
type Source struct {
	name string
	open opener
	opts Options
	enc  encoding.Encoding
}

// Stdin is read by sources created for "-". Tests may replace it.
var Stdin io.Reader = os.Stdin

var httpClient = &http.Client{}

// NewSource returns a Source for location: "-" for stdin, an http:// or
// https:// URL, or a file path. Files are checked for existence up front.
func NewSource(location string, opts Options) (*Source, error) {
	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	s := &Source{name: location, opts: opts, enc: enc}
	switch {
	case location == "-":
		s.name = "stdin"
		s.open = bufferOnce(func(context.Context) (io.Reader, error) { return Stdin, nil })
	case strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://"):
		s.open = httpOpener(location)
	default:
		if _, err := os.Stat(location); err != nil {
			return nil, fmt.Errorf("input %s: %w", location, err)
		}
		s.open = func(context.Context) (io.ReadCloser, error) { return os.Open(location) }
	}
	return s, nil
}

// NewBytesSource returns a Source over an in-memory input.
func NewBytesSource(name string, data []byte, opts Options) (*Source, error) {
	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}
	return &Source{
		name: name,
		opts: opts,
		enc:  enc,
		open: func(context.Context) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}, nil
}

// Name identifies the input in logs ("stdin", a path or a URL).
func (s *Source) Name() string { return s.name }

func bufferOnce(read func(context.Context) (io.Reader, error)) opener {
	var (
		once sync.Once
		buf  []byte
		err  error
	)
	return func(ctx context.Context) (io.ReadCloser, error) {
		once.Do(func() {
			var r io.Reader
			if r, err = read(ctx); err == nil {
				buf, err = io.ReadAll(r)
			}
		})
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(buf)), nil
	}
}

func httpOpener(url string) opener {
	return func(ctx context.Context) (io.ReadCloser, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
		}
		return resp.Body, nil
	}
}

// Open starts a new pass from the beginning of the input and resolves the
// header according to the source's HeaderMode.
//
// An input with no records yields a nil header and io.EOF on the first Next.
func (s *Source) Open(ctx context.Context) (Rows, error) {
	rc, err := s.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.name, err)
	}

	var r io.Reader = rc
	if s.enc != nil {
		r = transform.NewReader(r, s.enc.NewDecoder())
	}
	br := bufio.NewReaderSize(r, sniffWindow)
	if err := skipBOM(br); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("read %s: %w", s.name, err)
	}

	comma := s.opts.Comma
	if comma == 0 {
		comma = sniffComma(br)
	}

	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.LazyQuotes = s.opts.LazyQuotes
	cr.TrimLeadingSpace = s.opts.TrimLeadingSpace
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	out := &rows{ctx: ctx, closer: rc, cr: cr}

	first, err := cr.Read()
	if err == io.EOF {
		out.eof = true
		return out, nil
	}
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	firstLine, _ := cr.FieldPos(0)

	isHeader := false
	switch s.opts.Header {
	case HeaderPresent:
		isHeader = true
	case HeaderAuto:
		isHeader = LooksLikeHeader(first)
	}

	if isHeader {
		out.header = append([]string(nil), first...)
	} else {
		out.pending = first
		out.pendingLine = firstLine
	}
	return out, nil
}

type rows struct {
	ctx    context.Context
	closer io.Closer
	cr     *csv.Reader

	header      []string
	pending     []string
	pendingLine int
	line        int
	eof         bool
}

func (r *rows) Header() []string { return r.header }

func (r *rows) Line() int { return r.line }

func (r *rows) Next() ([]string, error) {
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}
	if r.eof {
		return nil, io.EOF
	}
	if r.pending != nil {
		rec := r.pending
		r.pending = nil
		r.line = r.pendingLine
		return rec, nil
	}

	rec, err := r.cr.Read()
	if err != nil {
		if err == io.EOF {
			r.eof = true
		}
		return nil, err
	}
	r.line, _ = r.cr.FieldPos(0)
	return rec, nil
}

func (r *rows) Close() error { return r.closer.Close() }

// skipBOM drops a leading UTF-8 byte order mark.
func skipBOM(br *bufio.Reader) error {
	b, err := br.Peek(3)
	if err != nil && err != io.EOF {
		return err
	}
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return nil
}
