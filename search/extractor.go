package search

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-mbox"
	"github.com/jhillyerd/enmime"
	"github.com/ledongthuc/pdf"
	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"find-text/config"
	pdfcpu "find-text/search/pdf"
)

// UnitStream yields the text units of one document in order.
// Next returns io.EOF after the last unit. A stream is not restartable.
type UnitStream interface {
	Next() (TextUnit, error)
	Close() error
}

// Extractor turns a document into a stream of text units
type Extractor interface {
	Extract(ctx context.Context, doc DocumentDescriptor) (UnitStream, error)
}

// ExtractorRegistry holds extractors for the document kinds
type ExtractorRegistry struct {
	extractors map[DocumentKind]Extractor
}

// NewExtractorRegistry creates a new registry with built-in extractors
func NewExtractorRegistry(logger *slog.Logger) *ExtractorRegistry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reg := &ExtractorRegistry{
		extractors: make(map[DocumentKind]Extractor),
	}
	reg.registerBuiltIns(logger)
	return reg
}

func (r *ExtractorRegistry) registerBuiltIns(logger *slog.Logger) {
	r.extractors[PlainText] = NewLineExtractor()
	r.extractors[PaginatedBinary] = &PageExtractor{logger: logger}
}

// Register replaces the extractor used for a kind
func (r *ExtractorRegistry) Register(kind DocumentKind, e Extractor) {
	r.extractors[kind] = e
}

// Extract dispatches on the document kind
func (r *ExtractorRegistry) Extract(ctx context.Context, doc DocumentDescriptor) (UnitStream, error) {
	e, ok := r.extractors[doc.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor for %s documents", ErrExtractionFailure, doc.Kind)
	}
	return e.Extract(ctx, doc)
}

// BodyDecoder extracts the readable body of a message container
type BodyDecoder interface {
	DecodeText(data []byte) (string, error)
}

// StreamDecoder is a BodyDecoder that can consume a container without holding it in
// memory first. Such containers are never truncated.
type StreamDecoder interface {
	DecodeReader(r io.Reader) (string, error)
}

// PartialStream is implemented by streams that may cover only part of their document.
// Partial returns a non-nil error describing what was left out.
type PartialStream interface {
	Partial() error
}

// LineExtractor splits line-oriented documents into lines. Message containers are
// decoded to their body text first.
type LineExtractor struct {
	decoders map[string]BodyDecoder
}

// NewLineExtractor returns a line extractor with the mail decoders registered
func NewLineExtractor() *LineExtractor {
	return &LineExtractor{decoders: map[string]BodyDecoder{
		"eml":  &EMLExtractor{},
		"mbox": &MBOXExtractor{},
		"msg":  &MSGExtractor{},
	}}
}

// Extract opens the document and returns a lazy line stream
func (e *LineExtractor) Extract(ctx context.Context, doc DocumentDescriptor) (UnitStream, error) {
	f, err := os.Open(doc.Path)
	if err != nil {
		return nil, err
	}

	if dec, ok := e.decoderFor(doc.Path); ok {
		return decodeMessage(ctx, f, dec)
	}

	return newLineStream(ctx, decodePermissive(f), f), nil
}

// decodeMessage decodes a message container and closes f
func decodeMessage(ctx context.Context, f *os.File, dec BodyDecoder) (UnitStream, error) {
	defer closeDocument(f)

	if sd, ok := dec.(StreamDecoder); ok {
		text, err := safeDecode(func() (string, error) { return sd.DecodeReader(f) })
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExtractionFailure, err)
		}
		return newLineStream(ctx, strings.NewReader(text), nil), nil
	}

	data, size, truncated, err := readCapped(f)
	if err != nil {
		return nil, err
	}
	text, err := safeDecode(func() (string, error) { return dec.DecodeText(data) })
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailure, err)
	}
	s := newLineStream(ctx, strings.NewReader(text), nil)
	if truncated {
		s.partial = truncation{read: int64(len(data)), size: size}
	}
	return s, nil
}

func (e *LineExtractor) decoderFor(path string) (BodyDecoder, bool) {
	if !config.IsMessageFile(path) {
		return nil, false
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	dec, ok := e.decoders[ext]
	return dec, ok
}

// decodePermissive reads UTF-8, or UTF-16 when a byte order mark says so.
// Invalid sequences become U+FFFD.
func decodePermissive(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// safeDecode guards against panics in the mail parsers
func safeDecode(decode func() (string, error)) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return decode()
}

// lineStream emits one unit per line with exact 1-based line numbers
type lineStream struct {
	ctx     context.Context
	r       *bufio.Reader
	file    *os.File
	buf     []byte
	index   int
	offset  int
	done    bool
	partial error
}

func newLineStream(ctx context.Context, r io.Reader, f *os.File) *lineStream {
	return &lineStream{ctx: ctx, r: bufio.NewReaderSize(r, 64*1024), file: f}
}

func (s *lineStream) Next() (TextUnit, error) {
	if s.done {
		return TextUnit{}, io.EOF
	}
	if err := s.ctx.Err(); err != nil {
		return TextUnit{}, err
	}

	line, term, err := s.readLine()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return TextUnit{}, err
		}
		s.done = true
		if line == "" {
			return TextUnit{}, io.EOF
		}
	}

	width := utf8.RuneCountInString(line) + term

	u := TextUnit{
		Content:  line,
		Location: Line(s.index + 1),
		Index:    s.index,
		Offset:   s.offset,
	}
	s.index++
	s.offset += width
	return u, nil
}

// readLine returns the next line without its terminator and the terminator's length.
// A line ends at "\n", "\r\n" or a lone "\r".
func (s *lineStream) readLine() (string, int, error) {
	s.buf = s.buf[:0]
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			return string(s.buf), 0, err
		}
		switch b {
		case '\n':
			return string(s.buf), 1, nil
		case '\r':
			if next, perr := s.r.Peek(1); perr == nil && next[0] == '\n' {
				_, _ = s.r.ReadByte()
				return string(s.buf), 2, nil
			}
			return string(s.buf), 1, nil
		}
		s.buf = append(s.buf, b)
	}
}

func (s *lineStream) Partial() error { return s.partial }

func (s *lineStream) Close() error {
	s.done = true
	if s.file == nil {
		return nil
	}
	f := s.file
	s.file = nil
	return closeDocument(f)
}

// EMLExtractor extracts text from .eml files (MIME messages)
type EMLExtractor struct{}

// DecodeText returns the Subject and From headers followed by the message body
func (e *EMLExtractor) DecodeText(data []byte) (string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse EML: %w", err)
	}

	// Prefer plain text, fallback to HTML if plain text is empty
	body := env.Text
	if strings.TrimSpace(body) == "" && env.HTML != "" {
		body = stripHTMLTags(env.HTML)
	}

	var b strings.Builder
	if subject := env.GetHeader("Subject"); subject != "" {
		b.WriteString("Subject: " + subject + "\n")
	}
	if from := env.GetHeader("From"); from != "" {
		b.WriteString("From: " + from + "\n")
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(strings.TrimRight(NormalizeExtracted(body), "\n"))
	return b.String(), nil
}

// MBOXExtractor extracts text from .mbox files (collections of MIME messages)
type MBOXExtractor struct{}

// DecodeText decodes every message and joins them with a "---" separator line
func (e *MBOXExtractor) DecodeText(data []byte) (string, error) {
	return e.DecodeReader(bytes.NewReader(data))
}

// DecodeReader reads the mailbox one message at a time
func (e *MBOXExtractor) DecodeReader(r io.Reader) (string, error) {
	reader := mbox.NewReader(r)
	eml := &EMLExtractor{}

	var parts []string
	for {
		msg, err := reader.NextMessage()
		if err != nil {
			break
		}
		content, err := io.ReadAll(msg)
		if err != nil {
			continue
		}
		text, err := eml.DecodeText(content)
		if err != nil {
			continue
		}
		parts = append(parts, text)
	}

	if len(parts) == 0 {
		return "", errors.New("no readable messages in mbox")
	}
	return strings.Join(parts, "\n---\n"), nil
}

// MSG property streams holding the plain-text body
const (
	msgBodyUnicode = "__substg1.0_1000001F"
	msgBodyANSI    = "__substg1.0_1000001E"
	msgSubject     = "__substg1.0_0037001F"
)

// MSGExtractor extracts text from .msg files (Outlook compound documents)
type MSGExtractor struct{}

// DecodeText reads the subject and body property streams
func (e *MSGExtractor) DecodeText(data []byte) (string, error) {
	cf, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse MSG: %w", err)
	}

	var subject, body string
	for ent, err := cf.Next(); err == nil; ent, err = cf.Next() {
		switch ent.Name {
		case msgBodyUnicode, msgSubject:
			raw, rerr := io.ReadAll(ent)
			if rerr != nil {
				continue
			}
			text, derr := decodeUTF16LE(raw)
			if derr != nil {
				continue
			}
			if ent.Name == msgSubject {
				subject = text
			} else {
				body = text
			}
		case msgBodyANSI:
			if body != "" {
				continue
			}
			raw, rerr := io.ReadAll(ent)
			if rerr != nil {
				continue
			}
			body = strings.ToValidUTF8(strings.TrimRight(string(raw), "\x00"), "\uFFFD")
		}
	}

	if body == "" && subject == "" {
		return "", errors.New("no body stream in MSG")
	}
	text := NormalizeExtracted(body)
	if subject != "" {
		text = "Subject: " + subject + "\n\n" + text
	}
	return strings.TrimRight(text, "\n"), nil
}

func decodeUTF16LE(raw []byte) (string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), "\x00"), nil
}

// PageExtractor extracts per-page text from PDF documents and splits it into
// sentences with estimated page numbers
type PageExtractor struct {
	logger *slog.Logger
}

// Extract reads every page up front; sentences are produced lazily from the joined text
func (e *PageExtractor) Extract(ctx context.Context, doc DocumentDescriptor) (UnitStream, error) {
	pages, err := readPDFPages(ctx, doc.Path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if pdfcpu.Enabled {
			e.logger.Debug("primary PDF reader failed, trying pdfcpu", "path", doc.Path, "error", err)
			if alt, altErr := pdfcpu.ExtractPages(doc.Path, 0, 0); altErr == nil {
				pages, err = alt, nil
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailure, err)
	}

	for i, p := range pages {
		pages[i] = NormalizeExtracted(p)
	}
	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no extractable text", ErrExtractionFailure)
	}
	return newSentenceStream(ctx, text), nil
}

// readPDFPages returns the plain text of each page. Pages the library cannot decode
// are left empty; the document fails only when no page yields text.
func readPDFPages(ctx context.Context, path string) (pages []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer closeDocument(f)

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	// Guard against any panics from the PDF library.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	n := reader.NumPage()
	if n <= 0 {
		return nil, errors.New("document has no pages")
	}

	pages = make([]string, 0, n)
	readable := 0
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Extract page by page with panic protection for each page.
		func() {
			defer func() { _ = recover() }()
			page := reader.Page(i)
			if page.V.IsNull() {
				pages = append(pages, "")
				return
			}
			text, perr := page.GetPlainText(nil)
			if perr != nil {
				pages = append(pages, "")
				return
			}
			pages = append(pages, text)
			readable++
		}()
		if len(pages) < i {
			pages = append(pages, "")
		}
	}
	if readable == 0 {
		return nil, errors.New("no readable pages")
	}
	return pages, nil
}
