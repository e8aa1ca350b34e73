package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"library-backend/internal/platform/apierr"
)

// Export encodings accepted by ExportBooks.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

var exportHeader = []string{"id", "title", "author", "publisher", "quantity"}

// ParseEncoding normalizes the ?encoding= value. Empty means UTF-8.
func ParseEncoding(v string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "shift_jis", "sjis", "cp932":
		return EncodingShiftJIS, nil
	}
	return "", apierr.ErrInvalid("encoding must be utf-8 or shift_jis")
}

// ExportBooks renders the whole catalog as CSV. Shift_JIS output is what
// spreadsheet tools on Japanese Windows open without an import dialog;
// characters it cannot represent are replaced.
func (s *Service) ExportBooks(ctx context.Context, enc string) ([]byte, error) {
	list, err := s.ListBooks(ctx, Page{}, BookQuery{})
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	var out io.Writer = &b
	var tw io.WriteCloser
	if enc == EncodingShiftJIS {
		tw = transform.NewWriter(&b, encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder()))
		out = tw
	}

	w := csv.NewWriter(out)
	if err := w.Write(exportHeader); err != nil {
		return nil, apierr.Internal("write csv", err)
	}
	for _, bk := range list.Items {
		rec := []string{
			strconv.FormatInt(bk.ID, 10),
			bk.Title,
			deref(bk.Author),
			deref(bk.Publisher),
			strconv.Itoa(bk.Quantity),
		}
		if err := w.Write(rec); err != nil {
			return nil, apierr.Internal("write csv", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apierr.Internal("write csv", err)
	}
	if tw != nil {
		if err := tw.Close(); err != nil {
			return nil, apierr.Internal("encode csv", err)
		}
	}
	return b.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
