package metadata

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"
	"unicode"
)

var textExts = map[string]bool{
	".txt": true, ".md": true, ".csv": true, ".log": true, ".rtf": true,
	".html": true, ".htm": true, ".json": true, ".xml": true, ".tex": true,
}

func isTextExt(ext string) bool {
	return textExts[strings.ToLower(ext)]
}

// ctxReader fails reads once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// contentHash returns the hex SHA-256 of the file at path.
func contentHash(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, ctxReader{ctx: ctx, r: f}); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// scanKeywords returns the keywords that occur as words in the first limit
// bytes of the file, in keyword order.
func scanKeywords(path string, keywords []string, limit int64) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	words := make(map[string]bool)
	scanner := bufio.NewScanner(io.LimitReader(f, limit))
	scanner.Buffer(make([]byte, 0, 4096), int(limit)+1)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		for _, w := range strings.FieldsFunc(strings.ToLower(scanner.Text()), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			words[w] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var hits []string
	for _, k := range keywords {
		if words[k] {
			hits = append(hits, k)
		}
	}
	return hits, nil
}
