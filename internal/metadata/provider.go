// Package metadata implements the built-in metadata provider: EXIF capture
// date and camera, image content hashes, average-hash image fingerprints and
// content keyword hits.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"omnisort/internal/sorter"
)

// DefaultKeywordScanBytes bounds how much of a text file is searched for keywords.
const DefaultKeywordScanBytes = 64 * 1024

// Options configures a Provider.
type Options struct {
	// Keywords are searched for in plain-text file contents.
	Keywords []string

	// PerceptualDedup uses the average-hash fingerprint as the dedup hash for
	// decodable images, so re-encoded copies count as duplicates.
	PerceptualDedup bool

	// KeywordScanBytes bounds the keyword scan. Zero selects DefaultKeywordScanBytes.
	KeywordScanBytes int64
}

// Provider is the built-in sorter.MetadataProvider.
type Provider struct {
	keywords   []string
	perceptual bool
	scanBytes  int64
}

// NewProvider creates a Provider.
func NewProvider(opts Options) *Provider {
	seen := make(map[string]bool)
	var kws []string
	for _, k := range opts.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && !seen[k] {
			seen[k] = true
			kws = append(kws, k)
		}
	}
	scan := opts.KeywordScanBytes
	if scan <= 0 {
		scan = DefaultKeywordScanBytes
	}
	return &Provider{keywords: kws, perceptual: opts.PerceptualDedup, scanBytes: scan}
}

// Extract reads rec's metadata. Missing EXIF is not an error; failures to
// read or hash the file are reported as degraded extraction alongside
// whatever tags were gathered. Hash is set for image files only.
func (p *Provider) Extract(ctx context.Context, rec *sorter.FileRecord) (sorter.TagSet, error) {
	var tags sorter.TagSet
	var errs []error
	if err := ctx.Err(); err != nil {
		return tags, err
	}

	// Only images carry a dedup hash; every other type is never a duplicate.
	if sorter.TypeForExt(rec.Ext) == sorter.TypeImage {
		info, err := readEXIF(rec.Path)
		if err == nil {
			if !info.taken.IsZero() {
				tags.Year, tags.Month, tags.Day = info.taken.Year(), int(info.taken.Month()), info.taken.Day()
			}
			tags.Device = info.device
		}
		if ctx.Err() != nil {
			return tags, ctx.Err()
		}

		if hash, err := averageHashFile(rec.Path); err == nil {
			if tags.Extra == nil {
				tags.Extra = make(map[string]string)
			}
			tags.Extra["ahash"] = hash
			if p.perceptual {
				tags.Hash = "ahash:" + hash
			}
		}

		if tags.Hash == "" {
			sum, err := contentHash(ctx, rec.Path)
			if err != nil {
				errs = append(errs, fmt.Errorf("hashing: %w", err))
			} else {
				tags.Hash = "sha256:" + sum
			}
		}
		if ctx.Err() != nil {
			return tags, ctx.Err()
		}
	}

	if len(p.keywords) > 0 && isTextExt(rec.Ext) {
		hits, err := scanKeywords(rec.Path, p.keywords, p.scanBytes)
		if err != nil {
			errs = append(errs, fmt.Errorf("scanning keywords: %w", err))
		}
		tags.Keywords = hits
	}

	return tags, errors.Join(errs...)
}

// Compile-time check that Provider implements sorter.MetadataProvider interface
var _ sorter.MetadataProvider = (*Provider)(nil)
