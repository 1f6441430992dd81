// Package source provides candidate response data from a local store or
// JSON attempt files, plus loaders for scoring maps and calibration history.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pavelanni/whatif/internal/model"
)

// ErrNoData is returned when no backing store yields records for a candidate.
var ErrNoData = errors.New("no response data")

// Kind selects a ResponseSource variant.
type Kind string

const (
	KindAuto  Kind = "auto"
	KindStore Kind = "store"
	KindFile  Kind = "file"
)

// ResponseSource yields a candidate's response records.
type ResponseSource interface {
	Responses(ctx context.Context, candidate string) ([]model.ResponseRecord, error)
	Name() string
}

// ResponseLister is the store-side query a StoreSource needs.
type ResponseLister interface {
	ListResponses(candidate string) ([]model.ResponseRecord, error)
}

// FileSource reads JSON attempt files; the candidate is the file path,
// relative to Dir unless absolute.
type FileSource struct {
	Dir string
}

func (f FileSource) Name() string { return "file" }

func (f FileSource) Responses(ctx context.Context, candidate string) ([]model.ResponseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := candidate
	if f.Dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(f.Dir, path)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: file %s not found", ErrNoData, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	raws, err := DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(raws) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoData, path)
	}
	recs := Canonicalize(candidate, raws)
	slog.Info("loaded responses from file", "path", path, "count", len(recs))
	return recs, nil
}

// StoreSource reads previously imported records from the local database.
type StoreSource struct {
	Store ResponseLister
}

func (s StoreSource) Name() string { return "store" }

func (s StoreSource) Responses(ctx context.Context, candidate string) ([]model.ResponseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recs, err := s.Store.ListResponses(candidate)
	if err != nil {
		return nil, fmt.Errorf("list responses for %s: %w", candidate, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: no stored responses for %s", ErrNoData, candidate)
	}
	slog.Info("loaded responses from store", "candidate", candidate, "count", len(recs))
	return recs, nil
}

// FallbackSource tries Primary and falls back to Secondary when Primary
// errors or returns nothing.
type FallbackSource struct {
	Primary   ResponseSource
	Secondary ResponseSource
}

func (f FallbackSource) Name() string {
	return f.Primary.Name() + "+" + f.Secondary.Name()
}

func (f FallbackSource) Responses(ctx context.Context, candidate string) ([]model.ResponseRecord, error) {
	recs, err := f.Primary.Responses(ctx, candidate)
	if err == nil && len(recs) > 0 {
		return recs, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	slog.Warn("falling back to secondary source",
		"candidate", candidate, "primary", f.Primary.Name(), "secondary", f.Secondary.Name(), "error", err)

	recs, err2 := f.Secondary.Responses(ctx, candidate)
	if err2 == nil && len(recs) > 0 {
		return recs, nil
	}
	return nil, fmt.Errorf("%w for %s: %w", ErrNoData, candidate, errors.Join(err, err2))
}

// Resolve builds the source variant once, before any analysis runs. Auto
// prefers the store when one is open and falls back to files.
func Resolve(kind Kind, store ResponseLister, dir string) (ResponseSource, error) {
	file := FileSource{Dir: dir}
	switch kind {
	case KindFile:
		return file, nil
	case KindStore:
		if store == nil {
			return nil, errors.New("store data source requested but no store is open")
		}
		return StoreSource{Store: store}, nil
	case KindAuto, "":
		if store == nil {
			return file, nil
		}
		return FallbackSource{Primary: StoreSource{Store: store}, Secondary: file}, nil
	default:
		return nil, fmt.Errorf("unknown data source %q (want auto, store or file)", kind)
	}
}
