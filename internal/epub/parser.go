package epub

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
)

var discardLogger = slog.New(slog.DiscardHandler)

// Options configures a Parser.
type Options struct {
	Logger *slog.Logger
}

// Parser turns EPUB archives into Documents. A Parser holds no per-call
// state and may be shared; each call opens its own archive.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a Parser. A nil Logger discards log output.
func NewParser(opts Options) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger
	}
	return &Parser{logger: logger}
}

// Parse parses the EPUB archive at path with a silent Parser.
func Parse(ctx context.Context, path string) (*Document, error) {
	return NewParser(Options{}).Parse(ctx, path)
}

// Parse opens the archive at path and assembles its Document.
//
// Only an unopenable archive (ErrArchiveOpen), an I/O failure while reading
// an entry (ErrRead) or a cancelled ctx produce an error. A missing or
// malformed package document yields a Document without chapters.
func (p *Parser) Parse(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, err := OpenArchive(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	return p.parseArchive(ctx, a, path)
}

// ParseReader is like Parse for an archive held in r.
func (p *Parser) ParseReader(ctx context.Context, r io.ReaderAt, size int64) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, err := NewArchive(r, size)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	return p.parseArchive(ctx, a, "")
}

// parseArchive assembles the Document of a. source names the archive in
// log output and may be empty.
func (p *Parser) parseArchive(ctx context.Context, a *Archive, source string) (*Document, error) {
	pkgPath, found := locatePackage(a)
	if !found {
		p.logger.Debug("container.xml unusable, using default package path", "path", pkgPath)
	}
	pkgDir := packageDir(pkgPath)
	doc := &Document{BaseReference: pkgDir}

	data, err := a.ReadFile(pkgPath)
	if isNotFound(err) {
		p.logger.Debug("package document not found", "path", pkgPath)
		p.logger.Info("parsed epub", "source", source, "title", "", "chapters", 0)
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read package document: %w", err)
	}

	pkg := ParsePackage(data)
	p.logger.Debug("parsed package document",
		"path", pkgPath,
		"manifest", len(pkg.Manifest),
		"spine", len(pkg.Spine),
	)

	chapters, err := AssembleChapters(ctx, a, pkgDir, pkg, p.logger)
	if err != nil {
		return nil, err
	}

	doc.Title = pkg.Title
	doc.Author = pkg.Author
	doc.Identifier = pkg.Identifier
	doc.Language = pkg.Language
	doc.Chapters = chapters
	p.logger.Info("parsed epub", "source", source, "title", doc.Title, "chapters", len(doc.Chapters))
	return doc, nil
}

// packageDir returns the archive directory of the package document.
func packageDir(pkgPath string) string {
	dir := path.Dir(pkgPath)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}
