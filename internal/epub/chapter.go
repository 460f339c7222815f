package epub

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
)

// AssembleChapters resolves the spine through the manifest and reads each
// chapter from the archive. Spine entries missing from the manifest or from
// the archive are skipped. Any other read failure aborts the assembly.
func AssembleChapters(ctx context.Context, a *Archive, packageDir string, pkg *PackageDocument, logger *slog.Logger) ([]Chapter, error) {
	if logger == nil {
		logger = discardLogger
	}

	chapters := make([]Chapter, 0, len(pkg.Spine))
	for i, idref := range pkg.Spine {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, ok := pkg.Manifest[idref]
		if !ok {
			logger.Debug("spine item not found in manifest, skipping", "idref", idref, "index", i)
			continue
		}

		path := chapterPath(packageDir, entry.Href)
		data, err := a.ReadFile(path)
		if isNotFound(err) {
			logger.Debug("spine item missing from archive, skipping", "idref", idref, "path", path)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read chapter %q: %w", path, err)
		}

		markup := string(data)
		chapters = append(chapters, Chapter{
			ID:      idref,
			Title:   chapterTitle(markup, entry, i),
			Href:    entry.Href,
			Content: ExtractBody(markup),
		})
	}
	return chapters, nil
}

// ResolveHref returns the archive path of a manifest href declared in the
// package document at pkgPath.
func ResolveHref(pkgPath, href string) string {
	return chapterPath(packageDir(pkgPath), href)
}

// chapterPath resolves a manifest href against the package directory.
func chapterPath(packageDir, href string) string {
	if packageDir == "" {
		return href
	}
	return packageDir + "/" + href
}

// chapterTitle picks the display title: the markup's own title or first
// heading, then the manifest title, then a label numbered by spine position.
func chapterTitle(markup string, entry ManifestEntry, spineIndex int) string {
	if t, ok := ExtractTitle(markup); ok {
		return t
	}
	if entry.Title != "" {
		return entry.Title
	}
	return "Chapter " + strconv.Itoa(spineIndex+1)
}
