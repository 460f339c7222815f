package epub

// Document is the normalized result of parsing an EPUB archive.
// Empty strings stand for absent values.
type Document struct {
	Title      string
	Author     string
	Identifier string
	Language   string
	Chapters   []Chapter

	// BaseReference is the package document's directory inside the archive
	// ("" when the package document sits at the archive root). Every chapter
	// href was resolved against it.
	BaseReference string
}

// Empty reports whether the document has no readable chapters.
func (d *Document) Empty() bool {
	return d == nil || len(d.Chapters) == 0
}

// Chapter is one spine-ordered, manifest-resolved content document.
type Chapter struct {
	ID      string // Manifest ID, not guaranteed unique
	Title   string
	Href    string // as declared in the manifest
	Content string // body markup fragment
}

// PackageDocument holds what the parser keeps from the OPF file.
type PackageDocument struct {
	Title      string
	Author     string
	Identifier string
	Language   string
	Manifest   map[string]ManifestEntry // id -> entry, markup entries only
	Spine      []string                 // manifest ids in reading order
}

// ManifestEntry represents a markup item in the manifest.
type ManifestEntry struct {
	ID        string
	Href      string
	MediaType string
	Title     string // never populated from the OPF; kept for title fallback
}
