package epub

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// scanState is the parser state carried between tokens of the OPF scan.
type scanState struct {
	element    string // local name of the innermost open element, "" after it closes
	text       string // character data collected for element
	inMetadata bool
}

// ParsePackage parses OPF content into a PackageDocument.
// It never fails: malformed markup yields an empty PackageDocument.
func ParsePackage(content []byte) *PackageDocument {
	pkg := newPackageDocument()
	d := newDecoder(content)

	var st scanState
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return pkg
		}
		if err != nil {
			return newPackageDocument()
		}
		st = st.step(tok, pkg)
	}
}

func newPackageDocument() *PackageDocument {
	return &PackageDocument{Manifest: make(map[string]ManifestEntry)}
}

// step applies one token to pkg and returns the next state.
func (st scanState) step(tok xml.Token, pkg *PackageDocument) scanState {
	switch t := tok.(type) {
	case xml.StartElement:
		st.element = t.Name.Local
		st.text = ""
		switch t.Name.Local {
		case "metadata":
			st.inMetadata = true
		case "item":
			addManifestItem(pkg, t)
		case "itemref":
			if idref := attr(t, "idref"); idref != "" {
				pkg.Spine = append(pkg.Spine, idref)
			}
		}
	case xml.EndElement:
		if st.inMetadata && st.element != "" {
			setMetadata(pkg, st.element, strings.TrimSpace(st.text))
		}
		if t.Name.Local == "metadata" {
			st.inMetadata = false
		}
		st.element = ""
		st.text = ""
	case xml.CharData:
		// Comments and CDATA sections split the text into several tokens.
		if st.inMetadata && st.element != "" {
			st.text += string(t)
		}
	}
	return st
}

// addManifestItem records markup items. A later item with the same id
// replaces the earlier one.
func addManifestItem(pkg *PackageDocument, se xml.StartElement) {
	id, href, mediaType := attr(se, "id"), attr(se, "href"), attr(se, "media-type")
	if id == "" || href == "" || mediaType == "" {
		return
	}
	if !isMarkup(mediaType) {
		return
	}
	pkg.Manifest[id] = ManifestEntry{
		ID:        id,
		Href:      href,
		MediaType: mediaType,
	}
}

// setMetadata fills the first non-empty value of each recognised field.
// Element names are local, so dc:title and title are equivalent.
func setMetadata(pkg *PackageDocument, element, text string) {
	if text == "" {
		return
	}
	var field *string
	switch element {
	case "title":
		field = &pkg.Title
	case "creator", "author":
		field = &pkg.Author
	case "identifier":
		field = &pkg.Identifier
	case "language":
		field = &pkg.Language
	default:
		return
	}
	if *field == "" {
		*field = text
	}
}

// isMarkup checks if a media type indicates a markup content file.
func isMarkup(mediaType string) bool {
	return strings.Contains(mediaType, "html") || strings.Contains(mediaType, "xml")
}
