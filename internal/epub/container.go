package epub

import (
	"bytes"
	"encoding/xml"
	"strings"

	"golang.org/x/net/html/charset"
)

const (
	// ContainerPath is the fixed location of the container descriptor.
	ContainerPath = "META-INF/container.xml"

	// DefaultPackagePath is used when the container descriptor is missing,
	// malformed, or names no rootfile.
	DefaultPackagePath = "OEBPS/content.opf"
)

// LocatePackage returns the package document path named by the first
// rootfile element of container.xml, or DefaultPackagePath.
func LocatePackage(a *Archive) string {
	p, _ := locatePackage(a)
	return p
}

// locatePackage is LocatePackage that also reports whether the path came
// from container.xml.
func locatePackage(a *Archive) (string, bool) {
	data, err := a.ReadFile(ContainerPath)
	if err != nil {
		return DefaultPackagePath, false
	}
	if p, ok := findRootfile(data); ok {
		return p, true
	}
	return DefaultPackagePath, false
}

// findRootfile scans container.xml for the first rootfile full-path attribute.
// It stops at the first match and does not build a tree.
func findRootfile(data []byte) (string, bool) {
	d := newDecoder(data)
	for {
		tok, err := d.Token()
		if err != nil {
			return "", false
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "rootfile" {
			continue
		}
		p := strings.TrimSpace(attr(se, "full-path"))
		if p == "" {
			return "", false
		}
		return normalizePath(p), true
	}
}

// newDecoder returns an xml.Decoder tolerant of the usual EPUB deviations:
// a byte order mark, non UTF-8 encodings and HTML named entities.
func newDecoder(data []byte) *xml.Decoder {
	d := xml.NewDecoder(bytes.NewReader(stripBOM(data)))
	d.CharsetReader = charset.NewReaderLabel
	d.Entity = xml.HTMLEntity
	return d
}

// attr returns the value of the attribute with the given local name.
func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
