// Debug program for the container and package document scan.
//
// Usage:
//
//	go run ./cmd/test/opf_parser/main.go <epub-file-path>
//
// This program will:
// - Open the EPUB file and list its entries
// - Show the package document path found via container.xml
// - Display title, author, identifier and language
// - List markup manifest items and the spine order
// - Show which spine entries resolve to archive entries
package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/yuanying/epubreader/internal/epub"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <epub-file-path>\n", os.Args[0])
		os.Exit(1)
	}

	epubPath := os.Args[1]

	fmt.Println("=== EPUB Package Document Scan ===")
	fmt.Printf("File: %s\n\n", epubPath)

	archive, err := epub.OpenArchive(epubPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening EPUB: %v\n", err)
		os.Exit(1)
	}
	defer archive.Close()

	files := archive.Files()
	fmt.Printf("Entries: %d\n", len(files))
	for _, name := range files {
		fmt.Printf("  - %s\n", name)
	}

	pkgPath := epub.LocatePackage(archive)
	fmt.Printf("\nPackage document: %s\n", pkgPath)

	data, err := archive.ReadFile(pkgPath)
	if errors.Is(err, epub.ErrFileNotFound) {
		fmt.Println("⚠ package document missing, the book has no chapters")
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading package document: %v\n", err)
		os.Exit(1)
	}

	pkg := epub.ParsePackage(data)
	fmt.Printf("Title:      %s\n", pkg.Title)
	fmt.Printf("Author:     %s\n", pkg.Author)
	fmt.Printf("Identifier: %s\n", pkg.Identifier)
	fmt.Printf("Language:   %s\n", pkg.Language)

	ids := make([]string, 0, len(pkg.Manifest))
	for id := range pkg.Manifest {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	fmt.Printf("\nManifest (markup items): %d\n", len(ids))
	for _, id := range ids {
		item := pkg.Manifest[id]
		fmt.Printf("  %-20s %-40s %s\n", id, item.Href, item.MediaType)
	}

	fmt.Printf("\nSpine: %d\n", len(pkg.Spine))
	for i, idref := range pkg.Spine {
		item, ok := pkg.Manifest[idref]
		if !ok {
			fmt.Printf("  [%d] %s ⚠ not in manifest\n", i+1, idref)
			continue
		}
		p := epub.ResolveHref(pkgPath, item.Href)
		if _, err := archive.ReadFile(p); err != nil {
			fmt.Printf("  [%d] %s -> %s ⚠ %v\n", i+1, idref, p, err)
			continue
		}
		fmt.Printf("  [%d] %s -> %s ✓\n", i+1, idref, p)
	}
}
