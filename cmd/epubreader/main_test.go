package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuanying/epubreader/internal/epub"
	"gopkg.in/yaml.v3"
)

// createTestEPUB writes a three chapter book and returns its path.
func createTestEPUB(t *testing.T) string {
	t.Helper()
	files := []struct{ name, body string }{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", `<container><rootfiles><rootfile full-path="OEBPS/content.opf"/></rootfiles></container>`},
		{"OEBPS/content.opf", `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>CLI Book</dc:title>
    <dc:creator>Test Writer</dc:creator>
    <dc:identifier>urn:uuid:cli-book</dc:identifier>
  </metadata>
  <manifest>
    <item id="c1" href="c1.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="c2.xhtml" media-type="application/xhtml+xml"/>
    <item id="c3" href="c3.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine><itemref idref="c1"/><itemref idref="c2"/><itemref idref="c3"/></spine>
</package>`},
		{"OEBPS/c1.xhtml", `<html><head><title>Opening</title></head><body><p>Once upon a time.</p></body></html>`},
		{"OEBPS/c2.xhtml", `<html><body><h1>Middle</h1><p>Things happened here.</p></body></html>`},
		{"OEBPS/c3.xhtml", `<html><body><p>The end.</p></body></html>`},
	}

	path := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for _, file := range files {
		fw, err := w.Create(file.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(file.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestReadGlobalOptions_Defaults(t *testing.T) {
	t.Setenv(storeEnv, "/tmp/epubreader-test-store")
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	opts, err := readGlobalOptions(cmd)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/epubreader-test-store", opts.StoreDir)
	require.NotNil(t, opts.Logger)
	assert.True(t, opts.Logger.Enabled(context.Background(), slog.LevelWarn))
	assert.False(t, opts.Logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestReadGlobalOptions_Verbose(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--log-level", "error", "--verbose", "--store", "/data/store"}))

	opts, err := readGlobalOptions(cmd)
	require.NoError(t, err)
	assert.Equal(t, "/data/store", opts.StoreDir)
	// --verbose overrides log-level to debug
	assert.True(t, opts.Logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestReadGlobalOptions_Invalid(t *testing.T) {
	tests := []struct {
		flags []string
		want  string
	}{
		{[]string{"--log-level", "trace"}, "--log-level"},
		{[]string{"--log-format", "yaml"}, "--log-format"},
	}
	for _, tt := range tests {
		cmd := newRootCmd()
		require.NoError(t, cmd.ParseFlags(tt.flags))
		_, err := readGlobalOptions(cmd)
		require.Error(t, err)
		assert.Contains(t, err.Error(), tt.want)
	}
}

func TestBuildLogger_FormatNormalization(t *testing.T) {
	var buf bytes.Buffer
	logger := buildLogger(&buf, "info", "JSON")
	logger.Info("test message")

	// JSON format should produce JSON output (starts with '{')
	output := buf.String()
	require.NotEmpty(t, output)
	assert.Equal(t, byte('{'), output[0])
}

func TestBookID(t *testing.T) {
	doc := &epub.Document{Identifier: "urn:isbn:123"}
	assert.Equal(t, "flag", bookID("flag", doc, "/books/a.epub"))
	assert.Equal(t, "urn:isbn:123", bookID("", doc, "/books/a.epub"))
	assert.Equal(t, "a.epub", bookID("", &epub.Document{}, "/books/a.epub"))
}

func TestInfo_Text(t *testing.T) {
	out, err := run(t, "info", createTestEPUB(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Title:    CLI Book")
	assert.Contains(t, out, "Author:   Test Writer")
	assert.Contains(t, out, "Chapters (3):")
	assert.Contains(t, out, "1. Opening (4 words)")
	assert.Contains(t, out, "2. Middle (4 words)")
	assert.Contains(t, out, "3. Chapter 3 (2 words)")
}

func TestInfo_JSON(t *testing.T) {
	out, err := run(t, "info", "--format", "json", "--preview", "4", createTestEPUB(t))
	require.NoError(t, err)

	var info bookInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "CLI Book", info.Title)
	assert.Equal(t, "OEBPS", info.BaseReference)
	require.Len(t, info.Chapters, 3)
	assert.Equal(t, "c2", info.Chapters[1].ID)
	assert.Equal(t, "Once…", info.Chapters[0].Preview)
}

func TestInfo_YAML(t *testing.T) {
	out, err := run(t, "info", "-f", "yaml", createTestEPUB(t))
	require.NoError(t, err)

	var info bookInfo
	require.NoError(t, yaml.Unmarshal([]byte(out), &info))
	assert.Equal(t, "urn:uuid:cli-book", info.Identifier)
	require.Len(t, info.Chapters, 3)
	assert.Equal(t, "c3.xhtml", info.Chapters[2].Href)
}

func TestInfo_InvalidFormat(t *testing.T) {
	_, err := run(t, "info", "--format", "xml", createTestEPUB(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--format")
}

func TestInfo_MissingFile(t *testing.T) {
	_, err := run(t, "info", filepath.Join(t.TempDir(), "missing.epub"))
	require.Error(t, err)
	assert.ErrorIs(t, err, epub.ErrArchiveOpen)
}

func TestRead_RemembersPosition(t *testing.T) {
	book := createTestEPUB(t)
	store := filepath.Join(t.TempDir(), "store")

	out, err := run(t, "read", "--store", store, book)
	require.NoError(t, err)
	assert.Contains(t, out, "== Opening (1/3) ==")

	out, err = run(t, "read", "--store", store, "--chapter", "2", "--text", book)
	require.NoError(t, err)
	assert.Contains(t, out, "== Middle (2/3) ==")
	assert.Contains(t, out, "Middle Things happened here.")

	out, err = run(t, "read", "--store", store, book)
	require.NoError(t, err)
	assert.Contains(t, out, "== Middle (2/3) ==")
	assert.Contains(t, out, "<p>Things happened here.</p>")
}

func TestRead_ChapterOutOfRange(t *testing.T) {
	_, err := run(t, "read", "--store", t.TempDir(), "--chapter", "9", createTestEPUB(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestBookmark(t *testing.T) {
	book := createTestEPUB(t)
	store := filepath.Join(t.TempDir(), "store")

	out, err := run(t, "bookmark", "--store", store, book)
	require.NoError(t, err)
	assert.Contains(t, out, "No bookmarks.")

	_, err = run(t, "bookmark", "--store", store, "-c", "3", book)
	require.NoError(t, err)
	_, err = run(t, "bookmark", "--store", store, "-c", "1", book)
	require.NoError(t, err)

	out, err = run(t, "bookmark", "--store", store, book)
	require.NoError(t, err)
	assert.Equal(t, "   1. Opening\n   3. Chapter 3\n", out)

	_, err = run(t, "bookmark", "--store", store, "-c", "1", "--remove", book)
	require.NoError(t, err)

	out, err = run(t, "bookmark", "--store", store, book)
	require.NoError(t, err)
	assert.Equal(t, "   3. Chapter 3\n", out)
}

func TestBookmark_RemoveRequiresChapter(t *testing.T) {
	_, err := run(t, "bookmark", "--store", t.TempDir(), "--remove", createTestEPUB(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--remove")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab…", truncate("abc", 2))
	assert.Equal(t, "日本…", truncate("日本語", 2))
}
