package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuanying/epubreader/internal/epub"
	"gopkg.in/yaml.v3"
)

// bookInfo is the summary printed by the info command.
type bookInfo struct {
	Title         string        `json:"title,omitempty" yaml:"title,omitempty"`
	Author        string        `json:"author,omitempty" yaml:"author,omitempty"`
	Identifier    string        `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Language      string        `json:"language,omitempty" yaml:"language,omitempty"`
	BaseReference string        `json:"base_reference" yaml:"base_reference"`
	Chapters      []chapterInfo `json:"chapters" yaml:"chapters"`
}

type chapterInfo struct {
	Index   int    `json:"index" yaml:"index"`
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Href    string `json:"href" yaml:"href"`
	Words   int    `json:"words" yaml:"words"`
	Preview string `json:"preview,omitempty" yaml:"preview,omitempty"`
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <epub-file>",
		Short: "Print book metadata and the chapter list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readGlobalOptions(cmd)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			preview, _ := cmd.Flags().GetInt("preview")
			format = strings.ToLower(format)
			switch format {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("--format must be text, json or yaml: %q", format)
			}
			if preview < 0 {
				return fmt.Errorf("--preview must be >= 0: %d", preview)
			}

			doc, err := epub.NewParser(epub.Options{Logger: opts.Logger}).Parse(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load book: %w", err)
			}
			return writeInfo(cmd.OutOrStdout(), newBookInfo(doc, preview), format)
		},
	}
	cmd.Flags().StringP("format", "f", "text", "Output format: text, json, yaml")
	cmd.Flags().Int("preview", 0, "Include the first N characters of each chapter's text")
	return cmd
}

func newBookInfo(doc *epub.Document, preview int) bookInfo {
	info := bookInfo{
		Title:         doc.Title,
		Author:        doc.Author,
		Identifier:    doc.Identifier,
		Language:      doc.Language,
		BaseReference: doc.BaseReference,
		Chapters:      make([]chapterInfo, 0, len(doc.Chapters)),
	}
	for i, c := range doc.Chapters {
		text := epub.PlainText(c.Content)
		ci := chapterInfo{
			Index: i + 1,
			ID:    c.ID,
			Title: c.Title,
			Href:  c.Href,
			Words: len(strings.Fields(text)),
		}
		if preview > 0 {
			ci.Preview = truncate(text, preview)
		}
		info.Chapters = append(info.Chapters, ci)
	}
	return info
}

func writeInfo(w io.Writer, info bookInfo, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintf(w, "Title:    %s\n", orUnknown(info.Title))
	fmt.Fprintf(w, "Author:   %s\n", orUnknown(info.Author))
	if info.Identifier != "" {
		fmt.Fprintf(w, "ID:       %s\n", info.Identifier)
	}
	if info.Language != "" {
		fmt.Fprintf(w, "Language: %s\n", info.Language)
	}
	if len(info.Chapters) == 0 {
		fmt.Fprintln(w, "\nNo content available.")
		return nil
	}
	fmt.Fprintf(w, "\nChapters (%d):\n", len(info.Chapters))
	for _, c := range info.Chapters {
		fmt.Fprintf(w, "%4d. %s (%d words)\n", c.Index, c.Title, c.Words)
		if c.Preview != "" {
			fmt.Fprintf(w, "      %s\n", c.Preview)
		}
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
