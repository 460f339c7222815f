package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yuanying/epubreader/internal/epub"
	"github.com/yuanying/epubreader/internal/progress"
)

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <epub-file>",
		Short: "Print one chapter and remember it as the reading position",
		Long: `read prints the content of a chapter. Without --chapter it continues
from the chapter last read in this book.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readGlobalOptions(cmd)
			if err != nil {
				return err
			}
			chapterFlag, _ := cmd.Flags().GetInt("chapter")
			plain, _ := cmd.Flags().GetBool("text")
			idFlag, _ := cmd.Flags().GetString("book-id")
			if chapterFlag < 0 {
				return fmt.Errorf("--chapter must be >= 1: %d", chapterFlag)
			}

			doc, err := epub.NewParser(epub.Options{Logger: opts.Logger}).Parse(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load book: %w", err)
			}
			if doc.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), "No content available.")
				return nil
			}

			store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			id := bookID(idFlag, doc, args[0])
			index := chapterFlag - 1
			if chapterFlag == 0 {
				index, err = lastChapter(cmd, store, id)
				if err != nil {
					return err
				}
			}
			if index >= len(doc.Chapters) {
				if chapterFlag != 0 {
					return fmt.Errorf("--chapter %d out of range: book has %d chapters", chapterFlag, len(doc.Chapters))
				}
				// The book changed since the position was stored.
				index = len(doc.Chapters) - 1
			}

			ch := doc.Chapters[index]
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "== %s (%d/%d) ==\n\n", ch.Title, index+1, len(doc.Chapters))
			if plain {
				fmt.Fprintln(out, epub.PlainText(ch.Content))
			} else {
				fmt.Fprintln(out, ch.Content)
			}

			if err := store.SetLastChapter(cmd.Context(), id, index); err != nil {
				return fmt.Errorf("failed to save reading position: %w", err)
			}
			opts.Logger.Debug("saved reading position", "book_id", id, "chapter", index)
			return nil
		},
	}
	cmd.Flags().IntP("chapter", "c", 0, "Chapter number to print, starting at 1 (default: last read)")
	cmd.Flags().Bool("text", false, "Print plain text instead of markup")
	cmd.Flags().String("book-id", "", "Key for the stored position (default: package identifier or file name)")
	return cmd
}

// lastChapter returns the stored reading position of id, or 0.
func lastChapter(cmd *cobra.Command, store *progress.Store, id string) (int, error) {
	p, err := store.Get(cmd.Context(), id)
	if errors.Is(err, progress.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load reading position: %w", err)
	}
	return p.LastChapter, nil
}
