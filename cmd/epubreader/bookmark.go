package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yuanying/epubreader/internal/epub"
	"github.com/yuanying/epubreader/internal/progress"
)

func newBookmarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmark <epub-file>",
		Short: "Add, remove or list chapter bookmarks",
		Long: `bookmark adds the chapter given by --chapter to the book's bookmarks,
or removes it with --remove. Without --chapter it lists the bookmarks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readGlobalOptions(cmd)
			if err != nil {
				return err
			}
			chapterFlag, _ := cmd.Flags().GetInt("chapter")
			remove, _ := cmd.Flags().GetBool("remove")
			idFlag, _ := cmd.Flags().GetString("book-id")
			if chapterFlag < 0 {
				return fmt.Errorf("--chapter must be >= 1: %d", chapterFlag)
			}
			if remove && chapterFlag == 0 {
				return errors.New("--remove requires --chapter")
			}

			doc, err := epub.NewParser(epub.Options{Logger: opts.Logger}).Parse(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load book: %w", err)
			}
			if chapterFlag > len(doc.Chapters) {
				return fmt.Errorf("--chapter %d out of range: book has %d chapters", chapterFlag, len(doc.Chapters))
			}

			store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			id := bookID(idFlag, doc, args[0])
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			switch {
			case remove:
				if err := store.RemoveBookmark(ctx, id, chapterFlag-1); err != nil {
					return fmt.Errorf("failed to remove bookmark: %w", err)
				}
				fmt.Fprintf(out, "Removed bookmark: chapter %d\n", chapterFlag)
				return nil
			case chapterFlag > 0:
				if err := store.AddBookmark(ctx, id, chapterFlag-1); err != nil {
					return fmt.Errorf("failed to add bookmark: %w", err)
				}
				fmt.Fprintf(out, "Bookmarked: chapter %d\n", chapterFlag)
				return nil
			}

			p, err := store.Get(ctx, id)
			if errors.Is(err, progress.ErrNotFound) || (err == nil && len(p.Bookmarks) == 0) {
				fmt.Fprintln(out, "No bookmarks.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to load bookmarks: %w", err)
			}
			for _, index := range p.Bookmarks {
				title := "(missing)"
				if index < len(doc.Chapters) {
					title = doc.Chapters[index].Title
				}
				fmt.Fprintf(out, "%4d. %s\n", index+1, title)
			}
			return nil
		},
	}
	cmd.Flags().IntP("chapter", "c", 0, "Chapter number, starting at 1")
	cmd.Flags().Bool("remove", false, "Remove the bookmark instead of adding it")
	cmd.Flags().String("book-id", "", "Key for the stored bookmarks (default: package identifier or file name)")
	return cmd
}
