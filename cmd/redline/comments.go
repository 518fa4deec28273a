package main

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/redline/pkg/core"
	"github.com/aretw0/redline/pkg/gesture"
)

var (
	addKind string
	addPage int
	addAt   []float64
	addRect []float64
)

// The CLI drives the same pointer pipeline the UI does, against a synthetic
// 1000x1000 surface where one pixel is a tenth of a percent.
var cliSurface = image.Rect(0, 0, 1000, 1000)

func toSurface(x, y float64) image.Point {
	return image.Pt(int(x*10), int(y*10))
}

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "List and manage annotations on the loaded version",
}

var commentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List annotations grouped by page",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		session := openSession(context.Background())

		for _, group := range session.Sidebar().Groups() {
			fmt.Printf("Page %d\n", group.Page)
			for _, a := range group.Annotations {
				state := " "
				if a.Resolved {
					state = "x"
				}
				author := a.AuthorName
				if author == "" {
					author = "anonymous"
				}
				fmt.Printf("  [%s] %s  %s  %s: %s\n", state, a.ID, a.Kind, author, a.Content)
			}
		}
	},
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Add an annotation",
	Long: `Add an annotation to a page. Pins take --at x,y; highlights and strikes
take --rect x,y,w,h. Coordinates are percentages of the page.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		session := openSession(ctx)

		tool, err := gesture.ParseTool(addKind)
		if err != nil {
			fatal("Unknown annotation kind", err)
		}
		if err := session.SetPage(addPage); err != nil {
			fatal("Bad page", err)
		}
		if err := session.SelectTool(tool); err != nil {
			fatal("Cannot annotate", err)
		}

		var from, to image.Point
		switch {
		case tool == gesture.ToolPin && len(addAt) == 2:
			from = toSurface(addAt[0], addAt[1])
			to = from
		case tool != gesture.ToolPin && len(addRect) == 4:
			from = toSurface(addRect[0], addRect[1])
			to = toSurface(addRect[0]+addRect[2], addRect[1]+addRect[3])
		default:
			fatal("Bad geometry", fmt.Errorf("%s needs %s", tool, geometryFlag(tool)))
		}

		if err := session.PointerDown(from, cliSurface); err != nil {
			fatal("Failed to place annotation", err)
		}
		session.PointerMove(to, cliSurface)
		if err := session.PointerUp(ctx, to, cliSurface); err != nil {
			fatal("Failed to place annotation", err)
		}

		ann, err := session.SubmitPending(ctx, args[0])
		if err != nil {
			fatal("Failed to save annotation", err)
		}
		fmt.Println("Added", ann.Kind, ann.ID, "on page", ann.Page)
	},
}

func geometryFlag(tool gesture.Tool) string {
	if tool == gesture.ToolPin {
		return "--at x,y"
	}
	return "--rect x,y,w,h"
}

var commentsResolveCmd = &cobra.Command{
	Use:   "resolve <id>...",
	Short: "Mark annotations resolved",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		session := openSession(ctx)
		for _, id := range args {
			if err := session.ResolveAnnotation(ctx, id, true); err != nil {
				fatal(fmt.Sprintf("Failed to resolve %s", id), err)
			}
		}
		fmt.Printf("Resolved %d annotation(s), %d still open\n", len(args), session.UnresolvedComments())
	},
}

var commentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete annotations",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		session := openSession(ctx)
		for _, id := range args {
			if err := session.DeleteAnnotation(ctx, id); err != nil {
				fatal(fmt.Sprintf("Failed to delete %s", id), err)
			}
		}
		fmt.Printf("Deleted %d annotation(s)\n", len(args))
	},
}

func init() {
	rootCmd.AddCommand(commentsCmd)
	commentsCmd.AddCommand(commentsListCmd)
	commentsCmd.AddCommand(commentsAddCmd)
	commentsCmd.AddCommand(commentsResolveCmd)
	commentsCmd.AddCommand(commentsDeleteCmd)

	kinds := []string{string(core.KindComment), string(core.KindHighlight), string(core.KindStrike)}
	commentsAddCmd.Flags().StringVar(&addKind, "kind", string(core.KindComment), "Annotation kind: "+strings.Join(kinds, ", "))
	commentsAddCmd.Flags().IntVar(&addPage, "page", 1, "Page number")
	commentsAddCmd.Flags().Float64SliceVar(&addAt, "at", nil, "Pin position as x,y percentages")
	commentsAddCmd.Flags().Float64SliceVar(&addRect, "rect", nil, "Region as x,y,w,h percentages")
}
