package blogs

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tahsinratul/life-client/cmd/lifectl/cmd/cmdutil"
	"github.com/tahsinratul/life-client/internal/app"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// BlogsCmd reads and publishes articles
var BlogsCmd = &cobra.Command{
	Use:   "blogs",
	Short: "Read and publish articles",
}

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.MustFromContext(cmd.Context())
		blogs, err := a.Public.ListBlogs(cmdutil.Context(cmd), sdk.BlogQuery{Limit: listLimit})
		if err != nil {
			return fmt.Errorf("failed to list blogs: %w", err)
		}
		rows := make([][]string, 0, len(blogs))
		for _, b := range blogs {
			rows = append(rows, []string{b.ID, b.Title, b.Author, b.PublishDate.Format("2006-01-02"), strconv.Itoa(b.TotalVisit)})
		}
		return cmdutil.Table([]string{"ID", "TITLE", "AUTHOR", "PUBLISHED", "VISITS"}, rows)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <blog-id>",
	Short: "Read an article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.MustFromContext(cmd.Context())
		ctx := cmdutil.Context(cmd)
		blog, err := a.Public.GetBlog(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get blog: %w", err)
		}
		if err := a.Public.VisitBlog(ctx, args[0]); err != nil {
			a.Logger.Warn().Err(err).Str("blog", args[0]).Msg("failed to count blog visit")
		}
		pterm.DefaultSection.Println(blog.Title)
		pterm.Printf("By %s on %s\n\n", blog.Author, blog.PublishDate.Format("2006-01-02"))
		pterm.Println(blog.Content)
		return nil
	},
}

var (
	postTitle   string
	postContent string
	postImage   string
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Publish an article (agents)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cmdutil.Require(cmd, cmdutil.Agent)
		if err != nil {
			return err
		}
		blog, err := a.API().CreateBlog(cmdutil.Context(cmd), a.Session.Current(), sdk.Blog{
			Title:   postTitle,
			Content: postContent,
			Image:   postImage,
		})
		if err != nil {
			return fmt.Errorf("failed to publish blog: %w", err)
		}
		pterm.Success.Printf("Published %q (%s)\n", blog.Title, blog.ID)
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of articles")

	postCmd.Flags().StringVar(&postTitle, "title", "", "Article title")
	postCmd.Flags().StringVar(&postContent, "content", "", "Article body")
	postCmd.Flags().StringVar(&postImage, "image", "", "Cover image URL")
	_ = postCmd.MarkFlagRequired("title")
	_ = postCmd.MarkFlagRequired("content")

	BlogsCmd.AddCommand(listCmd)
	BlogsCmd.AddCommand(getCmd)
	BlogsCmd.AddCommand(postCmd)
}
