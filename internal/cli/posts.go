package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/flatblog/internal/medium"
	"github.com/yourusername/flatblog/internal/post"
)

// PostsOptions holds flags for the posts subcommands.
type PostsOptions struct {
	*RootOptions
	Title   string
	Content string
	Author  string
}

// NewPostsCommand creates the posts command group.
func NewPostsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PostsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Manage posts in the data file",
		Long: `Manage posts in the data file.

"create" and "delete" take the same lock as "serve" and fail while the server
is running; use the web forms instead. "list" and "publish" only read the file.`,
	}

	cmd.AddCommand(newPostsListCommand(opts))
	cmd.AddCommand(newPostsCreateCommand(opts))
	cmd.AddCommand(newPostsDeleteCommand(opts))
	cmd.AddCommand(newPostsPublishCommand(opts))

	return cmd
}

func newPostsListCommand(opts *PostsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List posts in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(opts.Config, opts.Logger)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SLUG\tDATE\tAUTHOR\tTITLE")
			for _, p := range store.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Slug, p.Date, p.Author, p.Title)
			}
			return w.Flush()
		},
	}
}

func newPostsCreateCommand(opts *PostsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Long: `Create a post. Each line of --content becomes a paragraph.

Example:
  flatblog posts create --title "Hello World" --author Ada --content "First line"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, unlock, err := openLockedStore(opts.Config, opts.Logger)
			if err != nil {
				return err
			}
			defer unlock()

			p, err := store.Create(opts.Title, opts.Content, opts.Author)
			if err != nil {
				return fmt.Errorf("failed to create post: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.Slug)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Title, "title", "t", "", "post title (required)")
	cmd.Flags().StringVar(&opts.Content, "content", "", "post body, one paragraph per line")
	cmd.Flags().StringVarP(&opts.Author, "author", "a", "", "author name")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newPostsDeleteCommand(opts *PostsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, unlock, err := openLockedStore(opts.Config, opts.Logger)
			if err != nil {
				return err
			}
			defer unlock()

			if err := store.Delete(args[0]); err != nil {
				return fmt.Errorf("failed to delete %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newPostsPublishCommand(opts *PostsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <slug>",
		Short: "Cross-post a post to Medium",
		Long: `Cross-post a post to Medium as HTML using medium.publish_status.

The token comes from MEDIUM_TOKEN or medium.token.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.Config
			token := cfg.GetMediumToken()
			if token == "" {
				return errors.New("MEDIUM_TOKEN is required (set in config.yaml or environment variable)")
			}

			store, err := openStore(cfg, opts.Logger)
			if err != nil {
				return err
			}
			p, err := store.Find(args[0])
			if err != nil {
				return fmt.Errorf("failed to find %s: %w", args[0], err)
			}

			pub := medium.NewPublisherWithLogger(token, cfg.Medium.APIURL, cfg.Medium.PublishStatus, opts.Logger)
			return publish(cmd, pub, p)
		},
	}
}

func publish(cmd *cobra.Command, pub medium.Publisher, p post.Post) error {
	url, err := pub.Publish(cmd.Context(), p)
	if err != nil {
		return fmt.Errorf("failed to publish post: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), url)
	return nil
}
