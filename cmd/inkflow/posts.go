package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"inkflow/internal/content"
	"inkflow/internal/models"
)

func newPostsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Read and write posts",
	}
	cmd.AddCommand(
		postsListCmd(a),
		postsFeaturedCmd(a),
		postsShowCmd(a),
		postsSearchCmd(a),
		postsTagCmd(a),
		postsMineCmd(a),
		postsByCmd(a),
		postsCreateCmd(a),
		postsUpdateCmd(a),
		postsDeleteCmd(a),
		postsLikeCmd(a),
	)
	return cmd
}

func postsListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "list", Short: "List all posts, newest first", Args: cobra.NoArgs}
	cmd.RunE = a.runE(func(ctx context.Context, _ []string) error {
		if err := a.posts.FetchPosts(ctx); err != nil {
			return err
		}
		return a.print(a.posts.Snapshot().Posts)
	})
	return cmd
}

func postsFeaturedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "featured", Short: "List the most liked posts", Args: cobra.NoArgs}
	cmd.RunE = a.runE(func(ctx context.Context, _ []string) error {
		if err := a.posts.FetchPosts(ctx); err != nil {
			return err
		}
		return a.print(a.posts.Snapshot().FeaturedPosts)
	})
	return cmd
}

func postsShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "show [id]", Short: "Show one post", Args: cobra.ExactArgs(1)}
	cmd.RunE = a.runE(func(ctx context.Context, args []string) error {
		p, err := a.posts.FetchPostByID(ctx, args[0])
		if err != nil {
			return err
		}
		if p == nil {
			return models.ErrPostNotFound
		}
		return a.print(p)
	})
	return cmd
}

type searchResult struct {
	Query   string        `json:"query"`
	Tag     string        `json:"tag,omitempty"`
	Tags    []string      `json:"tags"`
	Results []models.Post `json:"results"`
}

func postsSearchCmd(a *app) *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search titles, content, excerpts and tags",
		Long: `Search matches the query case-insensitively against title, content,
excerpt and tags. A blank query finds nothing. The output lists the tags
present in the results; --tag narrows the results to one of them.`,
		Args: cobra.MinimumNArgs(1),
	}
	cmd.Flags().StringVar(&tag, "tag", "", "keep only results carrying this exact tag")
	cmd.RunE = a.runE(func(ctx context.Context, args []string) error {
		query := strings.Join(args, " ")
		found := []models.Post{}
		if strings.TrimSpace(query) != "" {
			var err error
			if found, err = a.content.SearchPosts(ctx, query); err != nil {
				return err
			}
		}
		return a.print(searchResult{
			Query:   query,
			Tag:     tag,
			Tags:    content.TagFacet(found),
			Results: content.FilterByTag(found, tag),
		})
	})
	return cmd
}

func postsTagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "tag [tag]", Short: "List posts with a tag (case-insensitive)", Args: cobra.MinimumNArgs(1)}
	cmd.RunE = a.runE(func(ctx context.Context, args []string) error {
		posts, err := a.content.PostsByTag(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return a.print(posts)
	})
	return cmd
}

func postsMineCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "mine", Short: "List the signed-in user's posts", Args: cobra.NoArgs}
	cmd.RunE = a.runE(func(ctx context.Context, _ []string) error {
		u, err := a.currentUser()
		if err != nil {
			return err
		}
		posts, err := a.content.PostsByAuthor(ctx, u.ID)
		if err != nil {
			return err
		}
		return a.print(posts)
	})
	return cmd
}

func postsByCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "by [author-id]", Short: "List posts by an author", Args: cobra.ExactArgs(1)}
	cmd.RunE = a.runE(func(ctx context.Context, args []string) error {
		posts, err := a.content.PostsByAuthor(ctx, args[0])
		if err != nil {
			return err
		}
		return a.print(posts)
	})
	return cmd
}

type postFlags struct {
	title, excerpt, body, cover string
	tags                        []string
}

func (f *postFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "post title")
	cmd.Flags().StringVar(&f.excerpt, "excerpt", "", "short summary")
	cmd.Flags().StringVar(&f.body, "content", "", "post body")
	cmd.Flags().StringVar(&f.cover, "cover", "", "cover image URL")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "tag (repeatable)")
}

// patch includes only the flags given on the command line.
func (f *postFlags) patch(cmd *cobra.Command) models.PostPatch {
	var p models.PostPatch
	changed := cmd.Flags().Changed
	if changed("title") {
		p.Title = &f.title
	}
	if changed("excerpt") {
		p.Excerpt = &f.excerpt
	}
	if changed("content") {
		p.Content = &f.body
	}
	if changed("cover") {
		p.CoverImage = &f.cover
	}
	if changed("tag") {
		p.Tags = &f.tags
	}
	return p
}

func postsCreateCmd(a *app) *cobra.Command {
	var f postFlags
	cmd := &cobra.Command{Use: "create", Short: "Publish a post as the signed-in user", Args: cobra.NoArgs}
	f.register(cmd)
	cmd.RunE = a.runE(func(ctx context.Context, _ []string) error {
		p, err := a.posts.CreatePost(ctx, models.PostInput{
			Title:      f.title,
			Excerpt:    f.excerpt,
			Content:    f.body,
			CoverImage: f.cover,
			Tags:       f.tags,
		})
		if err != nil {
			return err
		}
		return a.print(p)
	})
	return cmd
}

func postsUpdateCmd(a *app) *cobra.Command {
	var f postFlags
	cmd := &cobra.Command{Use: "update [id]", Short: "Edit one of your posts", Args: cobra.ExactArgs(1)}
	f.register(cmd)
	cmd.RunE = a.runE(func(ctx context.Context, args []string) error {
		p, err := a.posts.UpdatePost(ctx, args[0], f.patch(cmd))
		if err != nil {
			return err
		}
		return a.print(p)
	})
	return cmd
}

func postsDeleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "delete [id]", Short: "Delete one of your posts", Args: cobra.ExactArgs(1)}
	cmd.RunE = a.runE(func(ctx context.Context, args []string) error {
		ok, err := a.posts.DeletePost(ctx, args[0])
		if err != nil {
			return err
		}
		return a.print(map[string]any{"id": args[0], "deleted": ok})
	})
	return cmd
}

func postsLikeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "like [id]", Short: "Like a post", Args: cobra.ExactArgs(1)}
	cmd.RunE = a.runE(func(ctx context.Context, args []string) error {
		if err := a.posts.Load(ctx); err != nil {
			return err
		}
		if err := a.posts.LikePost(ctx, args[0]); err != nil {
			return err
		}
		for _, p := range a.posts.Snapshot().Posts {
			if p.ID == args[0] {
				return a.print(map[string]any{"id": p.ID, "likes": p.Likes})
			}
		}
		return models.ErrPostNotFound
	})
	return cmd
}
