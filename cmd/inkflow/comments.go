package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

func newCommentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Read and write comments",
	}

	list := &cobra.Command{Use: "list [post-id]", Short: "List a post's comments, oldest first", Args: cobra.ExactArgs(1)}
	list.RunE = a.runE(func(ctx context.Context, args []string) error {
		comments, err := a.content.PostComments(ctx, args[0])
		if err != nil {
			return err
		}
		return a.print(comments)
	})

	add := &cobra.Command{Use: "add [post-id] [text]", Short: "Comment on a post as the signed-in user", Args: cobra.MinimumNArgs(2)}
	add.RunE = a.runE(func(ctx context.Context, args []string) error {
		u, err := a.currentUser()
		if err != nil {
			return err
		}
		c, err := a.content.AddComment(ctx, args[0], u.ID, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return a.print(c)
	})

	cmd.AddCommand(list, add)
	return cmd
}
