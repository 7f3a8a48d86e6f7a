/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aoki-blog/apiserver/config"
	"github.com/aoki-blog/apiserver/internal/auth"
	"github.com/aoki-blog/apiserver/internal/db"
	"github.com/aoki-blog/apiserver/internal/store"
	"github.com/aoki-blog/apiserver/types"
	"github.com/spf13/cobra"
)

// seedCmd loads a small demo data set: one admin, two readers, two posts
// (one still a draft), and a few comments.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with demo users, posts, and comments",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = dbConn.Close()
		}()

		return seed(cmd.Context(), dbConn)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func seed(ctx context.Context, dbConn *sql.DB) error {
	users := store.NewUserRepository(dbConn)
	posts := store.NewPostRepository(dbConn)
	comments := store.NewCommentRepository(dbConn)

	admin, err := seedUser(ctx, users, "Maximilian Aoki", "admin@gmail.com", "123456", true)
	if err != nil {
		return err
	}
	theo, err := seedUser(ctx, users, "Theodor Aoki", "theo@gmail.com", "234567", false)
	if err != nil {
		return err
	}
	arhum, err := seedUser(ctx, users, "Arhum Chaudhary", "arhum@gmail.com", "345678", false)
	if err != nil {
		return err
	}

	published, err := posts.Create(ctx, types.Post{
		Title:       "How to Tie a Tie",
		Overview:    "This blog post will get into how to tie a tie",
		Text:        "Really it's not that hard - look up a video",
		IsPublished: true,
		Author:      types.PrincipalOf(admin).Snapshot(),
	})
	if err != nil {
		return fmt.Errorf("seed post: %w", err)
	}

	draft, err := posts.Create(ctx, types.Post{
		Title:       "Different kinds of Cameras",
		Overview:    "A not-very-in-depth review of cameras",
		Text:        "Some are DSLRs and some aren't - look up a video to learn more",
		IsPublished: false,
		Author:      types.PrincipalOf(admin).Snapshot(),
	})
	if err != nil {
		return fmt.Errorf("seed post: %w", err)
	}

	seedComments := []types.Comment{
		{
			Text:   "Super inspiring article!",
			Author: types.PrincipalOf(theo).Snapshot(),
			PostID: published.ID,
		},
		{
			Text:   "Honestly I'm not convinced you added anything of value to the discussion",
			Author: types.PrincipalOf(arhum).Snapshot(),
			PostID: published.ID,
		},
		{
			Text:   "This is a test comment on an unpublished post",
			Author: types.PrincipalOf(admin).Snapshot(),
			PostID: draft.ID,
		},
	}
	for _, comment := range seedComments {
		if _, err := comments.Create(ctx, comment); err != nil {
			return fmt.Errorf("seed comment: %w", err)
		}
	}

	return nil
}

func seedUser(ctx context.Context, users *store.UserRepository, fullName, email, password string, isAdmin bool) (types.User, error) {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return types.User{}, fmt.Errorf("seed user %s: %w", email, err)
	}
	user, err := users.Create(ctx, types.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hashed,
		IsAdmin:      isAdmin,
	})
	if err != nil {
		return types.User{}, fmt.Errorf("seed user %s: %w", email, err)
	}
	return user, nil
}
