package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/config"
	"github.com/oksasatya/go-social-crud/internal/container"
	"github.com/oksasatya/go-social-crud/internal/domain/entity"
	"github.com/oksasatya/go-social-crud/internal/domain/repository"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
)

const seedPassword = "Password123"

type seedUser struct {
	username string
	email    string
	role     entity.Role
	private  bool
	posts    []string
}

var seedUsers = []seedUser{
	{username: "admin", email: "admin@example.com", role: entity.RoleAdmin},
	{username: "alice", email: "alice@example.com", role: entity.RoleUser, posts: []string{
		"Hello from alice",
		"Second post, now with comments enabled",
	}},
	{username: "bob", email: "bob@example.com", role: entity.RoleUser, private: true, posts: []string{
		"Only my followers can read this",
	}},
}

// Seeds an admin, a public and a private user with a few posts; alice
// follows bob. Existing users are left untouched, so reruns are safe.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx := context.Background()
	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("init: %v", err)
	}
	defer c.Close()

	hash, err := helpers.HashPassword(seedPassword)
	if err != nil {
		logger.Fatalf("hash password: %v", err)
	}

	ids := make(map[string]int64, len(seedUsers))
	for _, su := range seedUsers {
		u, err := c.Repos.Users.GetByUsername(ctx, su.username)
		switch {
		case err == nil:
			logger.WithField("username", su.username).Info("user exists; skipping")
			ids[su.username] = u.ID
			continue
		case !errors.Is(err, repository.ErrNotFound):
			logger.Fatalf("lookup %s: %v", su.username, err)
		}

		u, err = c.Repos.Users.Save(ctx, &entity.User{
			Username:  su.username,
			Email:     su.email,
			Password:  hash,
			Role:      su.role,
			IsPrivate: su.private,
		})
		if err != nil {
			logger.Fatalf("seed user %s: %v", su.username, err)
		}
		ids[su.username] = u.ID
		if c.Search != nil {
			if err := c.Search.IndexUser(ctx, u); err != nil {
				helpers.LogError(logger, "index user", err, logrus.Fields{"user_id": u.ID})
			}
		}

		for _, content := range su.posts {
			p, err := c.Repos.Posts.Save(ctx, &entity.Post{Content: content, AuthorID: u.ID})
			if err != nil {
				logger.Fatalf("seed post for %s: %v", su.username, err)
			}
			if c.Search != nil {
				if err := c.Search.IndexPost(ctx, p); err != nil {
					helpers.LogError(logger, "index post", err, logrus.Fields{"post_id": p.ID})
				}
			}
		}
		logger.WithFields(logrus.Fields{"id": u.ID, "username": u.Username, "role": u.Role}).Info("seeded user")
	}

	if err := c.Repos.Users.Follow(ctx, ids["alice"], ids["bob"]); err != nil && !errors.Is(err, repository.ErrConflict) {
		logger.Fatalf("seed follow: %v", err)
	}
	logger.Infof("done; every seeded user signs in with password %q", seedPassword)
}
