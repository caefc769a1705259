package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anonto42/instaclone/backend/internal/logger"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/internal/seed"
	"github.com/anonto42/instaclone/backend/pkg/config"
	"github.com/spf13/cobra"
)

var (
	users        int
	postsPerUser int
	privateRatio float64
	randomSeed   int64
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill a development database with fake data",
	Long: `seed creates fake users, follow edges, posts, likes and comments.
It uses the same environment as the server, including POST_STORE.
Every seeded account logs in with the password "` + seed.DefaultPassword + `".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.IsProduction() {
			return fmt.Errorf("refusing to seed a production environment")
		}
		if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
			return err
		}
		defer logger.Close()

		ctx := cmd.Context()
		db, err := config.InitDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.CloseDB()
		if err := db.Migrate(); err != nil {
			return err
		}

		var posts repositories.PostRepository = repositories.NewPostgresPostRepository(db.Postgres)
		if db.Mongo != nil {
			posts = repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDatabase))
		}

		stats, err := seed.NewSeeder(repositories.NewStore(db.Postgres), posts, randomSeed).Run(ctx, seed.Options{
			Users:        users,
			PostsPerUser: postsPerUser,
			PrivateRatio: privateRatio,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d users, %d follows, %d posts, %d likes, %d comments\n",
			stats.Users, stats.Follows, stats.Posts, stats.Likes, stats.Comments)
		return nil
	},
}

func init() {
	rootCmd.Flags().IntVar(&users, "users", 20, "Number of users to create")
	rootCmd.Flags().IntVar(&postsPerUser, "posts", 5, "Posts per user")
	rootCmd.Flags().Float64Var(&privateRatio, "private-ratio", 0.25, "Share of private accounts (0..1)")
	rootCmd.Flags().Int64Var(&randomSeed, "seed", time.Now().UnixNano(), "Random seed")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
