package services

import (
	"context"
	"sort"

	"github.com/anonto42/instaclone/backend/internal/logger"
	"github.com/anonto42/instaclone/backend/internal/metrics"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultPadThreshold = 5
	DefaultPadSize      = 10
)

// FeedComment is a comment as shown under a feed post.
type FeedComment struct {
	models.Comment
	Username   string `json:"username"`
	LikesCount int64  `json:"likes_count"`
	IsLiked    bool   `json:"is_liked"`
}

// FeedPost is a post annotated for one viewer. Nothing here is stored.
type FeedPost struct {
	models.Post
	Author        models.UserCompact `json:"author"`
	LikesCount    int64              `json:"likes_count"`
	CommentsCount int64              `json:"comments_count"`
	IsLiked       bool               `json:"is_liked"`
	Comments      []FeedComment      `json:"comments"`
}

// PostDetail is a post together with the rest of its owner's posts. When
// the viewer may not see the owner's content only Owner is filled and
// Restricted is set.
type PostDetail struct {
	Owner      models.UserCompact `json:"owner"`
	Restricted bool               `json:"restricted"`
	Post       *FeedPost          `json:"post,omitempty"`
	Posts      []FeedPost         `json:"posts,omitempty"`
}

type FeedService struct {
	store        *repositories.Store
	posts        repositories.PostRepository
	padThreshold int
	padSize      int
	metrics      *metrics.Metrics
}

// NewFeedService builds a feed service. Non-positive padding settings fall
// back to the defaults.
func NewFeedService(store *repositories.Store, posts repositories.PostRepository, padThreshold, padSize int, m *metrics.Metrics) *FeedService {
	if padThreshold <= 0 {
		padThreshold = DefaultPadThreshold
	}
	if padSize <= 0 {
		padSize = DefaultPadSize
	}
	return &FeedService{
		store:        store,
		posts:        posts,
		padThreshold: padThreshold,
		padSize:      padSize,
		metrics:      m,
	}
}

// BuildFeed returns posts by the viewer and everyone the viewer follows
// with approval, newest first. A sparse feed is padded with a random sample
// of other users' posts.
func (s *FeedService) BuildFeed(ctx context.Context, viewerID uint) ([]FeedPost, error) {
	followingIDs, err := s.store.Follows.GetApprovedFollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	followingIDs = append(followingIDs, viewerID)

	posts, err := s.posts.GetPostsByUserIDs(ctx, followingIDs)
	if err != nil {
		return nil, err
	}

	padded := false
	if len(posts) < s.padThreshold {
		extra, err := s.posts.SamplePostsExcludingUsers(ctx, followingIDs, s.padSize)
		if err != nil {
			return nil, errors.Wrap(err, "pad feed")
		}
		if len(extra) > 0 {
			posts = append(posts, extra...)
			padded = true
		}
	}
	// Ids compare by byte here, whatever collation the store sorted with.
	sortNewestFirst(posts)

	feed, err := s.annotate(ctx, viewerID, posts)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveFeed(len(feed), padded)
	logger.Log.Debug("Feed built",
		logger.WithUserID(viewerID),
		zap.Int("posts", len(feed)),
		zap.Bool("padded", padded),
	)
	return feed, nil
}

// UserPosts returns postID and every media post of its owner, gated by the
// owner's visibility.
func (s *FeedService) UserPosts(ctx context.Context, viewerID uint, postID string) (*PostDetail, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFoundAs(err, "post")
	}
	owner, err := s.store.Users.GetUserByID(ctx, post.UserID)
	if err != nil {
		return nil, notFoundAs(err, "user")
	}

	allowed, _, err := checkVisibility(ctx, s.store.Follows, owner, viewerID)
	if err != nil {
		return nil, err
	}
	detail := &PostDetail{Owner: owner.ToCompact()}
	if !allowed {
		detail.Restricted = true
		return detail, nil
	}

	ownerPosts, err := s.posts.GetPostsByUserID(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if !containsPost(ownerPosts, post.ID) {
		ownerPosts = append(ownerPosts, *post)
	}
	sortNewestFirst(ownerPosts)

	annotated, err := s.annotate(ctx, viewerID, ownerPosts)
	if err != nil {
		return nil, err
	}
	for i := range annotated {
		if annotated[i].ID == post.ID {
			detail.Post = &annotated[i]
			break
		}
	}
	detail.Posts = annotated
	return detail, nil
}

// annotate attaches authors, counts, comments and the viewer's like flags.
// Each entity kind is fetched with one IN query regardless of post count.
func (s *FeedService) annotate(ctx context.Context, viewerID uint, posts []models.Post) ([]FeedPost, error) {
	feed := make([]FeedPost, 0, len(posts))
	if len(posts) == 0 {
		return feed, nil
	}

	postIDs := make([]string, len(posts))
	for i := range posts {
		postIDs[i] = posts[i].ID
	}

	comments, err := s.store.Comments.GetCommentsByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	commentIDs := make([]uint, len(comments))
	userIDs := make([]uint, 0, len(posts)+len(comments))
	seen := make(map[uint]bool)
	addUser := func(id uint) {
		if !seen[id] {
			seen[id] = true
			userIDs = append(userIDs, id)
		}
	}
	for i := range posts {
		addUser(posts[i].UserID)
	}
	for i := range comments {
		commentIDs[i] = comments[i].ID
		addUser(comments[i].UserID)
	}

	users, err := s.store.Users.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	authors := compactUsers(users)

	likeCounts, err := s.store.Likes.GetLikesCountByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	liked, err := s.store.Likes.GetLikedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return nil, err
	}
	commentLikeCounts, err := s.store.CommentLikes.GetCommentLikesCountByIDs(ctx, commentIDs)
	if err != nil {
		return nil, err
	}
	likedComments, err := s.store.CommentLikes.GetLikedCommentIDs(ctx, viewerID, commentIDs)
	if err != nil {
		return nil, err
	}

	byPost := make(map[string][]FeedComment, len(posts))
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], FeedComment{
			Comment:    c,
			Username:   authors[c.UserID].Username,
			LikesCount: commentLikeCounts[c.ID],
			IsLiked:    likedComments[c.ID],
		})
	}

	for _, p := range posts {
		postComments := byPost[p.ID]
		if postComments == nil {
			postComments = []FeedComment{}
		}
		feed = append(feed, FeedPost{
			Post:          p,
			Author:        authors[p.UserID],
			LikesCount:    likeCounts[p.ID],
			CommentsCount: int64(len(postComments)),
			IsLiked:       liked[p.ID],
			Comments:      postComments,
		})
	}
	return feed, nil
}

// sortNewestFirst orders by created_at descending, then id descending by
// byte comparison so posts created in the same instant keep a stable order.
func sortNewestFirst(posts []models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
}

func containsPost(posts []models.Post, id string) bool {
	for i := range posts {
		if posts[i].ID == id {
			return true
		}
	}
	return false
}
