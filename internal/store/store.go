// Package store implements the feed's read contract on top of GORM.
package store

import (
	"context"
	"fmt"

	"github.com/pawgrove/pawgrove/backend/internal/feed"
	"github.com/pawgrove/pawgrove/backend/internal/models"
	"gorm.io/gorm"
)

// GormStore resolves viewers, posts and engagement counters from the
// relational database. It is safe for concurrent use; each call runs its
// own queries on the shared pool.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a database handle
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// GetUser loads a single user by id. Returns gorm.ErrRecordNotFound when
// the user does not exist or is soft-deleted.
func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers loads all active users. Soft-deleted users are excluded, so
// their posts fail the unknown-author visibility check downstream.
func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListPosts loads the active post corpus, newest first so downstream
// ordering is deterministic before ranking
func (s *GormStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// GetPets loads the given pets keyed by id. Missing ids are simply absent
// from the result.
func (s *GormStore) GetPets(ctx context.Context, ids []string) (map[string]*models.Pet, error) {
	result := make(map[string]*models.Pet, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var pets []models.Pet
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&pets).Error; err != nil {
		return nil, fmt.Errorf("failed to load pets: %w", err)
	}
	for i := range pets {
		result[pets[i].ID] = &pets[i]
	}
	return result, nil
}

// ViewerContext assembles the viewer's social-graph state in one pass:
// follows, pet follows, mutes, blocks in both directions, hidden posts and
// the viewer's own personalization settings.
func (s *GormStore) ViewerContext(ctx context.Context, viewerID string) (*feed.ViewerContext, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", viewerID).Error; err != nil {
		return nil, err
	}

	vc := &feed.ViewerContext{
		ViewerID:      viewerID,
		Following:     map[string]bool{},
		FollowedPets:  map[string]bool{},
		Muted:         map[string]bool{},
		Blocked:       map[string]bool{},
		HiddenPosts:   map[string]bool{},
		MutedKeywords: user.MutedKeywords,
	}
	if user.HomePlaceID != nil {
		vc.HomePlaceID = *user.HomePlaceID
	}

	var followeeIDs []string
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", viewerID).
		Pluck("followee_id", &followeeIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load follows: %w", err)
	}
	for _, id := range followeeIDs {
		vc.Following[id] = true
	}

	var petIDs []string
	err = s.db.WithContext(ctx).Model(&models.PetFollow{}).
		Where("follower_id = ?", viewerID).
		Pluck("pet_id", &petIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pet follows: %w", err)
	}
	for _, id := range petIDs {
		vc.FollowedPets[id] = true
	}

	var mutedIDs []string
	err = s.db.WithContext(ctx).Model(&models.MutedUser{}).
		Where("user_id = ?", viewerID).
		Pluck("muted_user_id", &mutedIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load mutes: %w", err)
	}
	for _, id := range mutedIDs {
		vc.Muted[id] = true
	}

	// Blocks cut visibility both ways, so collect the far side of every
	// block row the viewer appears in.
	var blocks []models.UserBlock
	err = s.db.WithContext(ctx).
		Where("blocker_id = ? OR blocked_id = ?", viewerID, viewerID).
		Find(&blocks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load blocks: %w", err)
	}
	for i := range blocks {
		if blocks[i].BlockerID == viewerID {
			vc.Blocked[blocks[i].BlockedID] = true
		} else {
			vc.Blocked[blocks[i].BlockerID] = true
		}
	}

	var hiddenIDs []string
	err = s.db.WithContext(ctx).Model(&models.HiddenPost{}).
		Where("user_id = ?", viewerID).
		Pluck("post_id", &hiddenIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load hidden posts: %w", err)
	}
	for _, id := range hiddenIDs {
		vc.HiddenPosts[id] = true
	}

	return vc, nil
}

// countRow receives one GROUP BY bucket from the counter queries
type countRow struct {
	ID    string
	Count int
}

// CommentCounts returns active comment counts per post in one grouped query
func (s *GormStore) CommentCounts(ctx context.Context, postIDs []string) (map[string]int, error) {
	return s.groupCount(ctx, s.db.WithContext(ctx).Model(&models.Comment{}), "post_id", postIDs)
}

// ReactionCounts returns reaction counts per post in one grouped query
func (s *GormStore) ReactionCounts(ctx context.Context, postIDs []string) (map[string]int, error) {
	return s.groupCount(ctx, s.db.WithContext(ctx).Model(&models.PostReaction{}), "post_id", postIDs)
}

// ShareCounts counts share posts referencing each post. Every share row is
// counted regardless of the sharer's own visibility to the viewer.
func (s *GormStore) ShareCounts(ctx context.Context, postIDs []string) (map[string]int, error) {
	return s.groupCount(ctx, s.db.WithContext(ctx).Model(&models.Post{}), "shared_from_id", postIDs)
}

// SaveCounts returns bookmark counts per post in one grouped query
func (s *GormStore) SaveCounts(ctx context.Context, postIDs []string) (map[string]int, error) {
	return s.groupCount(ctx, s.db.WithContext(ctx).Model(&models.SavedPost{}), "post_id", postIDs)
}

// groupCount runs a single GROUP BY count over the key column restricted to
// the given ids, replacing the per-post COUNT queries this used to need
func (s *GormStore) groupCount(ctx context.Context, query *gorm.DB, keyColumn string, ids []string) (map[string]int, error) {
	counts := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []countRow
	err := query.
		Select(keyColumn+" AS id, COUNT(*) AS count").
		Where(keyColumn+" IN ?", ids).
		Group(keyColumn).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count by %s: %w", keyColumn, err)
	}

	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}
