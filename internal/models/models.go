package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PrivacyLevel controls who may view a post
type PrivacyLevel string

const (
	PrivacyPublic        PrivacyLevel = "public"
	PrivacyFollowersOnly PrivacyLevel = "followers-only"
	PrivacyPrivate       PrivacyLevel = "private"
)

// ContentType classifies a post for the diversity constrainer
type ContentType string

const (
	ContentStatus ContentType = "status"
	ContentPhoto  ContentType = "photo"
	ContentShare  ContentType = "share"
)

// ReactionCategory is the kind of reaction a user left on a post
type ReactionCategory string

const (
	ReactionLike  ReactionCategory = "like"
	ReactionLove  ReactionCategory = "love"
	ReactionLaugh ReactionCategory = "laugh"
	ReactionWow   ReactionCategory = "wow"
	ReactionSad   ReactionCategory = "sad"
)

// ValidReactionCategories lists the accepted reaction categories
var ValidReactionCategories = []ReactionCategory{
	ReactionLike, ReactionLove, ReactionLaugh, ReactionWow, ReactionSad,
}

// StringArray stores a string slice as JSON text so it works on both
// Postgres and SQLite
type StringArray []string

// User represents a Pawgrove account
type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string `gorm:"not null" json:"display_name"`
	Bio         string `gorm:"type:text" json:"bio"`
	AvatarURL   string `json:"avatar_url"`

	// Feed personalization
	MutedKeywords StringArray `gorm:"type:text;serializer:json" json:"muted_keywords"`
	HomePlaceID   *string     `gorm:"type:uuid;index" json:"home_place_id,omitempty"`
	HomePlace     *Place      `gorm:"foreignKey:HomePlaceID" json:"home_place,omitempty"`

	// Social stats (cached counters, not source of truth)
	FollowerCount  int `gorm:"default:0" json:"follower_count"`
	FollowingCount int `gorm:"default:0" json:"following_count"`
	PostCount      int `gorm:"default:0" json:"post_count"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Pet represents a pet profile owned by a user
type Pet struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerID string `gorm:"not null;index" json:"owner_id"`
	Owner   User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Name      string `gorm:"not null" json:"name"`
	Species   string `gorm:"not null" json:"species"` // "dog", "cat", "parrot", ...
	Breed     string `json:"breed"`
	AvatarURL string `json:"avatar_url"`

	FollowerCount int `gorm:"default:0" json:"follower_count"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Post represents a feed post, optionally attributed to a pet
type Post struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	AuthorID string `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	PetID    *string `gorm:"type:uuid;index" json:"pet_id,omitempty"`
	Pet      *Pet    `gorm:"foreignKey:PetID" json:"pet,omitempty"`

	// Content
	Title       string       `json:"title"`
	Content     string       `gorm:"type:text" json:"content"`
	ContentType ContentType  `gorm:"default:status;index" json:"content_type"`
	Privacy     PrivacyLevel `gorm:"default:public" json:"privacy"`

	// Shares reference the origin post; share counts are derived from these
	SharedFromID *string `gorm:"type:uuid;index" json:"shared_from_id,omitempty"`

	// Ranking context
	PlaceID *string `gorm:"type:uuid;index" json:"place_id,omitempty"`
	Place   *Place  `gorm:"foreignKey:PlaceID" json:"place,omitempty"`

	// Engagement counters (cached; the aggregator recomputes from rows)
	ReactionCount int `gorm:"default:0" json:"reaction_count"`
	CommentCount  int `gorm:"default:0" json:"comment_count"`
	SaveCount     int `gorm:"default:0" json:"save_count"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PostReaction is one user's reaction to a post
type PostReaction struct {
	ID       string           `gorm:"primaryKey;type:uuid" json:"id"`
	PostID   string           `gorm:"not null;index:idx_post_reactions_unique,unique" json:"post_id"`
	Post     Post             `gorm:"foreignKey:PostID" json:"-"`
	UserID   string           `gorm:"not null;index:idx_post_reactions_unique,unique" json:"user_id"`
	User     User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category ReactionCategory `gorm:"not null" json:"category"`

	CreatedAt time.Time `json:"created_at"`
}

// Comment represents a comment on a post
type Comment struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID string `gorm:"not null;index" json:"post_id"`
	Post   Post   `gorm:"foreignKey:PostID" json:"-"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Content string `gorm:"type:text;not null" json:"content"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Follow represents a user following another user
type Follow struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	FollowerID string `gorm:"not null;index:idx_follows_unique,unique" json:"follower_id"`
	Follower   User   `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	FolloweeID string `gorm:"not null;index:idx_follows_unique,unique" json:"followee_id"`
	Followee   User   `gorm:"foreignKey:FolloweeID" json:"followee,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// PetFollow represents a user following a pet profile
type PetFollow struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	FollowerID string `gorm:"not null;index:idx_pet_follows_unique,unique" json:"follower_id"`
	Follower   User   `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	PetID      string `gorm:"not null;index:idx_pet_follows_unique,unique" json:"pet_id"`
	Pet        Pet    `gorm:"foreignKey:PetID" json:"pet,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// MutedUser represents a user muting another user
// Muting hides the muted user's posts from the feed without unfollowing
type MutedUser struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string `gorm:"not null;index:idx_muted_users_unique,unique" json:"user_id"`
	User        User   `gorm:"foreignKey:UserID" json:"-"`
	MutedUserID string `gorm:"not null;index:idx_muted_users_unique,unique" json:"muted_user_id"`
	MutedUser   User   `gorm:"foreignKey:MutedUserID" json:"muted_user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the join table name stable
func (MutedUser) TableName() string {
	return "muted_users"
}

// UserBlock represents a user blocking another user
// Visibility checks treat blocks as bidirectional
type UserBlock struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	BlockerID string `gorm:"not null;index:idx_user_blocks_unique,unique" json:"blocker_id"`
	Blocker   User   `gorm:"foreignKey:BlockerID" json:"blocker,omitempty"`
	BlockedID string `gorm:"not null;index:idx_user_blocks_unique,unique" json:"blocked_id"`
	Blocked   User   `gorm:"foreignKey:BlockedID" json:"blocked,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName keeps the join table name stable
func (UserBlock) TableName() string {
	return "user_blocks"
}

// HiddenPost represents a post a user explicitly hid from their feed
type HiddenPost struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index:idx_hidden_posts_unique,unique" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`
	PostID string `gorm:"not null;index:idx_hidden_posts_unique,unique" json:"post_id"`
	Post   Post   `gorm:"foreignKey:PostID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// SavedPost represents a bookmarked post
type SavedPost struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index:idx_saved_posts_unique,unique" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`
	PostID string `gorm:"not null;index:idx_saved_posts_unique,unique" json:"post_id"`
	Post   Post   `gorm:"foreignKey:PostID" json:"post,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Place is a location posts can be tagged with, used as ranking context
type Place struct {
	ID   string `gorm:"primaryKey;type:uuid" json:"id"`
	Name string `gorm:"not null" json:"name"`
	City string `json:"city"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hooks for GORM

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}

func (p *Pet) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	if p.Privacy == "" {
		p.Privacy = PrivacyPublic
	}
	if p.ContentType == "" {
		p.ContentType = ContentStatus
	}
	return nil
}

func (r *PostReaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}

func (f *PetFollow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}

func (m *MutedUser) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = generateUUID()
	}
	return nil
}

func (b *UserBlock) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = generateUUID()
	}
	return nil
}

func (h *HiddenPost) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = generateUUID()
	}
	return nil
}

func (s *SavedPost) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = generateUUID()
	}
	return nil
}

func (p *Place) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

// Helper function for UUID generation
func generateUUID() string {
	return uuid.New().String()
}

// GetAvatarURL returns the user's avatar or an empty string for nil receivers
func (u *User) GetAvatarURL() string {
	if u == nil {
		return ""
	}
	return u.AvatarURL
}
