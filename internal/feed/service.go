package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pawgrove/pawgrove/backend/internal/logger"
	"github.com/pawgrove/pawgrove/backend/internal/metrics"
	"github.com/pawgrove/pawgrove/backend/internal/models"
	"go.uber.org/zap"
)

// Store is the read contract the pipeline consumes. Implementations resolve
// viewers, the post corpus and batched engagement counters.
type Store interface {
	CountSource

	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPets(ctx context.Context, ids []string) (map[string]*models.Pet, error)
	ViewerContext(ctx context.Context, viewerID string) (*ViewerContext, error)
}

// AuthorSummary is the minimal author projection returned with each post
type AuthorSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// PetSummary is the minimal pet projection returned with each post
type PetSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Species   string `json:"species"`
}

// EnrichedPost is a feed post with author and pet projections attached.
// Counters reflect the aggregator's view, not the cached model columns.
type EnrichedPost struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Content       string              `json:"content"`
	ContentType   models.ContentType  `json:"content_type"`
	Privacy       models.PrivacyLevel `json:"privacy"`
	SharedFromID  *string             `json:"shared_from_id,omitempty"`
	PlaceID       *string             `json:"place_id,omitempty"`
	ReactionCount int                 `json:"reaction_count"`
	CommentCount  int                 `json:"comment_count"`
	ShareCount    int                 `json:"share_count"`
	SaveCount     int                 `json:"save_count"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Author        *AuthorSummary      `json:"author"`
	Pet           *PetSummary         `json:"pet"`
}

// Page is one cursor-paginated slice of a processed feed
type Page struct {
	Posts      []EnrichedPost `json:"posts"`
	NextCursor *string        `json:"nextCursor"`
	HasMore    bool           `json:"hasMore"`
	Total      int            `json:"total"`
}

// Config tunes the pipeline; zero values fall back to defaults
type Config struct {
	Rank             RankConfig
	Diversity        DiversityConfig
	DiscoveryOffsets []int
	Now              func() time.Time
}

// Service orchestrates the feed pipeline: visibility, aggregation, cache
// check, ranking, diversity, discovery injection and pagination
type Service struct {
	store   Store
	cache   Cache
	rankCfg RankConfig
	divCfg  DiversityConfig
	offsets []int
	now     func() time.Time
}

// NewService creates a feed service. The cache is injected rather than
// owned so its size and TTL policy are decided at composition time.
func NewService(store Store, cache Cache, cfg Config) *Service {
	if cfg.Rank == (RankConfig{}) {
		cfg.Rank = DefaultRankConfig()
	}
	if cfg.Diversity == (DiversityConfig{}) {
		cfg.Diversity = DefaultDiversityConfig()
	}
	if cfg.DiscoveryOffsets == nil {
		cfg.DiscoveryOffsets = DefaultDiscoveryOffsets
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		store:   store,
		cache:   cache,
		rankCfg: cfg.Rank,
		divCfg:  cfg.Diversity,
		offsets: cfg.DiscoveryOffsets,
		now:     cfg.Now,
	}
}

// Page runs the pipeline for one request and returns the requested slice.
// The total visible count is recomputed fresh each call even when the
// processed list is served from cache.
//
// Concurrent requests for the same (viewer, scope) may race to recompute
// and overwrite the same cache entry; the recompute is idempotent and the
// last writer wins, so no locking is done here.
func (s *Service) Page(ctx context.Context, viewerID string, scope Scope, afterCursor string, limit int) (*Page, error) {
	m := metrics.Get()

	viewer, err := s.store.ViewerContext(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer context: %w", err)
	}

	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	authors := make(map[string]*models.User, len(users))
	for i := range users {
		authors[users[i].ID] = &users[i]
	}

	visible := FilterVisible(posts, authors, viewer, scope)
	total := len(visible)
	m.FeedVisiblePostsPerScope.WithLabelValues(string(scope)).Observe(float64(total))

	eng := Aggregate(ctx, s.store, visible)
	if eng.Failures > 0 {
		m.FeedAggregationFailures.WithLabelValues(string(scope)).Add(float64(eng.Failures))
	}
	sig := Signature(eng, viewer)

	key := Key(viewerID, scope)
	var list []models.Post
	if entry, ok := s.cache.Get(key); ok && entry.Signature == sig {
		list = entry.Posts
		m.FeedCacheHitsTotal.WithLabelValues(string(scope)).Inc()
	} else {
		reason := "absent"
		if ok {
			reason = "signature"
		}
		m.FeedCacheMissesTotal.WithLabelValues(string(scope), reason).Inc()

		started := s.now()
		list = s.compute(visible, eng, viewer, scope)
		m.FeedGenerationTime.WithLabelValues(string(scope)).Observe(s.now().Sub(started).Seconds())

		s.cache.Put(key, &Entry{
			Posts:     list,
			Total:     total,
			Signature: sig,
			CachedAt:  s.now(),
		})

		logger.Log.Debug("feed recomputed",
			logger.WithViewerID(viewerID),
			logger.WithScope(string(scope)),
			zap.Int("visible", total),
			zap.Int("ranked", len(list)),
			zap.String("reason", reason))
	}

	pagePosts, nextCursor, hasMore := paginate(list, afterCursor, limit)

	enriched, err := s.enrich(ctx, pagePosts, authors, eng)
	if err != nil {
		return nil, fmt.Errorf("failed to enrich feed page: %w", err)
	}

	return &Page{
		Posts:      enriched,
		NextCursor: nextCursor,
		HasMore:    hasMore,
		Total:      total,
	}, nil
}

// compute runs ranking, diversity and (for the global scope) discovery
// injection over the visible set
func (s *Service) compute(visible []models.Post, eng *Engagement, viewer *ViewerContext, scope Scope) []models.Post {
	now := s.now()

	if scope == ScopeFollowing {
		ranked := Rank(visible, eng, viewer, now, s.rankCfg)
		return Diversify(ranked, s.divCfg)
	}

	base, pool := s.splitFollowGraph(visible, viewer)
	ranked := Rank(base, eng, viewer, now, s.rankCfg)
	diversified := Diversify(ranked, s.divCfg)

	injected := Inject(diversified, pool, viewer, s.offsets, s.divCfg)
	if added := len(injected) - len(diversified); added > 0 {
		metrics.Get().FeedDiscoveryInjections.WithLabelValues().Add(float64(added))
	}
	return injected
}

// splitFollowGraph partitions the visible set into the follow-graph base
// (followed authors, followed pets, the viewer's own posts) and the
// discovery pool (everything else, recency-ranked). The pool is built from
// the already visibility-filtered set and muted keywords are enforced here,
// since injected posts bypass the ranker.
func (s *Service) splitFollowGraph(visible []models.Post, viewer *ViewerContext) (base, pool []models.Post) {
	for i := range visible {
		p := visible[i]
		inGraph := p.AuthorID == viewer.ViewerID ||
			viewer.FollowsAuthor(p.AuthorID) ||
			(p.PetID != nil && viewer.FollowsPet(*p.PetID))

		if inGraph {
			base = append(base, p)
			continue
		}
		if matchesMutedKeyword(&p, viewer.MutedKeywords) {
			continue
		}
		pool = append(pool, p)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if !pool[i].CreatedAt.Equal(pool[j].CreatedAt) {
			return pool[i].CreatedAt.After(pool[j].CreatedAt)
		}
		return pool[i].ID < pool[j].ID
	})

	return base, pool
}

// paginate slices the processed list strictly after the cursor. An unknown
// cursor starts from the beginning. The next cursor is the id of the last
// returned item only when more items remain.
func paginate(list []models.Post, afterCursor string, limit int) ([]models.Post, *string, bool) {
	start := 0
	if afterCursor != "" {
		for i := range list {
			if list[i].ID == afterCursor {
				start = i + 1
				break
			}
		}
	}

	end := start + limit
	if end > len(list) {
		end = len(list)
	}
	if start > len(list) {
		start = len(list)
	}

	page := list[start:end]
	hasMore := end < len(list)

	var nextCursor *string
	if hasMore && len(page) > 0 {
		id := page[len(page)-1].ID
		nextCursor = &id
	}

	return page, nextCursor, hasMore
}

// enrich attaches author and pet projections to the page's posts. Missing
// references yield nil projections rather than errors.
func (s *Service) enrich(ctx context.Context, posts []models.Post, authors map[string]*models.User, eng *Engagement) ([]EnrichedPost, error) {
	petIDs := make([]string, 0, len(posts))
	seen := make(map[string]bool)
	for i := range posts {
		if posts[i].PetID != nil && !seen[*posts[i].PetID] {
			seen[*posts[i].PetID] = true
			petIDs = append(petIDs, *posts[i].PetID)
		}
	}

	pets := map[string]*models.Pet{}
	if len(petIDs) > 0 {
		loaded, err := s.store.GetPets(ctx, petIDs)
		if err != nil {
			// A missing pet projection is not worth failing the page over
			logger.WarnWithFields("failed to load pet projections", err)
		} else {
			pets = loaded
		}
	}

	enriched := make([]EnrichedPost, len(posts))
	for i := range posts {
		p := posts[i]

		ep := EnrichedPost{
			ID:            p.ID,
			Title:         p.Title,
			Content:       p.Content,
			ContentType:   p.ContentType,
			Privacy:       p.Privacy,
			SharedFromID:  p.SharedFromID,
			PlaceID:       p.PlaceID,
			ReactionCount: eng.ReactionCounts[p.ID],
			CommentCount:  eng.CommentCounts[p.ID],
			ShareCount:    eng.ShareCounts[p.ID],
			SaveCount:     eng.SaveCounts[p.ID],
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
		}

		if author := authors[p.AuthorID]; author != nil {
			ep.Author = &AuthorSummary{
				ID:          author.ID,
				Username:    author.Username,
				DisplayName: author.DisplayName,
				AvatarURL:   author.AvatarURL,
			}
		}

		if p.PetID != nil {
			if pet := pets[*p.PetID]; pet != nil {
				ep.Pet = &PetSummary{
					ID:        pet.ID,
					Name:      pet.Name,
					AvatarURL: pet.AvatarURL,
					Species:   pet.Species,
				}
			}
		}

		enriched[i] = ep
	}

	return enriched, nil
}
