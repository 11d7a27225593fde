// Package seed fills the database with realistic development data.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/pawgrove/pawgrove/backend/internal/logger"
	"github.com/pawgrove/pawgrove/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var species = []string{"dog", "cat", "parrot", "rabbit", "hamster", "turtle"}

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev seeds the development database with a realistic social graph:
// users, pets, places, posts across privacy levels, follows and engagement.
func (s *Seeder) SeedDev() error {
	logger.Log.Info("Creating places...")
	places, err := s.seedPlaces(15)
	if err != nil {
		return fmt.Errorf("failed to seed places: %w", err)
	}

	logger.Log.Info("Creating users...")
	users, err := s.seedUsers(100, places)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating pets...")
	pets, err := s.seedPets(users, 150)
	if err != nil {
		return fmt.Errorf("failed to seed pets: %w", err)
	}

	logger.Log.Info("Creating posts...")
	posts, err := s.seedPosts(users, pets, places, 600)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	logger.Log.Info("Creating follows...")
	if err := s.seedFollows(users, pets); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("Creating engagement...")
	if err := s.seedEngagement(users, posts); err != nil {
		return fmt.Errorf("failed to seed engagement: %w", err)
	}

	logger.Log.Info("Seeding complete",
		zap.Int("users", len(users)),
		zap.Int("pets", len(pets)),
		zap.Int("posts", len(posts)),
	)
	return nil
}

func (s *Seeder) seedPlaces(count int) ([]models.Place, error) {
	places := make([]models.Place, 0, count)
	for i := 0; i < count; i++ {
		place := models.Place{
			Name: gofakeit.Company() + " Park",
			City: gofakeit.City(),
		}
		if err := s.db.Create(&place).Error; err != nil {
			return nil, err
		}
		places = append(places, place)
	}
	return places, nil
}

func (s *Seeder) seedUsers(count int, places []models.Place) ([]models.User, error) {
	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		user := models.User{
			Email:       fmt.Sprintf("%s%d@%s", gofakeit.Username(), i, gofakeit.DomainName()),
			Username:    fmt.Sprintf("%s%d", gofakeit.Username(), i),
			DisplayName: gofakeit.Name(),
			Bio:         gofakeit.Sentence(8),
			AvatarURL:   gofakeit.ImageURL(200, 200),
		}

		// A few users mute keywords so ranker exclusion is exercised
		if rand.Intn(10) == 0 {
			user.MutedKeywords = models.StringArray{gofakeit.Word()}
		}
		if len(places) > 0 && rand.Intn(3) == 0 {
			user.HomePlaceID = &places[rand.Intn(len(places))].ID
		}

		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedPets(users []models.User, count int) ([]models.Pet, error) {
	pets := make([]models.Pet, 0, count)
	for i := 0; i < count; i++ {
		owner := users[rand.Intn(len(users))]
		pet := models.Pet{
			OwnerID:   owner.ID,
			Name:      gofakeit.PetName(),
			Species:   species[rand.Intn(len(species))],
			Breed:     gofakeit.Word(),
			AvatarURL: gofakeit.ImageURL(200, 200),
		}
		if err := s.db.Create(&pet).Error; err != nil {
			return nil, err
		}
		pets = append(pets, pet)
	}
	return pets, nil
}

func (s *Seeder) seedPosts(users []models.User, pets []models.Pet, places []models.Place, count int) ([]models.Post, error) {
	privacies := []models.PrivacyLevel{
		models.PrivacyPublic, models.PrivacyPublic, models.PrivacyPublic,
		models.PrivacyFollowersOnly, models.PrivacyPrivate,
	}
	types := []models.ContentType{models.ContentStatus, models.ContentPhoto}

	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		post := models.Post{
			AuthorID:    author.ID,
			Title:       gofakeit.Sentence(4),
			Content:     gofakeit.Paragraph(1, 3, 10, " "),
			ContentType: types[rand.Intn(len(types))],
			Privacy:     privacies[rand.Intn(len(privacies))],
			CreatedAt:   time.Now().Add(-time.Duration(rand.Intn(72)) * time.Hour),
		}

		if len(pets) > 0 && rand.Intn(2) == 0 {
			post.PetID = &pets[rand.Intn(len(pets))].ID
		}
		if len(places) > 0 && rand.Intn(4) == 0 {
			post.PlaceID = &places[rand.Intn(len(places))].ID
		}

		// Some posts are shares of earlier posts
		if len(posts) > 10 && rand.Intn(8) == 0 {
			origin := posts[rand.Intn(len(posts))]
			post.SharedFromID = &origin.ID
			post.ContentType = models.ContentShare
		}

		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedFollows(users []models.User, pets []models.Pet) error {
	for i := range users {
		// Each user follows a handful of others
		for _, j := range rand.Perm(len(users))[:rand.Intn(8)+2] {
			if i == j {
				continue
			}
			follow := models.Follow{
				FollowerID: users[i].ID,
				FolloweeID: users[j].ID,
			}
			if err := s.db.Create(&follow).Error; err != nil {
				return err
			}
		}

		if len(pets) > 0 && rand.Intn(2) == 0 {
			petFollow := models.PetFollow{
				FollowerID: users[i].ID,
				PetID:      pets[rand.Intn(len(pets))].ID,
			}
			if err := s.db.Create(&petFollow).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedEngagement(users []models.User, posts []models.Post) error {
	for i := range posts {
		reactors := rand.Perm(len(users))[:rand.Intn(6)]
		for _, u := range reactors {
			reaction := models.PostReaction{
				PostID:   posts[i].ID,
				UserID:   users[u].ID,
				Category: models.ValidReactionCategories[rand.Intn(len(models.ValidReactionCategories))],
			}
			if err := s.db.Create(&reaction).Error; err != nil {
				return err
			}
		}

		for c := 0; c < rand.Intn(4); c++ {
			comment := models.Comment{
				PostID:  posts[i].ID,
				UserID:  users[rand.Intn(len(users))].ID,
				Content: gofakeit.Sentence(10),
			}
			if err := s.db.Create(&comment).Error; err != nil {
				return err
			}
		}

		if rand.Intn(5) == 0 {
			saved := models.SavedPost{
				UserID: users[rand.Intn(len(users))].ID,
				PostID: posts[i].ID,
			}
			if err := s.db.Create(&saved).Error; err != nil {
				return err
			}
		}
	}

	// A sprinkling of mutes, blocks and hidden posts so visibility rules
	// have data to act on
	for i := 0; i < len(users)/10; i++ {
		a, b := rand.Intn(len(users)), rand.Intn(len(users))
		if a == b {
			continue
		}
		mute := models.MutedUser{UserID: users[a].ID, MutedUserID: users[b].ID}
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&mute).Error; err != nil {
			return err
		}
	}
	for i := 0; i < len(users)/20; i++ {
		a, b := rand.Intn(len(users)), rand.Intn(len(users))
		if a == b {
			continue
		}
		block := models.UserBlock{BlockerID: users[a].ID, BlockedID: users[b].ID}
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&block).Error; err != nil {
			return err
		}
	}
	for i := 0; i < len(posts)/20; i++ {
		hidden := models.HiddenPost{
			UserID: users[rand.Intn(len(users))].ID,
			PostID: posts[rand.Intn(len(posts))].ID,
		}
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&hidden).Error; err != nil {
			return err
		}
	}

	return nil
}
