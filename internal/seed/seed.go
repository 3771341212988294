// Package seed fills a fresh store with demo users and content.
//
// Everything goes through the service layer, so seeded data obeys the
// same validation and publishes the same activity events as real traffic.
package seed

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"redshare/internal/comment"
	"redshare/internal/common"
	"redshare/internal/gallery"
	"redshare/internal/interaction"
	"redshare/internal/social"
	"redshare/internal/user"
)

const (
	DemoUsername = "demo"
	DemoPassword = "demo1234"
)

var usernameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

type Options struct {
	Users            int
	GalleriesPerUser int
	// Seed makes the generated data reproducible. Zero picks a random one.
	Seed int64
}

func DefaultOptions() Options {
	return Options{Users: 6, GalleriesPerUser: 3}
}

type Result struct {
	Users     int
	Galleries int
	Comments  int
	// Skipped is set when the demo account already exists.
	Skipped bool
}

type Seeder struct {
	users        user.UserService
	social       social.SocialService
	galleries    gallery.GalleryService
	interactions interaction.InteractionService
	comments     comment.CommentService
	logger       *zap.Logger
}

func NewSeeder(
	users user.UserService,
	socialService social.SocialService,
	galleries gallery.GalleryService,
	interactions interaction.InteractionService,
	comments comment.CommentService,
	logger *zap.Logger,
) *Seeder {
	return &Seeder{
		users:        users,
		social:       socialService,
		galleries:    galleries,
		interactions: interactions,
		comments:     comments,
		logger:       logger.Named("seed"),
	}
}

type seededUser struct {
	id       uint64
	username string
}

func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Users < 2 {
		opts.Users = 2
	}
	if opts.GalleriesPerUser < 1 {
		opts.GalleriesPerUser = 1
	}
	f := gofakeit.New(opts.Seed)

	demo, _, err := s.users.RegisterUser(ctx, DemoUsername, "demo@redshare.local", DemoPassword)
	if errors.Is(err, common.ErrDuplicateUsername) {
		s.logger.Info("demo data already present, skipping")
		return Result{Skipped: true}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("register demo user: %w", err)
	}

	users := []seededUser{{id: demo.ID, username: demo.Username}}
	for len(users) < opts.Users {
		u, err := s.registerFake(ctx, f)
		if err != nil {
			return Result{}, err
		}
		users = append(users, u)
	}
	res := Result{Users: len(users)}

	// Everyone follows the demo account; it follows roughly half of them back.
	for _, u := range users[1:] {
		if err := s.social.Follow(ctx, u.id, demo.ID); err != nil {
			return res, fmt.Errorf("follow: %w", err)
		}
		if f.Bool() {
			if err := s.social.Follow(ctx, demo.ID, u.id); err != nil {
				return res, fmt.Errorf("follow: %w", err)
			}
		}
	}

	var galleryIDs []uint64
	for _, u := range users {
		for i := 0; i < opts.GalleriesPerUser; i++ {
			g, err := s.galleries.CreateGallery(ctx, u.id, fakeGallery(f, i))
			if err != nil {
				return res, fmt.Errorf("create gallery for %s: %w", u.username, err)
			}
			galleryIDs = append(galleryIDs, g.ID)
			res.Galleries++
		}
	}

	for _, gid := range galleryIDs {
		n, err := s.interact(ctx, f, users, gid)
		res.Comments += n
		if err != nil {
			return res, err
		}
	}

	s.logger.Info("demo data seeded",
		zap.Int("users", res.Users),
		zap.Int("galleries", res.Galleries),
		zap.Int("comments", res.Comments),
		zap.String("login", DemoUsername),
	)
	return res, nil
}

func (s *Seeder) registerFake(ctx context.Context, f *gofakeit.Faker) (seededUser, error) {
	for attempt := 0; attempt < 10; attempt++ {
		name := fakeUsername(f)
		u, _, err := s.users.RegisterUser(ctx, name, strings.ToLower(name)+"@example.com", f.Password(true, true, true, false, false, 12))
		if errors.Is(err, common.ErrDuplicateUsername) {
			continue
		}
		if err != nil {
			return seededUser{}, fmt.Errorf("register %s: %w", name, err)
		}
		return seededUser{id: u.ID, username: u.Username}, nil
	}
	return seededUser{}, errors.New("could not find a free username")
}

// interact spreads likes, saves and a short comment thread over one gallery.
// Private galleries only get activity from their owner, which the services
// would enforce anyway.
func (s *Seeder) interact(ctx context.Context, f *gofakeit.Faker, users []seededUser, galleryID uint64) (int, error) {
	comments := 0
	var root *uint64
	for _, u := range users {
		if f.Number(0, 2) == 0 {
			continue
		}
		err := s.interactions.Like(ctx, u.id, galleryID)
		if errors.Is(err, common.ErrForbidden) {
			continue
		}
		if err != nil {
			return comments, fmt.Errorf("like: %w", err)
		}
		if f.Bool() {
			if err := s.interactions.Save(ctx, u.id, galleryID); err != nil {
				return comments, fmt.Errorf("save: %w", err)
			}
		}

		c, err := s.comments.CreateComment(ctx, galleryID, u.id, f.Sentence(f.Number(3, 12)), root)
		if err != nil {
			return comments, fmt.Errorf("comment: %w", err)
		}
		comments++
		if root == nil {
			root = &c.ID
		}
	}
	return comments, nil
}

func fakeUsername(f *gofakeit.Faker) string {
	name := usernameChars.ReplaceAllString(f.Username(), "")
	for len(name) < 3 {
		name += f.Letter()
	}
	if len(name) > 30 {
		name = name[:30]
	}
	return name
}

func fakeGallery(f *gofakeit.Faker, n int) gallery.CreateInput {
	in := gallery.CreateInput{
		Title:       strings.TrimSuffix(f.Sentence(f.Number(2, 5)), "."),
		Description: f.Paragraph(1, 2, 12, " "),
		Tags:        strings.Join([]string{f.Hobby(), f.Word(), f.Color()}, ", "),
	}
	if n%4 == 3 {
		in.Visibility = string(common.VisibilityPrivate)
	}

	items := f.Number(1, 3)
	for i := 0; i < items; i++ {
		in.Items = append(in.Items, gallery.NewItem{
			FileURL:  f.ImageURL(1080, 1080),
			FileType: common.MediaFileTypeImage,
		})
	}
	if n%3 == 2 {
		secs := f.Number(5, 300)
		in.Items = append(in.Items, gallery.NewItem{
			FileURL:  fmt.Sprintf("%s/%s.mp4", strings.TrimSuffix(f.URL(), "/"), f.UUID()),
			FileType: common.MediaFileTypeVideo,
			Duration: fmt.Sprintf("%d:%02d", secs/60, secs%60),
		})
	}
	return in
}
