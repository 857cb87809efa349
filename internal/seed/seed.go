package seed

import (
	"context"
	"fmt"
	"log/slog"

	"findlost/internal/middleware"
	"findlost/internal/models"
	"findlost/internal/repository"
)

// Options control how much demo data Run creates.
type Options struct {
	Users int
	Items int
	// RecoveredPercent of the items get recovered by another user.
	RecoveredPercent int
	Seed             int64
	MaxDays          int
	DryRun           bool
}

// Summary counts what a seeding run created.
type Summary struct {
	Users      int
	Items      int
	Recoveries int
}

// Seeder writes generated data through the repositories, so any store
// driver can be seeded.
type Seeder struct {
	repos   *repository.Repositories
	factory *Factory
	opts    Options
}

// NewSeeder creates a Seeder for repos.
func NewSeeder(repos *repository.Repositories, opts Options) *Seeder {
	return &Seeder{
		repos:   repos,
		factory: NewFactory(opts.Seed, opts.MaxDays),
		opts:    opts,
	}
}

// Run creates users, spreads items over them and recovers a share of the
// items through the regular recovery protocol.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	if s.opts.Users <= 0 {
		return sum, nil
	}

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		user := s.factory.BuildUser()
		if err := s.createUser(ctx, user); err != nil {
			return sum, err
		}
		users = append(users, user)
		sum.Users++
	}

	for i := 0; i < s.opts.Items; i++ {
		owner := users[i%len(users)]
		item := s.factory.BuildItem(owner)
		if err := s.createItem(ctx, item); err != nil {
			return sum, err
		}
		sum.Items++

		if len(users) < 2 || !s.shouldRecover(i) {
			continue
		}
		recoverer := users[(i+1)%len(users)]
		if err := s.recordRecovery(ctx, s.factory.BuildRecovery(item, recoverer)); err != nil {
			return sum, err
		}
		sum.Recoveries++
	}

	middleware.Logger.Info("seeding complete",
		slog.Int("users", sum.Users),
		slog.Int("items", sum.Items),
		slog.Int("recoveries", sum.Recoveries),
		slog.Bool("dry_run", s.opts.DryRun),
	)
	return sum, nil
}

// shouldRecover spreads RecoveredPercent evenly over the item sequence.
func (s *Seeder) shouldRecover(i int) bool {
	p := s.opts.RecoveredPercent
	if p <= 0 {
		return false
	}
	if p >= 100 {
		return true
	}
	return (i+1)*p/100 > i*p/100
}

func (s *Seeder) createUser(ctx context.Context, user *models.User) error {
	if s.opts.DryRun {
		middleware.Logger.Info("[dry-run] create user", slog.String("email", user.Email))
		return nil
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return nil
}

func (s *Seeder) createItem(ctx context.Context, item *models.Item) error {
	if s.opts.DryRun {
		middleware.Logger.Info("[dry-run] create item", slog.String("title", item.Title))
		return nil
	}
	if err := s.repos.Items.Create(ctx, item); err != nil {
		return fmt.Errorf("create item %q: %w", item.Title, err)
	}
	return nil
}

func (s *Seeder) recordRecovery(ctx context.Context, rec *models.RecoveredItem) error {
	if s.opts.DryRun {
		middleware.Logger.Info("[dry-run] record recovery", slog.String("recoverer", rec.RecoveryInfo.Email))
		return nil
	}
	if err := s.repos.Recoveries.Record(ctx, rec); err != nil {
		return fmt.Errorf("recover item %s: %w", rec.ItemID, err)
	}
	return nil
}
