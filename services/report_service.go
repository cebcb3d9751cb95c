package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/officesports/matchday/models"
	"github.com/officesports/matchday/repositories"
)

// Dashboard bundles the two tracker views: what is coming up and who just
// won.
type Dashboard struct {
	Upcoming      []*models.Match `json:"upcoming"`
	RecentWinners []*models.Match `json:"recent_winners"`
}

type ReportService interface {
	UpcomingMatches(ctx context.Context, limit int) ([]*models.Match, error)
	RecentWinners(ctx context.Context, limit int) ([]*models.Match, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type reportService struct {
	matchRepo repositories.MatchRepository
}

func NewReportService(matchRepo repositories.MatchRepository) ReportService {
	return &reportService{matchRepo: matchRepo}
}

const (
	defaultUpcomingLimit = 50
	defaultWinnersLimit  = 20
)

func (s *reportService) UpcomingMatches(ctx context.Context, limit int) ([]*models.Match, error) {
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	return s.matchRepo.Upcoming(ctx, limit)
}

func (s *reportService) RecentWinners(ctx context.Context, limit int) ([]*models.Match, error) {
	if limit <= 0 {
		limit = defaultWinnersLimit
	}
	return s.matchRepo.RecentWinners(ctx, limit)
}

func (s *reportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	dashboard := &Dashboard{}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		upcoming, err := s.matchRepo.Upcoming(gCtx, defaultUpcomingLimit)
		if err != nil {
			return err
		}
		dashboard.Upcoming = upcoming
		return nil
	})
	g.Go(func() error {
		winners, err := s.matchRepo.RecentWinners(gCtx, defaultWinnersLimit)
		if err != nil {
			return err
		}
		dashboard.RecentWinners = winners
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dashboard, nil
}
