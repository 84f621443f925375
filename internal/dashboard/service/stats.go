package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"innkeep/internal/dashboard/repository"
	"innkeep/internal/pricing"
	"innkeep/pkg/auth"
	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"
)

const recentBookingsLimit = 5

type DashboardService interface {
	Stats(ctx context.Context, today time.Time) (*model.DashboardStats, error)
}

type dashboardService struct {
	repo repository.StatsRepository
	cfg  *config.Config
}

func NewDashboardService(repo repository.StatsRepository, cfg *config.Config) DashboardService {
	return &dashboardService{
		repo: repo,
		cfg:  cfg,
	}
}

// Stats gathers the admin overview for the given day. Every figure is read
// concurrently; any failure fails the whole call.
func (s *dashboardService) Stats(ctx context.Context, today time.Time) (*model.DashboardStats, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	day := pricing.Date(today)
	active := []string{model.StatusPending, model.StatusConfirmed}
	stayed := []string{model.StatusConfirmed, model.StatusCompleted}
	stats := &model.DashboardStats{Currency: s.cfg.Currency}

	count := func(target *int64, q repository.BookingCount) func() error {
		return func() error {
			n, err := s.repo.CountBookings(ctx, q)
			*target = n
			return err
		}
	}

	tasks := map[string]func() error{
		"total":      count(&stats.TotalBookings, repository.BookingCount{}),
		"pending":    count(&stats.PendingBookings, repository.BookingCount{Statuses: []string{model.StatusPending}}),
		"confirmed":  count(&stats.ConfirmedBookings, repository.BookingCount{Statuses: []string{model.StatusConfirmed}}),
		"cancelled":  count(&stats.CancelledBookings, repository.BookingCount{Statuses: []string{model.StatusCancelled}}),
		"completed":  count(&stats.CompletedBookings, repository.BookingCount{Statuses: []string{model.StatusCompleted}}),
		"check_ins":  count(&stats.CheckInsToday, repository.BookingCount{Statuses: active, CheckInOn: &day}),
		"check_outs": count(&stats.CheckOutsToday, repository.BookingCount{Statuses: stayed, CheckOutOn: &day}),
		"rooms": func() (err error) {
			stats.Rooms, err = s.repo.CountRooms(ctx)
			return err
		},
		"packages": func() (err error) {
			stats.Packages, err = s.repo.CountPackages(ctx)
			return err
		},
		"revenue": func() (err error) {
			stats.Revenue, err = s.repo.Revenue(ctx)
			return err
		},
		"recent": func() (err error) {
			stats.RecentBookings, err = s.repo.Recent(ctx, recentBookingsLimit)
			return err
		},
	}

	var mu sync.Mutex
	var errs []error
	var wg sync.WaitGroup
	wg.Add(len(tasks))

	for name, task := range tasks {
		go func() {
			defer wg.Done()
			if err := task(); err != nil {
				s.cfg.Log.Error("Failed to compute dashboard figure", "figure", name, "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	if len(errs) > 0 {
		return nil, apperrors.Internal("Failed to compute dashboard statistics", errors.Join(errs...))
	}

	if stats.RecentBookings == nil {
		stats.RecentBookings = []*model.Booking{}
	}
	return stats, nil
}
