package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	bookingserrors "innkeep/internal/bookings/errors"
	"innkeep/internal/bookings/events"
	"innkeep/internal/bookings/lifecycle"
	"innkeep/internal/bookings/repository"
	"innkeep/internal/bookings/validator"
	"innkeep/internal/payments/verifier"
	"innkeep/internal/pricing"
	"innkeep/pkg/auth"
	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"
	"innkeep/pkg/sanitizer"
	"innkeep/pkg/sealer"
	"innkeep/pkg/validation"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const completionBatchSize = 100

// Directory is the read-only room and package lookup.
type Directory interface {
	GetRoom(ctx context.Context, id string) (*model.Room, error)
	GetPackage(ctx context.Context, id string) (*model.Package, error)
}

type BookingService interface {
	Quote(ctx context.Context, req *model.QuoteRequest) (*model.Quote, error)
	Submit(ctx context.Context, req *model.SubmitRequest) (*model.Booking, error)
	Get(ctx context.Context, id string, email string) (*model.Booking, error)
	List(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	RecordPayment(ctx context.Context, id string, outcome *model.PaymentOutcome) (*model.Booking, error)
	Cancel(ctx context.Context, id string, req *model.CancelRequest) (*model.Booking, error)
	Complete(ctx context.Context, id string) (*model.Booking, error)
	CompleteDueStays(ctx context.Context, now time.Time) (int, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	directory Directory
	validator *validator.BookingValidator
	tokens    *sealer.Sealer
	verifier  verifier.Verifier
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	directory Directory,
	validator *validator.BookingValidator,
	tokens *sealer.Sealer,
	verifier verifier.Verifier,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		directory: directory,
		validator: validator,
		tokens:    tokens,
		verifier:  verifier,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// quoteToken is the sealed carry-over between the quote and submit steps.
// It holds inputs only; prices are always recomputed.
type quoteToken struct {
	Request   model.QuoteRequest `json:"request"`
	ExpiresAt time.Time          `json:"expires_at"`
}

type pricedStay struct {
	room      *model.Room
	pkg       *model.Package
	stay      model.StayInterval
	breakdown *pricing.Breakdown
}

func (s *bookingService) Quote(ctx context.Context, req *model.QuoteRequest) (*model.Quote, error) {
	if err := s.validator.ValidateQuoteRequest(req); err != nil {
		s.cfg.Log.Warn("Quote request validation failed", "error", err)
		return nil, validationError("Quote request validation failed", err)
	}

	priced, err := s.price(ctx, req)
	if err != nil {
		return nil, err
	}

	// The sealed token is the only party a token submission carries, so it
	// must already be bookable.
	party := model.GuestParty{Adults: req.Adults, Children: req.Children}
	if err := s.checkParty(party, priced.room); err != nil {
		return nil, err
	}

	overlapping, err := s.repo.FindActiveOverlapping(ctx, req.RoomID, priced.stay)
	if err != nil {
		s.cfg.Log.Error("Failed to check availability", "room_id", req.RoomID, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	expiresAt := s.now().UTC().Add(s.cfg.QuoteTokenTTL).Truncate(time.Second)
	normalized := *req
	normalized.CheckIn = priced.stay.CheckIn
	normalized.CheckOut = priced.stay.CheckOut

	token, err := s.tokens.SealJSON(quoteToken{Request: normalized, ExpiresAt: expiresAt})
	if err != nil {
		return nil, apperrors.Internal("Failed to issue quote token", err)
	}

	b := priced.breakdown
	return &model.Quote{
		RoomID:       req.RoomID,
		PackageID:    req.PackageID,
		CheckIn:      priced.stay.CheckIn,
		CheckOut:     priced.stay.CheckOut,
		Adults:       req.Adults,
		Children:     req.Children,
		Nights:       b.Nights,
		RoomRate:     b.RoomRate,
		RoomTotal:    b.RoomTotal,
		PackageRate:  b.PackageRate,
		PackageTotal: b.PackageTotal,
		Total:        b.Total,
		Currency:     s.cfg.Currency,
		Available:    len(overlapping) == 0,
		Token:        token,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *bookingService) Submit(ctx context.Context, req *model.SubmitRequest) (*model.Booking, error) {
	quoteReq, err := s.resolveQuoteRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateQuoteRequest(quoteReq); err != nil {
		s.cfg.Log.Warn("Quote request validation failed", "error", err)
		return nil, validationError("Quote request validation failed", err)
	}

	s.sanitizeSubmission(req)
	if err := s.validator.ValidateGuest(req); err != nil {
		s.cfg.Log.Warn("Guest validation failed", "error", err)
		return nil, validationError("Guest details validation failed", err)
	}

	priced, err := s.price(ctx, quoteReq)
	if err != nil {
		return nil, err
	}

	party := model.GuestParty{Adults: quoteReq.Adults, Children: quoteReq.Children}
	if err := s.checkParty(party, priced.room); err != nil {
		return nil, err
	}

	initial := lifecycle.Initial()
	booking := &model.Booking{
		RoomID:         quoteReq.RoomID,
		PackageID:      quoteReq.PackageID,
		StayInterval:   priced.stay,
		GuestParty:     party,
		GuestInfo:      req.Guest,
		SpecialRequest: req.SpecialRequest,
		Nights:         priced.breakdown.Nights,
		RoomRate:       priced.breakdown.RoomRate,
		PackageRate:    priced.breakdown.PackageRate,
		TotalPrice:     priced.breakdown.Total,
		Currency:       s.cfg.Currency,
		Status:         initial.Status,
		PaymentStatus:  initial.PaymentStatus,
	}

	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "room_id", booking.RoomID, "error", err)
		return nil, validationError("Booking validation failed", err)
	}

	if s.cfg.EnforceAvailability {
		err = s.createExclusive(ctx, booking)
	} else {
		err = s.create(ctx, booking)
	}
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"check_in", booking.CheckIn.Format(time.DateOnly),
		"check_out", booking.CheckOut.Format(time.DateOnly),
		"total_price", booking.TotalPrice,
	)
	s.publish(ctx, model.EventBookingCreated, booking)
	return booking, nil
}

func (s *bookingService) Get(ctx context.Context, id string, email string) (*model.Booking, error) {
	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeGuest(ctx, booking, email); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, 0, err
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.List(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings", "limit", limit, "offset", offset, "error", err)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// RecordPayment applies an external payment outcome. A failed outcome leaves
// the booking unchanged. Replaying a success with the stored reference is a no-op.
func (s *bookingService) RecordPayment(ctx context.Context, id string, outcome *model.PaymentOutcome) (*model.Booking, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	outcome.Provider = sanitizer.TrimAndNormalize(strings.ToLower(outcome.Provider))
	outcome.Reference = strings.TrimSpace(outcome.Reference)
	if err := s.validator.ValidatePaymentOutcome(outcome); err != nil {
		return nil, validationError("Payment outcome validation failed", err)
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if outcome.Reference != "" && booking.PaymentReference == outcome.Reference &&
		lifecycle.Of(booking) == (lifecycle.State{Status: model.StatusConfirmed, PaymentStatus: model.PaymentPaid}) {
		s.cfg.Log.Info("Payment already recorded", "id", id, "reference", outcome.Reference)
		return booking, nil
	}

	if !lifecycle.CanApply(lifecycle.Of(booking), lifecycle.EventPaymentSucceeded) {
		return nil, illegalTransition(booking, lifecycle.EventPaymentSucceeded, lifecycle.ErrIllegalTransition)
	}

	if outcome.Outcome == model.PaymentOutcomeFailed {
		s.cfg.Log.Warn("Payment failed, booking left unchanged",
			"id", id,
			"provider", outcome.Provider,
			"reference", outcome.Reference,
		)
		failed := *booking
		failed.PaymentReference = outcome.Reference
		s.publish(ctx, model.EventPaymentFailed, &failed)
		return booking, nil
	}

	if err := s.verifier.Verify(ctx, booking, outcome); err != nil {
		s.cfg.Log.Warn("Payment verification failed", "id", id, "reference", outcome.Reference, "error", err)
		return nil, err
	}

	reference := outcome.Reference
	if reference == "" {
		reference = "manual-" + uuid.NewString()
	}

	updated, err := s.transition(ctx, booking, lifecycle.EventPaymentSucceeded, reference, "")
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Payment recorded",
		"id", id,
		"provider", outcome.Provider,
		"reference", reference,
		"actor", auth.FromContext(ctx).Subject,
	)
	s.publish(ctx, model.EventBookingPaid, updated)
	return updated, nil
}

// Cancel is open to admins and to the guest named on the booking. Refunds
// are admin-only, and a confirmed stay cannot be cancelled once it has begun.
func (s *bookingService) Cancel(ctx context.Context, id string, req *model.CancelRequest) (*model.Booking, error) {
	req.Reason = sanitizer.SanitizeFreeText(req.Reason)
	req.Email = sanitizer.SanitizeEmail(req.Email)
	if err := s.validator.ValidateCancel(req); err != nil {
		return nil, validationError("Cancellation request validation failed", err)
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeGuest(ctx, booking, req.Email); err != nil {
		return nil, err
	}

	event := lifecycle.EventCancel
	if req.Refund {
		if err := auth.RequireAdmin(ctx); err != nil {
			return nil, apperrors.Forbidden("Refunds require an admin")
		}
		event = lifecycle.EventCancelWithRefund
	}

	if booking.Status == model.StatusConfirmed && !pricing.Today(s.now()).Before(pricing.Date(booking.CheckIn)) {
		return nil, apperrors.IllegalTransition("A stay cannot be cancelled once it has begun").
			WithCause(lifecycle.ErrIllegalTransition)
	}

	updated, err := s.transition(ctx, booking, event, "", req.Reason)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking cancelled",
		"id", id,
		"payment_status", updated.PaymentStatus,
		"actor", auth.FromContext(ctx).Subject,
	)
	s.publish(ctx, model.EventBookingCancelled, updated)
	return updated, nil
}

func (s *bookingService) Complete(ctx context.Context, id string) (*model.Booking, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.transition(ctx, booking, lifecycle.EventComplete, "", "")
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking completed", "id", id, "actor", auth.FromContext(ctx).Subject)
	s.publish(ctx, model.EventBookingCompleted, updated)
	return updated, nil
}

// CompleteDueStays completes every confirmed, paid booking whose check-out
// date is on or before now, and returns how many were completed.
func (s *bookingService) CompleteDueStays(ctx context.Context, now time.Time) (int, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return 0, err
	}

	cutoff := pricing.Today(now)
	completed := 0
	skipped := map[string]struct{}{}

	for {
		due, err := s.repo.FindDueForCompletion(ctx, cutoff, completionBatchSize+len(skipped))
		if err != nil {
			s.cfg.Log.Error("Failed to find bookings due for completion", "error", err)
			return completed, apperrors.Internal("Failed to find bookings due for completion", err)
		}

		progressed := false
		for _, booking := range due {
			if _, ok := skipped[booking.ID]; ok {
				continue
			}
			if err := ctx.Err(); err != nil {
				return completed, err
			}

			updated, err := s.transition(ctx, booking, lifecycle.EventComplete, "", "")
			if err != nil {
				s.cfg.Log.Warn("Skipping booking during stay completion", "id", booking.ID, "error", err)
				skipped[booking.ID] = struct{}{}
				continue
			}
			completed++
			progressed = true
			s.publish(ctx, model.EventBookingCompleted, updated)
		}

		if !progressed || len(due) < completionBatchSize+len(skipped) {
			break
		}
	}

	s.cfg.Log.Info("Stay completion finished",
		"cutoff", cutoff.Format(time.DateOnly),
		"completed", completed,
		"skipped", len(skipped),
	)
	return completed, nil
}

// --- Helpers ---

func (s *bookingService) resolveQuoteRequest(req *model.SubmitRequest) (*model.QuoteRequest, error) {
	if req.QuoteToken == "" {
		if req.Quote == nil {
			return nil, apperrors.InvalidInput("Either quote_token or quote is required")
		}
		return req.Quote, nil
	}

	var token quoteToken
	if err := s.tokens.OpenJSON(req.QuoteToken, &token); err != nil {
		return nil, apperrors.InvalidInput("Quote token is invalid").WithCause(bookingserrors.ErrInvalidQuoteToken)
	}
	if s.now().After(token.ExpiresAt) {
		return nil, apperrors.InvalidInput("Quote has expired, please request a new quote").
			WithCause(bookingserrors.ErrInvalidQuoteToken)
	}
	return &token.Request, nil
}

// price looks up current rates and recomputes the stay total.
func (s *bookingService) price(ctx context.Context, req *model.QuoteRequest) (*pricedStay, error) {
	room, err := s.directory.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	var pkg *model.Package
	var packageRate *int64
	if req.PackageID != "" {
		pkg, err = s.directory.GetPackage(ctx, req.PackageID)
		if err != nil {
			return nil, err
		}
		packageRate = &pkg.AddonRate
	}

	breakdown, err := pricing.Quote(room.Rate, packageRate, req.CheckIn, req.CheckOut, s.now())
	if err != nil {
		return nil, pricingError(err)
	}

	return &pricedStay{
		room: room,
		pkg:  pkg,
		stay: model.StayInterval{
			CheckIn:  pricing.Date(req.CheckIn),
			CheckOut: pricing.Date(req.CheckOut),
		},
		breakdown: breakdown,
	}, nil
}

func (s *bookingService) checkParty(party model.GuestParty, room *model.Room) error {
	err := s.validator.ValidateParty(party, room.Capacity)
	if err == nil {
		return nil
	}

	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.InvalidGuestParty(verrs[0].Message).WithDetails(verrs.Details())
	}
	return apperrors.InvalidGuestParty(err.Error())
}

func (s *bookingService) create(ctx context.Context, booking *model.Booking) error {
	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "room_id", booking.RoomID, "error", err)
		return apperrors.Internal("Failed to create booking", err)
	}
	return nil
}

// createExclusive serializes submissions per room with an advisory lock and
// re-checks overlap inside a transaction before inserting.
func (s *bookingService) createExclusive(ctx context.Context, booking *model.Booking) error {
	lockID, owner, err := s.acquireRoomLock(ctx, booking.RoomID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(context.WithoutCancel(ctx), lockID, owner); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking.ID = ""

		overlapping, err := s.repo.FindActiveOverlapping(sessCtx, booking.RoomID, booking.StayInterval)
		if err != nil {
			return apperrors.Internal("Failed to check availability", err)
		}
		if len(overlapping) > 0 {
			existing := overlapping[0]
			return apperrors.RoomUnavailable(fmt.Sprintf(
				"Room is already booked from %s to %s",
				existing.CheckIn.Format(time.DateOnly),
				existing.CheckOut.Format(time.DateOnly),
			))
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeRoomUnavailable) {
			s.cfg.Log.Info("Booking rejected, room unavailable", "room_id", booking.RoomID)
		} else {
			s.cfg.Log.Error("Failed to create booking", "room_id", booking.RoomID, "error", err)
		}
		if apperrors.IsAppError(err) {
			return err
		}
		return apperrors.Internal("Failed to create booking", err)
	}
	return nil
}

func (s *bookingService) acquireRoomLock(ctx context.Context, roomID string) (string, string, error) {
	lockID := "booking_lock_" + roomID
	owner := uuid.NewString()

	lock := &model.BookingLock{
		ID:        lockID,
		Owner:     owner,
		ExpiresAt: s.now().UTC().Add(s.cfg.BookingLockTTL),
	}

	if err := s.lockRepo.Acquire(ctx, lock); err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return "", "", apperrors.Conflict("This room is currently being booked by another request. Please try again.")
		}
		return "", "", apperrors.Internal("Failed to acquire booking lock", err)
	}

	return lockID, owner, nil
}

func (s *bookingService) transition(ctx context.Context, booking *model.Booking, event lifecycle.Event, reference, reason string) (*model.Booking, error) {
	from := lifecycle.Of(booking)
	to, err := lifecycle.Transition(from, event)
	if err != nil {
		return nil, illegalTransition(booking, event, err)
	}

	updated, err := s.repo.UpdateState(ctx, booking.ID, &model.BookingTransition{
		FromStatus:         from.Status,
		FromPaymentStatus:  from.PaymentStatus,
		ToStatus:           to.Status,
		ToPaymentStatus:    to.PaymentStatus,
		PaymentReference:   reference,
		CancellationReason: reason,
	})
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStateConflict) {
			s.cfg.Log.Warn("Booking changed concurrently", "id", booking.ID, "event", event)
			return nil, apperrors.IllegalTransition("Booking was modified by another request").
				WithCause(fmt.Errorf("%w: %w", lifecycle.ErrIllegalTransition, err))
		}
		return nil, s.translate(err, booking.ID, "Failed to update booking")
	}

	return updated, nil
}

func (s *bookingService) find(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve booking")
	}
	return booking, nil
}

// authorizeGuest lets admins through and requires guests to present the
// booking's email. A mismatch reads as not found.
func (s *bookingService) authorizeGuest(ctx context.Context, booking *model.Booking, email string) error {
	if auth.FromContext(ctx).IsAdmin() {
		return nil
	}
	if email == "" || !strings.EqualFold(sanitizer.SanitizeEmail(email), booking.Email) {
		return apperrors.NotFoundWithID("Booking", booking.ID).WithCause(bookingserrors.ErrNotFound)
	}
	return nil
}

func (s *bookingService) translate(err error, id, internalMsg string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id).WithCause(err)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	}

	s.cfg.Log.Error(internalMsg, "id", id, "error", err)
	return apperrors.Internal(internalMsg, err)
}

// publish emits a domain event. Failures are logged and never fail the
// operation that already committed.
func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	event := model.NewBookingEvent(eventType, booking, auth.FromContext(ctx).Subject)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

func (s *bookingService) sanitizeSubmission(req *model.SubmitRequest) {
	req.Guest.Name = sanitizer.SanitizeName(req.Guest.Name)
	req.Guest.Email = sanitizer.SanitizeEmail(req.Guest.Email)
	req.Guest.Phone = sanitizer.SanitizePhone(req.Guest.Phone)
	req.SpecialRequest = sanitizer.SanitizeFreeText(req.SpecialRequest)
}

func illegalTransition(booking *model.Booking, event lifecycle.Event, cause error) error {
	state := lifecycle.Of(booking)
	if lifecycle.IsTerminal(state) {
		return apperrors.IllegalTransition(fmt.Sprintf(
			"Booking is already %s and can no longer change", booking.Status,
		)).WithCause(cause)
	}
	return apperrors.IllegalTransition(fmt.Sprintf(
		"Cannot apply %s to a booking that is %s", event, state,
	)).WithCause(cause)
}

func pricingError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrInvalidStayInterval):
		return apperrors.InvalidStayInterval("Check-out must be after check-in").WithCause(err)
	case errors.Is(err, pricing.ErrStayInPast):
		return apperrors.InvalidStayInterval("Check-in date cannot be in the past").WithCause(err)
	case errors.Is(err, pricing.ErrOverflow), errors.Is(err, pricing.ErrNegativeRate):
		return apperrors.InvalidInput("Stay cannot be priced").WithCause(err)
	}
	return apperrors.Internal("Failed to price stay", err)
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
