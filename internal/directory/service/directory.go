package service

import (
	"context"
	"errors"
	"sync"

	directoryerrors "innkeep/internal/directory/errors"
	"innkeep/internal/directory/repository"
	"innkeep/internal/directory/validator"
	"innkeep/pkg/auth"
	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"
	"innkeep/pkg/sanitizer"
	"innkeep/pkg/validation"
)

// DirectoryService is the room and package catalogue. Reads are public;
// writes require an admin principal.
type DirectoryService interface {
	GetRoom(ctx context.Context, id string) (*model.Room, error)
	ListRooms(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	CreateRoom(ctx context.Context, room *model.Room) error
	UpdateRoom(ctx context.Context, id string, updates *model.RoomUpdate) (*model.Room, error)
	DeleteRoom(ctx context.Context, id string) error

	GetPackage(ctx context.Context, id string) (*model.Package, error)
	ListPackages(ctx context.Context, limit int, offset int64) ([]*model.Package, int64, error)
	CreatePackage(ctx context.Context, pkg *model.Package) error
	UpdatePackage(ctx context.Context, id string, updates *model.PackageUpdate) (*model.Package, error)
	DeletePackage(ctx context.Context, id string) error
}

type directoryService struct {
	rooms     repository.RoomRepository
	packages  repository.PackageRepository
	validator *validator.DirectoryValidator
	cfg       *config.Config
}

func NewDirectoryService(
	rooms repository.RoomRepository,
	packages repository.PackageRepository,
	validator *validator.DirectoryValidator,
	cfg *config.Config,
) DirectoryService {
	return &directoryService{
		rooms:     rooms,
		packages:  packages,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *directoryService) GetRoom(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, "Room", id, "Failed to retrieve room")
	}

	return room, nil
}

func (s *directoryService) ListRooms(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.rooms.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count rooms", "error", err)
			errCount = apperrors.Internal("Failed to count rooms", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		rooms, err = s.rooms.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list rooms", "limit", limit, "offset", offset, "error", err)
			errFind = apperrors.Internal("Failed to retrieve rooms", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *directoryService) CreateRoom(ctx context.Context, room *model.Room) error {
	if err := auth.RequireAdmin(ctx); err != nil {
		return err
	}

	s.sanitizeRoom(room)
	if err := s.validator.ValidateRoom(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "name", room.Name, "error", err)
		return validationError("Room validation failed", err)
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		s.cfg.Log.Error("Failed to create room", "name", room.Name, "error", err)
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created successfully",
		"id", room.ID,
		"name", room.Name,
		"rate", room.Rate,
		"capacity", room.Capacity,
		"actor", auth.FromContext(ctx).Subject,
	)
	return nil
}

func (s *directoryService) UpdateRoom(ctx context.Context, id string, updates *model.RoomUpdate) (*model.Room, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	existing, err := s.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateRoomUpdate(updates); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "id", id, "error", err)
		return nil, validationError("Invalid update input", err)
	}

	merged := mergeRoomUpdates(existing, updates)
	s.sanitizeRoom(merged)
	if err := s.validator.ValidateRoom(merged); err != nil {
		s.cfg.Log.Warn("Room validation failed", "id", id, "error", err)
		return nil, validationError("Room validation failed", err)
	}

	if err := s.rooms.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update room", "id", id, "error", err)
		return nil, s.translate(err, "Room", id, "Failed to update room")
	}

	s.cfg.Log.Info("Room updated successfully", "id", id, "actor", auth.FromContext(ctx).Subject)
	return merged, nil
}

func (s *directoryService) DeleteRoom(ctx context.Context, id string) error {
	if err := auth.RequireAdmin(ctx); err != nil {
		return err
	}
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	if err := s.rooms.Delete(ctx, id); err != nil {
		return s.translate(err, "Room", id, "Failed to delete room")
	}

	s.cfg.Log.Info("Room deleted successfully", "id", id, "actor", auth.FromContext(ctx).Subject)
	return nil
}

func (s *directoryService) GetPackage(ctx context.Context, id string) (*model.Package, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Package ID cannot be empty")
	}

	pkg, err := s.packages.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, "Package", id, "Failed to retrieve package")
	}

	return pkg, nil
}

func (s *directoryService) ListPackages(ctx context.Context, limit int, offset int64) ([]*model.Package, int64, error) {
	var count int64
	var packages []*model.Package
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.packages.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count packages", "error", err)
			errCount = apperrors.Internal("Failed to count packages", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		packages, err = s.packages.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list packages", "limit", limit, "offset", offset, "error", err)
			errFind = apperrors.Internal("Failed to retrieve packages", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return packages, count, nil
}

func (s *directoryService) CreatePackage(ctx context.Context, pkg *model.Package) error {
	if err := auth.RequireAdmin(ctx); err != nil {
		return err
	}

	s.sanitizePackage(pkg)
	if err := s.validator.ValidatePackage(pkg); err != nil {
		s.cfg.Log.Warn("Package validation failed", "name", pkg.Name, "error", err)
		return validationError("Package validation failed", err)
	}

	if err := s.packages.Create(ctx, pkg); err != nil {
		s.cfg.Log.Error("Failed to create package", "name", pkg.Name, "error", err)
		return apperrors.Internal("Failed to create package", err)
	}

	s.cfg.Log.Info("Package created successfully",
		"id", pkg.ID,
		"name", pkg.Name,
		"price_addon", pkg.AddonRate,
		"actor", auth.FromContext(ctx).Subject,
	)
	return nil
}

func (s *directoryService) UpdatePackage(ctx context.Context, id string, updates *model.PackageUpdate) (*model.Package, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	existing, err := s.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidatePackageUpdate(updates); err != nil {
		s.cfg.Log.Warn("Package update validation failed", "id", id, "error", err)
		return nil, validationError("Invalid update input", err)
	}

	merged := *existing
	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.AddonRate != nil {
		merged.AddonRate = *updates.AddonRate
	}
	s.sanitizePackage(&merged)

	if err := s.validator.ValidatePackage(&merged); err != nil {
		return nil, validationError("Package validation failed", err)
	}

	if err := s.packages.Update(ctx, id, &merged); err != nil {
		s.cfg.Log.Error("Failed to update package", "id", id, "error", err)
		return nil, s.translate(err, "Package", id, "Failed to update package")
	}

	s.cfg.Log.Info("Package updated successfully", "id", id, "actor", auth.FromContext(ctx).Subject)
	return &merged, nil
}

func (s *directoryService) DeletePackage(ctx context.Context, id string) error {
	if err := auth.RequireAdmin(ctx); err != nil {
		return err
	}
	if id == "" {
		return apperrors.InvalidInput("Package ID cannot be empty")
	}

	if err := s.packages.Delete(ctx, id); err != nil {
		return s.translate(err, "Package", id, "Failed to delete package")
	}

	s.cfg.Log.Info("Package deleted successfully", "id", id, "actor", auth.FromContext(ctx).Subject)
	return nil
}

// --- Helpers ---

func (s *directoryService) translate(err error, resource, id, internalMsg string) error {
	switch {
	case errors.Is(err, directoryerrors.ErrRoomNotFound), errors.Is(err, directoryerrors.ErrPackageNotFound):
		return apperrors.NotFoundWithID(resource, id).WithCause(err)
	case errors.Is(err, directoryerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid " + resource + " ID format")
	}

	s.cfg.Log.Error(internalMsg, "id", id, "error", err)
	return apperrors.Internal(internalMsg, err)
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

func (s *directoryService) sanitizeRoom(room *model.Room) {
	room.Name = sanitizer.SanitizeName(room.Name)
	room.Description = sanitizer.SanitizeFreeText(room.Description)
	room.Amenities = sanitizer.SanitizeAmenities(room.Amenities)
	room.ImageURL = sanitizer.SanitizeURL(room.ImageURL)
}

func (s *directoryService) sanitizePackage(pkg *model.Package) {
	pkg.Name = sanitizer.SanitizeName(pkg.Name)
	pkg.Description = sanitizer.SanitizeFreeText(pkg.Description)
}

func mergeRoomUpdates(existing *model.Room, updates *model.RoomUpdate) *model.Room {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.Rate != nil {
		merged.Rate = *updates.Rate
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}
	if updates.Amenities != nil {
		merged.Amenities = *updates.Amenities
	}
	if updates.ImageURL != nil {
		merged.ImageURL = *updates.ImageURL
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt

	return &merged
}
