package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	directoryerrors "innkeep/internal/directory/errors"
	"innkeep/internal/directory/validator"
	"innkeep/pkg/auth"
	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

type mockRoomRepository struct {
	rooms     map[string]*model.Room
	findAllFn func(ctx context.Context, limit int, offset int64) ([]*model.Room, error)
	countFn   func(ctx context.Context) (int64, error)
	created   []*model.Room
	updated   map[string]*model.Room
}

func newMockRoomRepository(rooms ...*model.Room) *mockRoomRepository {
	m := &mockRoomRepository{rooms: map[string]*model.Room{}, updated: map[string]*model.Room{}}
	for _, r := range rooms {
		m.rooms[r.ID] = r
	}
	return m
}

func (m *mockRoomRepository) Create(ctx context.Context, room *model.Room) error {
	room.ID = fmt.Sprintf("room-%d", len(m.created)+1)
	m.created = append(m.created, room)
	return nil
}

func (m *mockRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "bad" {
		return nil, fmt.Errorf("%w: %s", directoryerrors.ErrInvalidID, id)
	}
	room, ok := m.rooms[id]
	if !ok {
		return nil, directoryerrors.ErrRoomNotFound
	}
	copied := *room
	return &copied, nil
}

func (m *mockRoomRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx, limit, offset)
	}
	return []*model.Room{}, nil
}

func (m *mockRoomRepository) Update(ctx context.Context, id string, room *model.Room) error {
	m.updated[id] = room
	return nil
}

func (m *mockRoomRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.rooms[id]; !ok {
		return directoryerrors.ErrRoomNotFound
	}
	delete(m.rooms, id)
	return nil
}

func (m *mockRoomRepository) Count(ctx context.Context) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return int64(len(m.rooms)), nil
}

type mockPackageRepository struct {
	packages map[string]*model.Package
	created  []*model.Package
	updated  map[string]*model.Package
}

func newMockPackageRepository(pkgs ...*model.Package) *mockPackageRepository {
	m := &mockPackageRepository{packages: map[string]*model.Package{}, updated: map[string]*model.Package{}}
	for _, p := range pkgs {
		m.packages[p.ID] = p
	}
	return m
}

func (m *mockPackageRepository) Create(ctx context.Context, pkg *model.Package) error {
	pkg.ID = fmt.Sprintf("pkg-%d", len(m.created)+1)
	m.created = append(m.created, pkg)
	return nil
}

func (m *mockPackageRepository) FindByID(ctx context.Context, id string) (*model.Package, error) {
	pkg, ok := m.packages[id]
	if !ok {
		return nil, directoryerrors.ErrPackageNotFound
	}
	copied := *pkg
	return &copied, nil
}

func (m *mockPackageRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Package, error) {
	out := []*model.Package{}
	for _, p := range m.packages {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockPackageRepository) Update(ctx context.Context, id string, pkg *model.Package) error {
	m.updated[id] = pkg
	return nil
}

func (m *mockPackageRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.packages[id]; !ok {
		return directoryerrors.ErrPackageNotFound
	}
	delete(m.packages, id)
	return nil
}

func (m *mockPackageRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.packages)), nil
}

func newTestService(rooms *mockRoomRepository, packages *mockPackageRepository) DirectoryService {
	log := logger.Discard()
	cfg := &config.Config{
		Log:         log,
		ReadTimeout: 5 * time.Second,
	}
	return NewDirectoryService(rooms, packages, validator.NewDirectoryValidator(log), cfg)
}

func adminCtx() context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{Subject: "ops", Role: auth.RoleAdmin})
}

func TestGetRoom(t *testing.T) {
	rooms := newMockRoomRepository(&model.Room{ID: "r1", Name: "Garden Suite", Rate: 5000, Capacity: 2})
	svc := newTestService(rooms, newMockPackageRepository())

	tests := []struct {
		name     string
		id       string
		wantCode string
	}{
		{"found", "r1", ""},
		{"missing", "r2", apperrors.CodeNotFound},
		{"malformed id", "bad", apperrors.CodeInvalidInput},
		{"empty id", "", apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room, err := svc.GetRoom(context.Background(), tt.id)
			if tt.wantCode == "" {
				if err != nil || room.Name != "Garden Suite" {
					t.Fatalf("GetRoom() = %+v, %v", room, err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestGetRoom_NotFoundKeepsSentinel(t *testing.T) {
	svc := newTestService(newMockRoomRepository(), newMockPackageRepository())

	_, err := svc.GetRoom(context.Background(), "missing")
	if !errors.Is(err, directoryerrors.ErrRoomNotFound) {
		t.Errorf("errors.Is(err, ErrRoomNotFound) = false for %v", err)
	}
}

func TestListRooms_ConcurrentCountAndFind(t *testing.T) {
	rooms := newMockRoomRepository()
	rooms.countFn = func(ctx context.Context) (int64, error) {
		time.Sleep(10 * time.Millisecond)
		return 42, nil
	}
	rooms.findAllFn = func(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
		time.Sleep(10 * time.Millisecond)
		if limit != 10 || offset != 20 {
			t.Errorf("FindAll(%d, %d), want (10, 20)", limit, offset)
		}
		return []*model.Room{{ID: "a"}, {ID: "b"}}, nil
	}
	svc := newTestService(rooms, newMockPackageRepository())

	got, total, err := svc.ListRooms(context.Background(), 10, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 42 || len(got) != 2 {
		t.Errorf("got %d rooms, total %d", len(got), total)
	}
}

func TestListRooms_RepositoryError(t *testing.T) {
	rooms := newMockRoomRepository()
	rooms.countFn = func(ctx context.Context) (int64, error) {
		return 0, errors.New("connection reset")
	}
	svc := newTestService(rooms, newMockPackageRepository())

	if _, _, err := svc.ListRooms(context.Background(), 10, 0); !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("error = %v, want INTERNAL_ERROR", err)
	}
}

func TestCreateRoom(t *testing.T) {
	t.Run("requires admin", func(t *testing.T) {
		rooms := newMockRoomRepository()
		svc := newTestService(rooms, newMockPackageRepository())

		err := svc.CreateRoom(context.Background(), &model.Room{Name: "Loft", Capacity: 2})
		if !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
			t.Errorf("error = %v, want UNAUTHORIZED", err)
		}
		if len(rooms.created) != 0 {
			t.Error("room persisted without admin capability")
		}
	})

	t.Run("sanitizes amenities", func(t *testing.T) {
		rooms := newMockRoomRepository()
		svc := newTestService(rooms, newMockPackageRepository())

		room := &model.Room{
			Name:      "  Garden   Suite ",
			Rate:      5000,
			Capacity:  2,
			Amenities: []string{" WiFi", "wifi", "", "Sea  View"},
		}
		if err := svc.CreateRoom(adminCtx(), room); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if room.Name != "Garden Suite" {
			t.Errorf("name = %q", room.Name)
		}
		want := []string{"wifi", "sea view"}
		if len(room.Amenities) != len(want) || room.Amenities[0] != want[0] || room.Amenities[1] != want[1] {
			t.Errorf("amenities = %v, want %v", room.Amenities, want)
		}
	})

	t.Run("validation failure", func(t *testing.T) {
		svc := newTestService(newMockRoomRepository(), newMockPackageRepository())

		err := svc.CreateRoom(adminCtx(), &model.Room{Name: "Loft", Rate: -1, Capacity: 0})
		appErr := apperrors.AsAppError(err)
		if appErr.Code != apperrors.CodeValidation {
			t.Fatalf("code = %s, want VALIDATION_ERROR", appErr.Code)
		}
		fields, _ := appErr.Details["fields"].(map[string]string)
		if _, ok := fields["rate"]; !ok {
			t.Errorf("details = %v, want a rate entry", appErr.Details)
		}
		if _, ok := fields["capacity"]; !ok {
			t.Errorf("details = %v, want a capacity entry", appErr.Details)
		}
	})
}

func TestUpdateRoom_MergesFields(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rooms := newMockRoomRepository(&model.Room{
		ID:        "r1",
		Name:      "Garden Suite",
		Rate:      5000,
		Capacity:  2,
		Amenities: []string{"wifi"},
		CreatedAt: created,
	})
	svc := newTestService(rooms, newMockPackageRepository())

	rate := int64(6500)
	got, err := svc.UpdateRoom(adminCtx(), "r1", &model.RoomUpdate{Rate: &rate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Rate != 6500 || got.Name != "Garden Suite" || got.Capacity != 2 {
		t.Errorf("merged room = %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at changed to %v", got.CreatedAt)
	}
	if rooms.updated["r1"] == nil {
		t.Error("repository Update not called")
	}
}

func TestUpdateRoom_Errors(t *testing.T) {
	rooms := newMockRoomRepository(&model.Room{ID: "r1", Name: "Garden Suite", Rate: 5000, Capacity: 2})
	svc := newTestService(rooms, newMockPackageRepository())

	capacity := 0
	tests := []struct {
		name     string
		ctx      context.Context
		id       string
		update   *model.RoomUpdate
		wantCode string
	}{
		{"guest", context.Background(), "r1", &model.RoomUpdate{Name: "New"}, apperrors.CodeUnauthorized},
		{"missing", adminCtx(), "r9", &model.RoomUpdate{Name: "New"}, apperrors.CodeNotFound},
		{"invalid update", adminCtx(), "r1", &model.RoomUpdate{Capacity: &capacity}, apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateRoom(tt.ctx, tt.id, tt.update)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestDeleteRoom(t *testing.T) {
	rooms := newMockRoomRepository(&model.Room{ID: "r1", Name: "Garden Suite", Capacity: 2})
	svc := newTestService(rooms, newMockPackageRepository())

	if err := svc.DeleteRoom(context.Background(), "r1"); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("guest delete error = %v", err)
	}
	if err := svc.DeleteRoom(adminCtx(), "r1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteRoom(adminCtx(), "r1"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("second delete error = %v, want NOT_FOUND", err)
	}
}

func TestPackages(t *testing.T) {
	packages := newMockPackageRepository(&model.Package{ID: "p1", Name: "Breakfast", AddonRate: 1000})
	svc := newTestService(newMockRoomRepository(), packages)

	pkg, err := svc.GetPackage(context.Background(), "p1")
	if err != nil || pkg.AddonRate != 1000 {
		t.Fatalf("GetPackage() = %+v, %v", pkg, err)
	}

	if _, err := svc.GetPackage(context.Background(), "p2"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("missing package error = %v", err)
	}

	list, total, err := svc.ListPackages(context.Background(), 10, 0)
	if err != nil || total != 1 || len(list) != 1 {
		t.Errorf("ListPackages() = %d items, total %d, %v", len(list), total, err)
	}

	if err := svc.CreatePackage(context.Background(), &model.Package{Name: "Spa"}); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("guest create error = %v", err)
	}

	created := &model.Package{Name: " Spa  Day ", AddonRate: 2500}
	if err := svc.CreatePackage(adminCtx(), created); err != nil {
		t.Fatalf("CreatePackage() error = %v", err)
	}
	if created.Name != "Spa Day" || created.ID == "" {
		t.Errorf("created = %+v", created)
	}

	negative := int64(-1)
	if _, err := svc.UpdatePackage(adminCtx(), "p1", &model.PackageUpdate{AddonRate: &negative}); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("negative add-on error = %v", err)
	}

	rate := int64(1500)
	updated, err := svc.UpdatePackage(adminCtx(), "p1", &model.PackageUpdate{AddonRate: &rate})
	if err != nil || updated.AddonRate != 1500 || updated.Name != "Breakfast" {
		t.Errorf("UpdatePackage() = %+v, %v", updated, err)
	}

	if err := svc.DeletePackage(adminCtx(), "p1"); err != nil {
		t.Errorf("DeletePackage() error = %v", err)
	}
}
