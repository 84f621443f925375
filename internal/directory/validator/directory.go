package validator

import (
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
	"innkeep/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type DirectoryValidator struct {
	validate *validator.Validate
}

func NewDirectoryValidator(log *logger.Logger) *DirectoryValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to build directory validator", "error", err)
	}

	return &DirectoryValidator{validate: v}
}

func (v *DirectoryValidator) ValidateRoom(room *model.Room) error {
	return validation.Translate(v.validate.Struct(room))
}

func (v *DirectoryValidator) ValidateRoomUpdate(update *model.RoomUpdate) error {
	return validation.Translate(v.validate.Struct(update))
}

func (v *DirectoryValidator) ValidatePackage(pkg *model.Package) error {
	return validation.Translate(v.validate.Struct(pkg))
}

func (v *DirectoryValidator) ValidatePackageUpdate(update *model.PackageUpdate) error {
	return validation.Translate(v.validate.Struct(update))
}
