package application

import (
	"context"
	"fmt"
	"strings"

	"claritas/internal/domain"
	"claritas/internal/ports/input"
	"claritas/internal/ports/output"
	"claritas/pkg/validator"

	"github.com/sirupsen/logrus"
)

var _ input.ProfileService = (*ProfileService)(nil)

// ProfileService struct - Application service keeping the signed-in caregiver
type ProfileService struct {
	store     output.ProfileStore
	validator validator.Validator
}

// NewProfileService func - Creates new profile service
func NewProfileService(store output.ProfileStore, validate validator.Validator) *ProfileService {
	return &ProfileService{
		store:     store,
		validator: validate,
	}
}

// SignIn func - Use case: accept the identity provider's profile and remember it
func (s *ProfileService) SignIn(ctx context.Context, profile domain.CaregiverProfile) error {
	profile.Email = strings.TrimSpace(profile.Email)
	profile.Name = strings.TrimSpace(profile.Name)
	if err := s.validator.ValidateStruct(profile); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidProfile, err)
	}
	if err := s.store.Save(ctx, profile); err != nil {
		logrus.Errorln(err)
		return err
	}
	logrus.Infof("Caregiver signed in: %s", profile.Email)
	return nil
}

// Current func - Use case: the remembered caregiver, false when nobody is signed in
func (s *ProfileService) Current(ctx context.Context) (domain.CaregiverProfile, bool) {
	return s.store.Load(ctx)
}

// SignOut func - Use case: forget the caregiver
func (s *ProfileService) SignOut(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		logrus.Errorln(err)
		return err
	}
	return nil
}
