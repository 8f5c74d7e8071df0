package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/userservice/internal/dbx"
	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/dmitrijs2005/userservice/internal/server/filestore"
	"github.com/dmitrijs2005/userservice/internal/server/media"
	"github.com/dmitrijs2005/userservice/internal/server/models"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/repomanager"
)

// ImageProcessor rewrites a stored image in place.
type ImageProcessor interface {
	Process(ctx context.Context, name string) error
}

var newImagePath = media.ProfileImagePath

// ProfileService owns the profile row and its stored picture.
type ProfileService struct {
	repomanager repomanager.RepositoryManager
	storage     filestore.Storage
	processor   ImageProcessor
	logger      logging.Logger
}

func NewProfileService(m repomanager.RepositoryManager, storage filestore.Storage, processor ImageProcessor, logger logging.Logger) *ProfileService {
	return &ProfileService{
		repomanager: m,
		storage:     storage,
		processor:   processor,
		logger:      logger.With("module", "profiles"),
	}
}

// Create stores the uploaded picture under a fresh path and inserts the
// profile for accountID.
func (s *ProfileService) Create(ctx context.Context, tx dbx.DBTX, accountID int64, in *ProfileInput) (*models.Profile, error) {
	p := &models.Profile{AccountID: accountID}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	p.Birthdate = in.Birthdate

	if in.Image != nil {
		name, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		p.Image = name
	}

	created, err := s.repomanager.Profiles(tx).Create(ctx, p)
	if err != nil {
		s.DiscardImage(ctx, p.Image)
		return nil, fmt.Errorf("error creating profile: %w", err)
	}
	return created, nil
}

// ImageSwap records a picture replaced by Update. Old is removed by
// FinishSwap once the write has committed, New by AbortSwap when it has not.
type ImageSwap struct {
	Old string
	New string
}

// Update stores a newly supplied picture under a fresh path, merges gender
// and birthdate and persists the row. The previous picture stays in storage
// until FinishSwap is called with the returned swap.
func (s *ProfileService) Update(ctx context.Context, tx dbx.DBTX, existing *models.Profile, in *ProfileInput) (*models.Profile, ImageSwap, error) {
	p := *existing
	var swap ImageSwap

	if in.Image != nil {
		name, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return nil, ImageSwap{}, err
		}
		swap = ImageSwap{Old: p.Image, New: name}
		p.Image = name
	}

	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.Birthdate != nil {
		p.Birthdate = in.Birthdate
	}

	if err := s.repomanager.Profiles(tx).Update(ctx, &p); err != nil {
		s.AbortSwap(ctx, swap)
		return nil, ImageSwap{}, fmt.Errorf("error updating profile: %w", err)
	}
	return &p, swap, nil
}

// FinishSwap deletes the replaced picture if it is still present.
func (s *ProfileService) FinishSwap(ctx context.Context, swap ImageSwap) error {
	if swap.Old == "" || swap.Old == swap.New {
		return nil
	}
	return s.removeImage(ctx, swap.Old)
}

// AbortSwap drops the picture stored for a write that did not commit.
func (s *ProfileService) AbortSwap(ctx context.Context, swap ImageSwap) {
	s.DiscardImage(ctx, swap.New)
}

// AfterSave runs once the row has been committed. Every save reprocesses
// the current picture, changed or not.
func (s *ProfileService) AfterSave(ctx context.Context, p *models.Profile) error {
	if p == nil || p.Image == "" {
		return nil
	}
	if err := s.processor.Process(ctx, p.Image); err != nil {
		return fmt.Errorf("error processing profile image: %w", err)
	}
	return nil
}

// DiscardImage deletes a stored picture, logging instead of failing.
func (s *ProfileService) DiscardImage(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.storage.Delete(ctx, name); err != nil {
		s.logger.Warn(ctx, "failed to delete profile image", "path", name, "error", err)
	}
}

func (s *ProfileService) storeImage(ctx context.Context, up *Upload) (string, error) {
	name := newImagePath(up.Filename)
	if err := s.storage.Save(ctx, name, up.Content); err != nil {
		return "", fmt.Errorf("error saving profile image: %w", err)
	}
	return name, nil
}

func (s *ProfileService) removeImage(ctx context.Context, name string) error {
	ok, err := s.storage.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("error checking profile image: %w", err)
	}
	if !ok {
		return nil
	}
	if err := s.storage.Delete(ctx, name); err != nil {
		return fmt.Errorf("error deleting profile image: %w", err)
	}
	return nil
}
