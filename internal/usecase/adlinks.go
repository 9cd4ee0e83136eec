package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/edicionpersuasiva/crm/internal/entity"
)

type AdLinkUseCase struct {
	Repo AdLinkRepositoryInterface
	Now  func() time.Time
}

func NewAdLinkUseCase(repo AdLinkRepositoryInterface) *AdLinkUseCase {
	return &AdLinkUseCase{Repo: repo, Now: time.Now}
}

func (uc *AdLinkUseCase) Create(ctx context.Context, input CreateAdLinkInput) (*entity.AdLink, error) {
	link, err := entity.NewAdLink(input.Slug, input.Destination, input.Source, input.Medium, input.Campaign,
		input.CreatedBy, uc.Now().UTC())
	switch {
	case errors.Is(err, entity.ErrInvalidAdLinkSlug):
		return nil, newValidationError([]ValidationError{{"slug", err.Error()}})
	case errors.Is(err, entity.ErrInvalidDestination):
		return nil, newValidationError([]ValidationError{{"destination", err.Error()}})
	case err != nil:
		return nil, err
	}

	if err := uc.Repo.Create(ctx, link); err != nil {
		if errors.Is(err, entity.ErrAdLinkSlugTaken) {
			return nil, newDomainError(CodeSlugTaken, err.Error())
		}
		return nil, databaseError("no se pudo crear el enlace", err)
	}
	return link, nil
}

func (uc *AdLinkUseCase) List(ctx context.Context) ([]*entity.AdLink, error) {
	links, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, databaseError("error al listar enlaces", err)
	}
	return links, nil
}

// Resolve counts a click on slug and returns the URL to redirect to.
func (uc *AdLinkUseCase) Resolve(ctx context.Context, slug string) (string, error) {
	link, err := uc.Repo.RegisterClick(ctx, slug)
	if err != nil {
		if errors.Is(err, entity.ErrAdLinkNotFound) {
			return "", newDomainError(CodeAdLinkNotFound, err.Error())
		}
		return "", databaseError("error al resolver el enlace", err)
	}
	return link.TargetURL(), nil
}
