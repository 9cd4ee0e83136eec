package entity

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAdLinkNotFound     = errors.New("enlace no encontrado")
	ErrAdLinkSlugTaken    = errors.New("el slug ya está en uso")
	ErrInvalidAdLinkSlug  = errors.New("slug inválido: usa minúsculas, números y guiones")
	ErrInvalidDestination = errors.New("la URL de destino debe ser absoluta (http/https)")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// AdLink is a tracked redirect used in paid campaigns.
type AdLink struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Destination string    `json:"destination"`
	Source      string    `json:"source"`
	Medium      string    `json:"medium"`
	Campaign    string    `json:"campaign"`
	Clicks      int64     `json:"clicks"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewAdLink(slug, destination, source, medium, campaign, createdBy string, at time.Time) (*AdLink, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !slugPattern.MatchString(slug) {
		return nil, ErrInvalidAdLinkSlug
	}
	u, err := url.Parse(strings.TrimSpace(destination))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidDestination
	}
	return &AdLink{
		ID:          uuid.New().String(),
		Slug:        slug,
		Destination: u.String(),
		Source:      strings.TrimSpace(source),
		Medium:      strings.TrimSpace(medium),
		Campaign:    strings.TrimSpace(campaign),
		CreatedBy:   createdBy,
		CreatedAt:   at,
	}, nil
}

// TargetURL is the destination with the campaign's utm parameters applied.
func (l *AdLink) TargetURL() string {
	u, err := url.Parse(l.Destination)
	if err != nil {
		return l.Destination
	}
	q := u.Query()
	if l.Source != "" {
		q.Set("utm_source", l.Source)
	}
	if l.Medium != "" {
		q.Set("utm_medium", l.Medium)
	}
	if l.Campaign != "" {
		q.Set("utm_campaign", l.Campaign)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

type AdLinkRepositoryInterface interface {
	Create(ctx context.Context, l *AdLink) error
	List(ctx context.Context) ([]*AdLink, error)
	// RegisterClick increments the click counter and returns the updated link.
	RegisterClick(ctx context.Context, slug string) (*AdLink, error)
}
