package property

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"plek/internal/domain/shared/money"
)

var (
	ErrNotFound      = errors.New("property: not found")
	ErrTitleRequired = errors.New("property: title is required")
	ErrHostRequired  = errors.New("property: host is required")
	ErrSlugTaken     = errors.New("property: slug already in use")
)

type ID string

// Property is a bookable listing owned by a host.
type Property struct {
	ID          ID
	HostID      string
	Slug        string
	Title       string
	Description string
	// NightlyRate is the base rate before tier multipliers. A zero rate means
	// the host never priced the listing; quoting substitutes the configured
	// default and logs it.
	NightlyRate money.Money
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Property, error)
	BySlug(ctx context.Context, slug string) (*Property, error)
	Save(ctx context.Context, p *Property) error
	Delete(ctx context.Context, id ID) error
	ListByHost(ctx context.Context, hostID string) ([]*Property, error)
	ListActive(ctx context.Context) ([]*Property, error)
}

type CreateParams struct {
	ID          ID
	HostID      string
	Slug        string
	Title       string
	Description string
	NightlyRate money.Money
	CreatedAt   time.Time
}

func New(params CreateParams) (*Property, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(params.HostID) == "" {
		return nil, ErrHostRequired
	}
	slug := strings.TrimSpace(params.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Property{
		ID:          params.ID,
		HostID:      params.HostID,
		Slug:        slug,
		Title:       title,
		Description: strings.TrimSpace(params.Description),
		NightlyRate: params.NightlyRate,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

type UpdateParams struct {
	Title       string
	Description string
	NightlyRate money.Money
	Active      *bool
}

func (p *Property) Update(params UpdateParams, now time.Time) error {
	if title := strings.TrimSpace(params.Title); title != "" {
		p.Title = title
	}
	if desc := strings.TrimSpace(params.Description); desc != "" {
		p.Description = desc
	}
	if params.NightlyRate.Currency != "" {
		if params.NightlyRate.Cents < 0 {
			return money.ErrNegativeAmount
		}
		p.NightlyRate = params.NightlyRate
	}
	if params.Active != nil {
		p.Active = *params.Active
	}
	if now.IsZero() {
		now = time.Now()
	}
	p.UpdatedAt = now.UTC()
	return nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a title.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
