package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainproperty "plek/internal/domain/property"
	"plek/internal/domain/shared/money"
	domainuser "plek/internal/domain/user"
)

var ErrPermissionDenied = errors.New("catalog: operation not permitted for role")

// Service manages the property catalog: public reads plus host/admin CRUD.
type Service struct {
	Properties domainproperty.Repository
	Logger     *slog.Logger
}

type CreateParams struct {
	Slug        string
	Title       string
	Description string
	RateCents   int64
	Currency    string
}

func (s *Service) Create(ctx context.Context, actor *domainuser.User, params CreateParams) (*domainproperty.Property, error) {
	if actor == nil || !(actor.HasRole(domainuser.RoleHost) || actor.HasRole(domainuser.RoleAdmin)) {
		return nil, ErrPermissionDenied
	}
	rate := money.Money{}
	if params.Currency != "" {
		var err error
		rate, err = money.New(params.RateCents, params.Currency)
		if err != nil {
			return nil, err
		}
	}
	slug := params.Slug
	if slug == "" {
		slug = domainproperty.Slugify(params.Title)
	}
	if slug != "" {
		if _, err := s.Properties.BySlug(ctx, slug); err == nil {
			return nil, domainproperty.ErrSlugTaken
		} else if !errors.Is(err, domainproperty.ErrNotFound) {
			return nil, err
		}
	}
	prop, err := domainproperty.New(domainproperty.CreateParams{
		ID:          domainproperty.ID(uuid.NewString()),
		HostID:      string(actor.ID),
		Slug:        slug,
		Title:       params.Title,
		Description: params.Description,
		NightlyRate: rate,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Properties.Save(ctx, prop); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("property created", "property_id", prop.ID, "host_id", prop.HostID, "slug", prop.Slug)
	}
	return prop, nil
}

type UpdateParams struct {
	Title       string
	Description string
	RateCents   int64
	Currency    string
	Active      *bool
}

func (s *Service) Update(ctx context.Context, actor *domainuser.User, id string, params UpdateParams) (*domainproperty.Property, error) {
	prop, err := s.Properties.ByID(ctx, domainproperty.ID(id))
	if err != nil {
		return nil, err
	}
	if actor == nil || !actor.CanManageProperty(prop.HostID) {
		return nil, ErrPermissionDenied
	}
	rate := money.Money{}
	if params.Currency != "" {
		rate, err = money.New(params.RateCents, params.Currency)
		if err != nil {
			return nil, err
		}
	}
	if err := prop.Update(domainproperty.UpdateParams{
		Title:       params.Title,
		Description: params.Description,
		NightlyRate: rate,
		Active:      params.Active,
	}, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Properties.Save(ctx, prop); err != nil {
		return nil, err
	}
	return prop, nil
}

func (s *Service) Delete(ctx context.Context, actor *domainuser.User, id string) error {
	prop, err := s.Properties.ByID(ctx, domainproperty.ID(id))
	if err != nil {
		return err
	}
	if actor == nil || !actor.CanManageProperty(prop.HostID) {
		return ErrPermissionDenied
	}
	return s.Properties.Delete(ctx, prop.ID)
}

func (s *Service) Get(ctx context.Context, idOrSlug string) (*domainproperty.Property, error) {
	prop, err := s.Properties.ByID(ctx, domainproperty.ID(idOrSlug))
	if err == nil {
		return prop, nil
	}
	if !errors.Is(err, domainproperty.ErrNotFound) {
		return nil, err
	}
	return s.Properties.BySlug(ctx, idOrSlug)
}

func (s *Service) ListActive(ctx context.Context) ([]*domainproperty.Property, error) {
	return s.Properties.ListActive(ctx)
}

func (s *Service) ListForHost(ctx context.Context, actor *domainuser.User) ([]*domainproperty.Property, error) {
	if actor == nil || !(actor.HasRole(domainuser.RoleHost) || actor.HasRole(domainuser.RoleAdmin)) {
		return nil, ErrPermissionDenied
	}
	return s.Properties.ListByHost(ctx, string(actor.ID))
}
