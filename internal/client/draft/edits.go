package draft

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/edenspa/core/internal/models"
)

// scalarFields maps the JSON key of every plain snapshot field to its index.
var scalarFields = func() map[string][]int {
	out := make(map[string][]int)
	for _, f := range reflect.VisibleFields(reflect.TypeOf(models.Snapshot{})) {
		switch f.Type.Kind() {
		case reflect.String, reflect.Bool,
			reflect.Int, reflect.Int32, reflect.Int64,
			reflect.Float32, reflect.Float64:
		default:
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name != "" && name != "-" {
			out[name] = f.Index
		}
	}
	return out
}()

var operatorFields = map[string]bool{
	"showDesignerCredit": true,
	"designerCreditUrl":  true,
}

// Set replaces one plain field, addressed by its JSON key.
func (s *Session) Set(key string, value any) error {
	idx, ok := scalarFields[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	}

	return s.edit(func(d *models.Snapshot) error {
		if operatorFields[key] {
			if err := s.requireOperatorLocked(); err != nil {
				return err
			}
		}
		field := reflect.ValueOf(d).Elem().FieldByIndex(idx)
		fresh := reflect.New(field.Type())
		if err := json.Unmarshal(raw, fresh.Interface()); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
		}
		field.Set(fresh.Elem())
		return nil
	})
}

func (s *Session) SetTheme(theme models.Theme) error {
	return s.edit(func(d *models.Snapshot) error {
		d.LightTheme = theme
		return nil
	})
}

func (s *Session) SetHero(hero models.HeroConfig) error {
	return s.edit(func(d *models.Snapshot) error {
		d.HeroConfig = hero
		return nil
	})
}

func (s *Session) SetFont(font models.FontConfig) error {
	return s.edit(func(d *models.Snapshot) error {
		d.FontConfig = font
		return nil
	})
}

func (s *Session) SetSeasonalOffer(offer models.SeasonalOffer) error {
	return s.edit(func(d *models.Snapshot) error {
		d.SeasonalOffer = offer
		return nil
	})
}

// SetInstagramFeed replaces the feed title and username. Images are edited by index.
func (s *Session) SetInstagramFeed(title, username string) error {
	return s.edit(func(d *models.Snapshot) error {
		d.InstagramFeed.Title = title
		d.InstagramFeed.Username = username
		return nil
	})
}

func (s *Session) SetInstagramImage(index int, url string) error {
	return s.edit(func(d *models.Snapshot) error {
		if index < 0 || index >= len(d.InstagramFeed.ImageURLs) {
			return fmt.Errorf("%w: instagram image %d", ErrNotFound, index)
		}
		d.InstagramFeed.ImageURLs[index] = url
		return nil
	})
}

// Services

func (s *Session) UpdateService(svc models.Service) error {
	return s.edit(func(d *models.Snapshot) error {
		i := indexByID(d.Services, svc.ID, serviceID)
		if i < 0 {
			return fmt.Errorf("%w: service %d", ErrNotFound, svc.ID)
		}
		if d.Services[i].Derived() {
			return ErrDerivedService
		}
		svc.OriginID = 0
		d.Services[i] = svc
		return nil
	})
}

func (s *Session) AddService() (models.Service, error) {
	var added models.Service
	err := s.edit(func(d *models.Snapshot) error {
		added = newService(freshID(s.now(), slices.Concat(d.Services, d.FeaturedServices), serviceID))
		d.Services = append(d.Services, added)
		return nil
	})
	return added, err
}

func (s *Session) RemoveService(id int64) error {
	return s.edit(func(d *models.Snapshot) error {
		i := indexByID(d.Services, id, serviceID)
		if i < 0 {
			return fmt.Errorf("%w: service %d", ErrNotFound, id)
		}
		if d.Services[i].Derived() {
			return ErrDerivedService
		}
		d.Services = slices.Delete(d.Services, i, i+1)
		return nil
	})
}

// Featured services

// UpdateFeaturedService replaces a featured service and carries the change to
// its derived service, if one exists.
func (s *Session) UpdateFeaturedService(svc models.Service) error {
	return s.edit(func(d *models.Snapshot) error {
		i := indexByID(d.FeaturedServices, svc.ID, serviceID)
		if i < 0 {
			return fmt.Errorf("%w: featured service %d", ErrNotFound, svc.ID)
		}
		svc.OriginID = 0
		svc.ShowOnServicesPage = d.FeaturedServices[i].ShowOnServicesPage
		d.FeaturedServices[i] = svc
		if j := derivedIndex(d.Services, svc.ID); j >= 0 {
			d.Services[j] = derivedFrom(svc, d.Services[j].ID)
		}
		return nil
	})
}

func (s *Session) AddFeaturedService() (models.Service, error) {
	var added models.Service
	err := s.edit(func(d *models.Snapshot) error {
		added = newService(freshID(s.now(), slices.Concat(d.Services, d.FeaturedServices), serviceID))
		d.FeaturedServices = append(d.FeaturedServices, added)
		return nil
	})
	return added, err
}

// RemoveFeaturedService removes a featured service together with its derived service.
func (s *Session) RemoveFeaturedService(id int64) error {
	return s.edit(func(d *models.Snapshot) error {
		i := indexByID(d.FeaturedServices, id, serviceID)
		if i < 0 {
			return fmt.Errorf("%w: featured service %d", ErrNotFound, id)
		}
		d.FeaturedServices = slices.Delete(d.FeaturedServices, i, i+1)
		if j := derivedIndex(d.Services, id); j >= 0 {
			d.Services = slices.Delete(d.Services, j, j+1)
		}
		return nil
	})
}

// SetShowOnServicesPage toggles whether a featured service is mirrored into
// the services list. On creates the derived service if absent; off removes it.
func (s *Session) SetShowOnServicesPage(featuredID int64, on bool) error {
	return s.edit(func(d *models.Snapshot) error {
		i := indexByID(d.FeaturedServices, featuredID, serviceID)
		if i < 0 {
			return fmt.Errorf("%w: featured service %d", ErrNotFound, featuredID)
		}
		d.FeaturedServices[i].ShowOnServicesPage = on
		featured := d.FeaturedServices[i]

		j := derivedIndex(d.Services, featuredID)
		switch {
		case on && j < 0:
			id := freshID(s.now(), slices.Concat(d.Services, d.FeaturedServices), serviceID)
			d.Services = append(d.Services, derivedFrom(featured, id))
		case on:
			d.Services[j] = derivedFrom(featured, d.Services[j].ID)
		case j >= 0:
			d.Services = slices.Delete(d.Services, j, j+1)
		}
		return nil
	})
}

// Reviews

func (s *Session) UpdateReview(r models.Review) error {
	return s.edit(func(d *models.Snapshot) error {
		return replaceByID(d.Reviews, r, reviewID, "review")
	})
}

// AddReview prepends a blank five-star review.
func (s *Session) AddReview() (models.Review, error) {
	var added models.Review
	err := s.edit(func(d *models.Snapshot) error {
		added = models.Review{
			ID:     freshID(s.now(), d.Reviews, reviewID),
			Name:   "New Client",
			Rating: 5,
		}
		d.Reviews = append([]models.Review{added}, d.Reviews...)
		return nil
	})
	return added, err
}

func (s *Session) RemoveReview(id int64) error {
	return s.edit(func(d *models.Snapshot) error {
		var err error
		d.Reviews, err = removeByID(d.Reviews, id, reviewID, "review")
		return err
	})
}

// Social links

func (s *Session) UpdateSocialLink(l models.SocialLink) error {
	return s.edit(func(d *models.Snapshot) error {
		return replaceByID(d.SocialLinks, l, socialLinkID, "social link")
	})
}

func (s *Session) AddSocialLink() (models.SocialLink, error) {
	var added models.SocialLink
	err := s.edit(func(d *models.Snapshot) error {
		added = models.SocialLink{
			ID:       freshID(s.now(), d.SocialLinks, socialLinkID),
			Platform: "instagram",
			URL:      "https://",
		}
		d.SocialLinks = append(d.SocialLinks, added)
		return nil
	})
	return added, err
}

func (s *Session) RemoveSocialLink(id int64) error {
	return s.edit(func(d *models.Snapshot) error {
		var err error
		d.SocialLinks, err = removeByID(d.SocialLinks, id, socialLinkID, "social link")
		return err
	})
}

// Custom form fields

func (s *Session) UpdateCustomField(f models.CustomFormField) error {
	return s.edit(func(d *models.Snapshot) error {
		return replaceByID(d.CustomFields, f, customFieldID, "custom field")
	})
}

// RelabelCustomField sets a field's label and re-derives its name from it.
func (s *Session) RelabelCustomField(id int64, label string) error {
	return s.edit(func(d *models.Snapshot) error {
		i := indexByID(d.CustomFields, id, customFieldID)
		if i < 0 {
			return fmt.Errorf("%w: custom field %d", ErrNotFound, id)
		}
		d.CustomFields[i].Label = label
		d.CustomFields[i].Name = Slugify(label)
		return nil
	})
}

func (s *Session) AddCustomField() (models.CustomFormField, error) {
	var added models.CustomFormField
	err := s.edit(func(d *models.Snapshot) error {
		id := freshID(s.now(), d.CustomFields, customFieldID)
		added = models.CustomFormField{
			ID:      id,
			Label:   "New Field",
			Name:    fmt.Sprintf("new_field_%d", id),
			Type:    models.FieldText,
			Options: []string{},
		}
		d.CustomFields = append(d.CustomFields, added)
		return nil
	})
	return added, err
}

func (s *Session) RemoveCustomField(id int64) error {
	return s.edit(func(d *models.Snapshot) error {
		var err error
		d.CustomFields, err = removeByID(d.CustomFields, id, customFieldID, "custom field")
		return err
	})
}

// Gallery

func (s *Session) UpdateGalleryItem(item models.GalleryItem) error {
	return s.edit(func(d *models.Snapshot) error {
		return replaceByID(d.GalleryItems, item, galleryItemID, "gallery item")
	})
}

func (s *Session) AddGalleryItem() (models.GalleryItem, error) {
	var added models.GalleryItem
	err := s.edit(func(d *models.Snapshot) error {
		id := freshID(s.now(), d.GalleryItems, galleryItemID)
		added = models.GalleryItem{
			ID:               id,
			Type:             "photo",
			Title:            "New Media",
			URL:              placeholderPhoto(id),
			VideoOrientation: "landscape",
		}
		d.GalleryItems = append(d.GalleryItems, added)
		return nil
	})
	return added, err
}

func (s *Session) RemoveGalleryItem(id int64) error {
	return s.edit(func(d *models.Snapshot) error {
		var err error
		d.GalleryItems, err = removeByID(d.GalleryItems, id, galleryItemID, "gallery item")
		return err
	})
}

// Why choose us

func (s *Session) UpdateWhyChooseUsItem(item models.WhyChooseUsItem) error {
	return s.edit(func(d *models.Snapshot) error {
		return replaceByID(d.WhyChooseUsItems, item, whyChooseUsID, "why-choose-us item")
	})
}

func (s *Session) AddWhyChooseUsItem() (models.WhyChooseUsItem, error) {
	var added models.WhyChooseUsItem
	err := s.edit(func(d *models.Snapshot) error {
		added = models.WhyChooseUsItem{
			ID:    freshID(s.now(), d.WhyChooseUsItems, whyChooseUsID),
			Title: "New Reason",
		}
		d.WhyChooseUsItems = append(d.WhyChooseUsItems, added)
		return nil
	})
	return added, err
}

func (s *Session) RemoveWhyChooseUsItem(id int64) error {
	return s.edit(func(d *models.Snapshot) error {
		var err error
		d.WhyChooseUsItems, err = removeByID(d.WhyChooseUsItems, id, whyChooseUsID, "why-choose-us item")
		return err
	})
}

func (s *Session) now() int64 {
	return s.clock.Now().UnixMilli()
}

func newService(id int64) models.Service {
	return models.Service{
		ID:               id,
		Name:             "New Service",
		Description:      "A wonderful new service offering.",
		Price:            "$50",
		PhotoURL:         placeholderPhoto(id),
		VideoOrientation: "landscape",
		Layout:           "standard",
	}
}

func placeholderPhoto(id int64) string {
	return fmt.Sprintf("https://picsum.photos/seed/%d/600/400", id)
}

// derivedFrom copies a featured service into a services-list entry linked back to it.
func derivedFrom(featured models.Service, id int64) models.Service {
	out := featured
	out.ID = id
	out.OriginID = featured.ID
	return out
}

// derivedIndex finds the service mirrored from the featured service originID.
// Lists hold tens of entries, so a linear scan is enough.
func derivedIndex(services []models.Service, originID int64) int {
	return slices.IndexFunc(services, func(s models.Service) bool { return s.OriginID == originID })
}

func serviceID(v models.Service) int64 { return v.ID }
func reviewID(v models.Review) int64 { return v.ID }
func socialLinkID(v models.SocialLink) int64 { return v.ID }
func customFieldID(v models.CustomFormField) int64 { return v.ID }
func galleryItemID(v models.GalleryItem) int64 { return v.ID }
func whyChooseUsID(v models.WhyChooseUsItem) int64 { return v.ID }

// freshID returns the current time in milliseconds, bumped past every id in list.
func freshID[T any](now int64, list []T, idOf func(T) int64) int64 {
	id := now
	for _, v := range list {
		if existing := idOf(v); existing >= id {
			id = existing + 1
		}
	}
	return id
}

func indexByID[T any](list []T, id int64, idOf func(T) int64) int {
	return slices.IndexFunc(list, func(v T) bool { return idOf(v) == id })
}

func replaceByID[T any](list []T, v T, idOf func(T) int64, what string) error {
	i := indexByID(list, idOf(v), idOf)
	if i < 0 {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, idOf(v))
	}
	list[i] = v
	return nil
}

func removeByID[T any](list []T, id int64, idOf func(T) int64, what string) ([]T, error) {
	i := indexByID(list, id, idOf)
	if i < 0 {
		return list, fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}
	return slices.Delete(list, i, i+1), nil
}
