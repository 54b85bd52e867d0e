package models

import "slices"

// Snapshot is the client-visible part of the site document.
// It never carries the tenant password.
type Snapshot struct {
	LightTheme         Theme             `json:"lightTheme"`
	HeroConfig         HeroConfig        `json:"heroConfig"`
	FontConfig         FontConfig        `json:"fontConfig"`
	Services           []Service         `json:"services"`
	FeaturedServices   []Service         `json:"featuredServices"`
	SocialLinks        []SocialLink      `json:"socialLinks"`
	CustomFields       []CustomFormField `json:"customFields"`
	Reviews            []Review          `json:"reviews"`
	GalleryItems       []GalleryItem     `json:"galleryItems"`
	WhyChooseUsItems   []WhyChooseUsItem `json:"whyChooseUsItems"`
	SeasonalOffer      SeasonalOffer     `json:"seasonalOffer"`
	InstagramFeed      InstagramFeed     `json:"instagramFeed"`
	WhatsappNumber     string            `json:"whatsappNumber"`
	WhatsappMessage    string            `json:"whatsappMessage"`
	ContactEmail       string            `json:"contactEmail"`
	ContactTip         string            `json:"contactTip"`
	LogoURL            string            `json:"logoUrl"`
	BusinessName       string            `json:"businessName"`
	Tagline            string            `json:"tagline"`
	ShowPhotoGallery   bool              `json:"showPhotoGallery"`
	ShowVideoGallery   bool              `json:"showVideoGallery"`
	ShowMainGallery    bool              `json:"showMainGallery"`
	ShowDesignerCredit bool              `json:"showDesignerCredit"`
	DesignerCreditURL  string            `json:"designerCreditUrl"`
	InactivityTimeout  int               `json:"inactivityTimeout"` // seconds, <= 0 disables auto-lock
}

// ConfigDocument is the canonical server-held document: the snapshot plus the tenant password.
type ConfigDocument struct {
	Snapshot
	UserPassword string `json:"userPassword"`
}

// PasswordKey is the JSON key of the tenant password.
const PasswordKey = "userPassword"

// Public returns a deep copy of the document with the tenant password stripped.
func (d ConfigDocument) Public() Snapshot {
	return d.Snapshot.Clone()
}

// Clone returns a deep copy of the document.
func (d ConfigDocument) Clone() ConfigDocument {
	return ConfigDocument{Snapshot: d.Snapshot.Clone(), UserPassword: d.UserPassword}
}

// Clone returns a deep copy that shares no slices with s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Services = slices.Clone(s.Services)
	out.FeaturedServices = slices.Clone(s.FeaturedServices)
	out.SocialLinks = slices.Clone(s.SocialLinks)
	out.CustomFields = slices.Clone(s.CustomFields)
	for i := range out.CustomFields {
		out.CustomFields[i].Options = slices.Clone(out.CustomFields[i].Options)
	}
	out.Reviews = slices.Clone(s.Reviews)
	out.GalleryItems = slices.Clone(s.GalleryItems)
	out.WhyChooseUsItems = slices.Clone(s.WhyChooseUsItems)
	out.InstagramFeed.ImageURLs = slices.Clone(s.InstagramFeed.ImageURLs)
	return out
}

// Service is an entry of the services or featured-services list.
// OriginID links a derived service back to the featured service it was pushed from.
type Service struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	Price              string  `json:"price"`
	PhotoURL           string  `json:"photoUrl"`
	VideoURL           string  `json:"videoUrl"`
	VideoOrientation   string  `json:"videoOrientation,omitempty"`
	Layout             string  `json:"layout,omitempty"`
	DiscountPercentage float64 `json:"discountPercentage"`
	Promotion          string  `json:"promotion"`
	ShowInPopup        bool    `json:"showInPopup"`
	OriginID           int64   `json:"originId,omitempty"`
	ShowOnServicesPage bool    `json:"showOnServicesPage,omitempty"`
}

// Derived reports whether the service mirrors a featured service.
func (s Service) Derived() bool { return s.OriginID != 0 }

type SocialLink struct {
	ID       int64  `json:"id"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// Custom form field types.
const (
	FieldText     = "text"
	FieldTextarea = "textarea"
	FieldSelect   = "select"
)

type CustomFormField struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

type Review struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Comment  string `json:"comment"`
	Rating   int    `json:"rating"`
	PhotoURL string `json:"photoUrl"`
	Featured bool   `json:"featured"`
}

type GalleryItem struct {
	ID               int64  `json:"id"`
	Type             string `json:"type"` // photo | video
	URL              string `json:"url"`
	Title            string `json:"title"`
	VideoOrientation string `json:"videoOrientation,omitempty"`
}

type WhyChooseUsItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type SeasonalOffer struct {
	BackgroundImage string `json:"backgroundImage"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ButtonText      string `json:"buttonText"`
}

type InstagramFeed struct {
	Title     string   `json:"title"`
	Username  string   `json:"username"`
	ImageURLs []string `json:"imageUrls"`
}

type FontConfig struct {
	HeadingFont string `json:"headingFont"`
	BodyFont    string `json:"bodyFont"`
}

type HeroConfig struct {
	HeroImage                 string  `json:"heroImage"`
	HeroTitle                 string  `json:"heroTitle"`
	HeroSubtitle              string  `json:"heroSubtitle"`
	HeroOverlayColor          string  `json:"heroOverlayColor"`
	HeroOverlayOpacity        float64 `json:"heroOverlayOpacity"`
	HeroButtonPrimaryBg       string  `json:"heroButtonPrimaryBg"`
	HeroButtonPrimaryText     string  `json:"heroButtonPrimaryText"`
	HeroButtonSecondaryBg     string  `json:"heroButtonSecondaryBg"`
	HeroButtonSecondaryText   string  `json:"heroButtonSecondaryText"`
	HeroButtonSecondaryBorder string  `json:"heroButtonSecondaryBorder"`
	MediaButtonPhotoBg        string  `json:"mediaButtonPhotoBg"`
	MediaButtonPhotoText      string  `json:"mediaButtonPhotoText"`
	MediaButtonVideoBg        string  `json:"mediaButtonVideoBg"`
	MediaButtonVideoText      string  `json:"mediaButtonVideoText"`
	MediaButtonGalleryBg      string  `json:"mediaButtonGalleryBg"`
	MediaButtonGalleryText    string  `json:"mediaButtonGalleryText"`
	MediaButtonGalleryBorder  string  `json:"mediaButtonGalleryBorder"`
}
