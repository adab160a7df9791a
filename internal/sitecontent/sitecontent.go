// Package sitecontent holds the default values of every editable site key
// and assembles the flat key/value content rows into the structured
// configuration the public pages render from.
package sitecontent

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"researchoffice/internal/models"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ServiceCount is the number of service cards on the home page.
const ServiceCount = 4

var loadDefaults = sync.OnceValues(func() ([]models.ContentItem, error) {
	var items []models.ContentItem
	if err := yaml.Unmarshal(defaultsYAML, &items); err != nil {
		return nil, fmt.Errorf("parse content defaults: %w", err)
	}
	return items, nil
})

// Defaults returns the seed rows in declaration order.
func Defaults() ([]models.ContentItem, error) {
	items, err := loadDefaults()
	if err != nil {
		return nil, err
	}
	out := make([]models.ContentItem, len(items))
	copy(out, items)
	return out, nil
}

// DefaultValues returns the default value of every key.
func DefaultValues() models.ContentValues {
	items, err := loadDefaults()
	if err != nil {
		return models.ContentValues{}
	}
	v := make(models.ContentValues, len(items))
	for _, it := range items {
		v[it.Key] = it.Value
	}
	return v
}

// SiteConfig is the structured view of the site content used by templates.
type SiteConfig struct {
	Theme    Theme
	Hero     Hero
	About    About
	Contact  Contact
	Nav      Nav
	Services []Service
}

type Theme struct {
	Primary string
}

type Hero struct {
	Title    string
	Subtitle string
	Banner   string
}

type About struct {
	Title    string
	Desc     string
	Image    string
	LinkText string
	LinkURL  string
	Bullets  []string
}

type Contact struct {
	Address string
	Phone   string
	Website string
}

type Nav struct {
	Home     string
	About    string
	Repo     string
	News     string
	Services string
	Download string
	Contact  string
}

// Service is one card of the services grid. Icon is either a name from
// the icon set or an image path.
type Service struct {
	Title  string
	Icon   string
	Image  string
	Desc   string
	URL    string
	Detail string
}

// Build assembles a SiteConfig from stored values. Every key falls back to
// its default when missing or blank, so no rendered field is ever empty
// unless its default is empty too.
func Build(values models.ContentValues) SiteConfig {
	defaults := DefaultValues()
	get := func(key string) string {
		return values.Get(key, defaults[key])
	}

	cfg := SiteConfig{
		Theme: Theme{Primary: get("theme_color")},
		Hero: Hero{
			Title:    get("hero_title"),
			Subtitle: get("hero_subtitle"),
			Banner:   get("hero_banner"),
		},
		About: About{
			Title:    get("about_title"),
			Desc:     get("about_desc"),
			Image:    get("about_image"),
			LinkText: get("about_link_text"),
			LinkURL:  get("about_link_url"),
		},
		Contact: Contact{
			Address: get("contact_address"),
			Phone:   get("contact_phone"),
			Website: get("contact_website"),
		},
		Nav: Nav{
			Home:     get("nav_home"),
			About:    get("nav_about"),
			Repo:     get("nav_repo"),
			News:     get("nav_news"),
			Services: get("nav_services"),
			Download: get("nav_download"),
			Contact:  get("nav_contact"),
		},
	}

	for i := 1; i <= 4; i++ {
		if b := get(fmt.Sprintf("about_bullet_%d", i)); b != "" {
			cfg.About.Bullets = append(cfg.About.Bullets, b)
		}
	}

	for i := 1; i <= ServiceCount; i++ {
		key := func(field string) string { return fmt.Sprintf("service_%d_%s", i, field) }
		cfg.Services = append(cfg.Services, Service{
			Title:  get(key("title")),
			Icon:   get(key("icon")),
			Image:  get(key("image")),
			Desc:   get(key("desc")),
			URL:    get(key("url")),
			Detail: get(key("detail")),
		})
	}

	return cfg
}
