package content

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("article not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrContentRequired = errors.New("content is required")
	ErrInvalidCategory = errors.New("invalid category")
)

// Category is an article topic group.
type Category string

const (
	CategoryGeneral         Category = "general"
	CategoryHousehold       Category = "rumah_tangga"
	CategoryRenewableEnergy Category = "energi_terbarukan"
	CategoryEnvironment     Category = "lingkungan"
	CategoryTechnology      Category = "teknologi"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryGeneral,
	CategoryHousehold,
	CategoryRenewableEnergy,
	CategoryEnvironment,
	CategoryTechnology,
}

// Label returns the Indonesian display name.
func (c Category) Label() string {
	switch c {
	case CategoryGeneral:
		return "Umum"
	case CategoryHousehold:
		return "Rumah Tangga"
	case CategoryRenewableEnergy:
		return "Energi Terbarukan"
	case CategoryEnvironment:
		return "Lingkungan"
	case CategoryTechnology:
		return "Teknologi"
	default:
		return string(c)
	}
}

// ParseCategory validates a category value. Empty means general.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryGeneral, nil
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// ParseTags splits a comma-separated tag string, trimming and dropping blanks.
func ParseTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Article is an educational piece on saving energy.
type Article struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Summary      string    `json:"summary"`
	Category     Category  `json:"category"`
	Tags         []string  `json:"tags"`
	ThumbnailURL string    `json:"thumbnail_url"`
	IsPublished  bool      `json:"is_published"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks the fields an editor must fill in.
func (a *Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(a.Content) == "" {
		return ErrContentRequired
	}
	if a.Category == "" {
		a.Category = CategoryGeneral
	}
	if _, err := ParseCategory(string(a.Category)); err != nil {
		return err
	}
	return nil
}

// Status filters admin listings.
type Status string

const (
	StatusAll       Status = "all"
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
)

// ParseStatus maps a query value to a Status; unknown values mean all.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPublished:
		return StatusPublished
	case StatusDraft:
		return StatusDraft
	default:
		return StatusAll
	}
}
