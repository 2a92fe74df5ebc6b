// Package render projects a dashboard configuration onto HTML markup.
//
// Every function is pure: the same input always yields byte-identical
// output, whatever the state of the network or the controller.
package render

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/MrSnakeDoc/navspec/internal/domain"
)

const (
	// NoCategories replaces the category list of an empty configuration.
	NoCategories = `<div class="loading">No categories found</div>`

	// NoLinks replaces the link grid of a category without links.
	NoLinks = `<div class="no-links">No links in this category</div>`

	// Loading is shown while the first configuration is in flight.
	Loading = `<div class="loading">Loading dashboard...</div>`
)

// Escape makes text safe to embed as element content or as a quoted
// attribute value. Displayed, the result reads exactly as text.
func Escape(text string) string {
	return html.EscapeString(text)
}

// Dashboard renders the main region for cfg. The preferences snapshot the
// caller rendered with does not affect the output yet.
func Dashboard(cfg domain.Configuration, _ *domain.UserPreferences) string {
	return Categories(cfg.Categories)
}

// Categories renders every category in order, or the empty-state message.
func Categories(categories []domain.Category) string {
	if len(categories) == 0 {
		return NoCategories
	}

	var b strings.Builder
	for _, c := range categories {
		b.WriteString(Category(c))
	}
	return b.String()
}

// Category renders one category card. The icon is trusted operator markup
// and is embedded without escaping.
func Category(c domain.Category) string {
	var b strings.Builder
	b.WriteString(`<div class="category-card"><div class="category-header"><h3>`)
	b.WriteString(Escape(c.Name))
	b.WriteString(`</h3><div class="category-description">`)
	b.WriteString(Escape(c.Description))
	b.WriteString(`</div>`)
	if icon := c.IconOrEmpty(); icon != "" {
		b.WriteString(`<div class="category-icon">`)
		b.WriteString(icon)
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div><div class="links-grid">`)
	b.WriteString(Links(c.Links))
	b.WriteString(`</div></div>`)
	return b.String()
}

// Links renders every link in order, or the empty-state message.
func Links(links []domain.Link) string {
	if len(links) == 0 {
		return NoLinks
	}

	var b strings.Builder
	for _, l := range links {
		b.WriteString(Link(l))
	}
	return b.String()
}

// Link renders one link card. The status is used verbatim both as a class
// token and as the label, so values with spaces produce several tokens.
func Link(l domain.Link) string {
	status := Escape(l.StatusOrDefault())
	url := Escape(l.URL)

	var b strings.Builder
	b.WriteString(`<a href="`)
	b.WriteString(url)
	b.WriteString(`" class="link-card" target="_blank" rel="noopener noreferrer"><div class="link-info"><div class="link-name">`)
	b.WriteString(Escape(l.Name))
	b.WriteString(`</div><div class="link-description">`)
	b.WriteString(Escape(l.Description))
	b.WriteString(`</div><div class="link-url">`)
	b.WriteString(url)
	b.WriteString(`</div>`)
	b.WriteString(Tags(l.Tags))
	b.WriteString(`</div><div class="link-status `)
	b.WriteString(status)
	b.WriteString(`">`)
	b.WriteString(status)
	b.WriteString(`</div></a>`)
	return b.String()
}

// Tags renders one token per tag, or nothing at all.
func Tags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<div class="link-tags">`)
	for _, tag := range tags {
		b.WriteString(`<span class="tag">`)
		b.WriteString(Escape(tag))
		b.WriteString(`</span>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// ErrorPanel replaces the main region when a load fails. The retry button
// asks the host to restart the controller.
func ErrorPanel(message string) string {
	var b strings.Builder
	b.WriteString(`<div class="error-message"><h3>Error</h3><p>`)
	b.WriteString(Escape(message))
	b.WriteString(`</p><button type="button" class="retry" data-action="retry">Retry</button></div>`)
	return b.String()
}
