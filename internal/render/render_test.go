package render

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"pgregory.net/rapid"

	"github.com/MrSnakeDoc/navspec/internal/domain"
)

type fataler interface {
	Fatalf(format string, args ...any)
}

func parse(t fataler, markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("failed to parse markup: %v", err)
	}
	return doc
}

func homeConfig() domain.Configuration {
	return domain.Configuration{
		Metadata: domain.Metadata{Name: "Home"},
		Categories: []domain.Category{
			{
				Name:        "Dev",
				Description: "d",
				Links: []domain.Link{
					{
						Name:        "Repo",
						URL:         "https://x",
						Description: "desc",
						Tags:        []string{"a", "b"},
					},
				},
			},
		},
	}
}

func TestDashboardScenario(t *testing.T) {
	doc := parse(t, Dashboard(homeConfig(), nil))

	cards := doc.Find(".category-card")
	if cards.Length() != 1 {
		t.Fatalf("got %d category cards, want 1", cards.Length())
	}
	if got := cards.Find(".category-header h3").Text(); got != "Dev" {
		t.Errorf("category title = %q, want Dev", got)
	}

	links := cards.Find("a.link-card")
	if links.Length() != 1 {
		t.Fatalf("got %d links, want 1", links.Length())
	}
	if got := links.Find(".link-name").Text(); got != "Repo" {
		t.Errorf("link name = %q, want Repo", got)
	}
	if href, _ := links.Attr("href"); href != "https://x" {
		t.Errorf("href = %q, want https://x", href)
	}
	if target, _ := links.Attr("target"); target != "_blank" {
		t.Errorf("target = %q, want _blank", target)
	}

	var tags []string
	links.Find(".tag").Each(func(_ int, s *goquery.Selection) {
		tags = append(tags, s.Text())
	})
	if strings.Join(tags, ",") != "a,b" {
		t.Errorf("tags = %v, want [a b]", tags)
	}

	status := links.Find(".link-status")
	if !status.HasClass("active") || status.Text() != "active" {
		t.Errorf("status class/label = %q/%q, want active", status.AttrOr("class", ""), status.Text())
	}
}

func TestCategoriesEmpty(t *testing.T) {
	for name, in := range map[string][]domain.Category{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			if got := Categories(in); got != NoCategories {
				t.Errorf("Categories() = %q, want placeholder", got)
			}
		})
	}
}

func TestLinksEmpty(t *testing.T) {
	for name, in := range map[string][]domain.Link{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			if got := Links(in); got != NoLinks {
				t.Errorf("Links() = %q, want placeholder", got)
			}
		})
	}

	doc := parse(t, Category(domain.Category{Name: "Empty"}))
	if got := doc.Find(".no-links").Text(); got != "No links in this category" {
		t.Errorf("placeholder text = %q", got)
	}
}

func TestTagsEmpty(t *testing.T) {
	if got := Tags(nil); got != "" {
		t.Errorf("Tags(nil) = %q, want empty", got)
	}
	if got := Tags([]string{}); got != "" {
		t.Errorf("Tags([]) = %q, want empty", got)
	}
}

func TestLinkStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    *string
		wantLabel string
		wantClass []string
	}{
		{name: "absent", status: nil, wantLabel: "active", wantClass: []string{"active"}},
		{name: "custom", status: domain.Ptr("maintenance"), wantLabel: "maintenance", wantClass: []string{"maintenance"}},
		{name: "with spaces", status: domain.Ptr("read only"), wantLabel: "read only", wantClass: []string{"read", "only"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, Link(domain.Link{Name: "n", URL: "u", Status: tt.status}))
			status := doc.Find(".link-status")
			if got := status.Text(); got != tt.wantLabel {
				t.Errorf("label = %q, want %q", got, tt.wantLabel)
			}
			for _, c := range tt.wantClass {
				if !status.HasClass(c) {
					t.Errorf("missing class %q in %q", c, status.AttrOr("class", ""))
				}
			}
		})
	}
}

func TestCategoryIconIsTrusted(t *testing.T) {
	icon := `<svg class="ico"><circle r="1"/></svg>`
	markup := Category(domain.Category{Name: "<b>x</b>", Icon: &icon})

	if !strings.Contains(markup, icon) {
		t.Errorf("icon should be embedded verbatim, got %s", markup)
	}
	if strings.Contains(markup, "<b>x</b>") {
		t.Errorf("name should be escaped, got %s", markup)
	}

	doc := parse(t, markup)
	if doc.Find(".category-icon svg.ico").Length() != 1 {
		t.Error("icon markup was not parsed as an element")
	}
	if got := doc.Find("h3").Text(); got != "<b>x</b>" {
		t.Errorf("title = %q, want literal <b>x</b>", got)
	}

	if got := Category(domain.Category{Name: "n"}); strings.Contains(got, "category-icon") {
		t.Errorf("absent icon should not render a block: %s", got)
	}
}

func TestOrderPreserved(t *testing.T) {
	cfg := domain.Configuration{Categories: []domain.Category{
		{Name: "Z", Links: []domain.Link{{Name: "z2"}, {Name: "z1"}}},
		{Name: "A", Links: []domain.Link{{Name: "a1"}}},
	}}
	doc := parse(t, Dashboard(cfg, nil))

	var titles, names []string
	doc.Find("h3").Each(func(_ int, s *goquery.Selection) { titles = append(titles, s.Text()) })
	doc.Find(".link-name").Each(func(_ int, s *goquery.Selection) { names = append(names, s.Text()) })

	if strings.Join(titles, ",") != "Z,A" {
		t.Errorf("category order = %v", titles)
	}
	if strings.Join(names, ",") != "z2,z1,a1" {
		t.Errorf("link order = %v", names)
	}
}

func TestDashboardDeterministic(t *testing.T) {
	cfg := homeConfig()
	prefs := domain.DefaultPreferences()
	first := Dashboard(cfg, &prefs)
	for i := 0; i < 5; i++ {
		if got := Dashboard(cfg, &prefs); got != first {
			t.Fatalf("render %d differs:\n%s\n%s", i, got, first)
		}
	}
}

func TestErrorPanel(t *testing.T) {
	doc := parse(t, ErrorPanel(`Failed <to> load "dashboard"`))
	if got := doc.Find(".error-message p").Text(); got != `Failed <to> load "dashboard"` {
		t.Errorf("message = %q", got)
	}
	if doc.Find(`.error-message button[data-action="retry"]`).Length() != 1 {
		t.Error("retry control missing")
	}
}

var textAlphabet = []rune(`<>&"'/=;# abcXYZ019é中` + "\t\n")

func TestEscapeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringOf(rapid.SampledFrom(textAlphabet)).Draw(t, "text")

		escaped := Escape(text)
		if strings.ContainsAny(escaped, `<>"'`) {
			t.Fatalf("Escape(%q) = %q still holds structural characters", text, escaped)
		}

		doc := parse(t, `<p title="`+escaped+`">`+escaped+`</p>`)
		p := doc.Find("p")
		if got := p.Text(); got != text {
			t.Fatalf("content read back %q, want %q", got, text)
		}
		if got := p.AttrOr("title", ""); got != text {
			t.Fatalf("attribute read back %q, want %q", got, text)
		}
	})
}

func TestEscapeTwiceRendersOnce(t *testing.T) {
	text := `<script>alert("x")</script>`
	doc := parse(t, "<p>"+Escape(Escape(text))+"</p>")
	if got := doc.Find("p").Text(); got != Escape(text) {
		t.Errorf("double escape displays %q, want %q", got, Escape(text))
	}
}
