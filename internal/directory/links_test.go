package directory

import (
	"net/url"
	"testing"
)

// TestExtractMemberLinks tests link harvesting from a listing page.
func TestExtractMemberLinks(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://example.test")
	if err != nil {
		t.Fatal(err)
	}

	body := []byte(`<html><body>
		<nav><a href="/members">All Members</a> <a href="/about">About</a></nav>
		<ul class="member-list">
			<li><a href="/members/alpha-treks">Alpha Treks</a></li>
			<li><a href="https://example.test/members/beta-treks">Beta Treks</a></li>
			<li><a href="/members/alpha-treks#contact">Alpha again</a></li>
			<li><a href="mailto:info@example.test">mail</a></li>
			<li><a href="tel:+9771234567">call</a></li>
			<li><a href="javascript:void(0)">menu</a></li>
			<li><a href="https://other.test/members/off-site">off-site</a></li>
			<li><a href="#">top</a></li>
		</ul>
	</body></html>`)

	links, err := extractMemberLinks(body, base)
	if err != nil {
		t.Fatalf("failed to extract links: %v", err)
	}

	want := []string{
		"https://example.test/members/alpha-treks",
		"https://example.test/members/beta-treks",
	}
	if len(links) != len(want) {
		t.Fatalf("expected %d links, got %d: %v", len(want), len(links), links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("link %d: expected %q, got %q", i, want[i], links[i])
		}
	}
}

// TestResolveMemberLink tests the detail-page link filter.
func TestResolveMemberLink(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://example.test")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		href string
		want string
	}{
		{name: "relative detail link", href: "/members/alpha-treks", want: "https://example.test/members/alpha-treks"},
		{name: "absolute detail link", href: "https://example.test/members/alpha-treks", want: "https://example.test/members/alpha-treks"},
		{name: "fragment stripped", href: "/members/alpha-treks#contact", want: "https://example.test/members/alpha-treks"},
		{name: "listing root is not a detail page", href: "/members", want: ""},
		{name: "listing root with trailing slash", href: "/members/", want: ""},
		{name: "other path", href: "/contact", want: ""},
		{name: "other host", href: "https://other.test/members/alpha-treks", want: ""},
		{name: "mailto", href: "mailto:a@b.test", want: ""},
		{name: "empty", href: "", want: ""},
		{name: "bare fragment", href: "#", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := resolveMemberLink(tt.href, base); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
