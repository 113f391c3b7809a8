package dispatch

import (
	"net/url"
	"testing"
)

func TestFirstSegment(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"//", ""},
		{"/demo1", "demo1"},
		{"/demo1/", "demo1"},
		{"/demo1/page/x", "demo1"},
		{"//demo1/page", "demo1"},
		{"demo1/page", "demo1"},
	}

	for _, tt := range tests {
		if got := FirstSegment(tt.path); got != tt.want {
			t.Errorf("FirstSegment(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestStripSegment(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/demo1", "/"},
		{"/demo1/", "/"},
		{"/demo1/page", "/page"},
		{"/demo1/assets/x.js", "/assets/x.js"},
		{"/demo1/a/b/c/d/", "/a/b/c/d/"},
		{"//demo1/page", "/page"},
		{"/demo1//page", "//page"},
	}

	for _, tt := range tests {
		if got := StripSegment(tt.path); got != tt.want {
			t.Errorf("StripSegment(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestIsRootPage(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"", false},
		{"demo1", false},
		{"/demo1", true},
		{"/demo1/", true},
		{"/demo1/page", false},
		{"/demo1/assets/x.js", false},
		// Only the last two separators are considered.
		{"/demo1/page/", true},
		{"/demo1/a/b", false},
	}

	for _, tt := range tests {
		if got := IsRootPage(tt.path); got != tt.want {
			t.Errorf("IsRootPage(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestStripURL(t *testing.T) {
	t.Run("keeps query and leaves input untouched", func(t *testing.T) {
		u, _ := url.Parse("http://example.com/demo1/page?x=1")
		got := stripURL(u)

		if got.Path != "/page" || got.RawQuery != "x=1" {
			t.Errorf("stripURL() = path %q query %q", got.Path, got.RawQuery)
		}
		if u.Path != "/demo1/page" {
			t.Errorf("input path changed to %q", u.Path)
		}
	})

	t.Run("strips raw path", func(t *testing.T) {
		u, _ := url.Parse("http://example.com/demo1/a%2Fb")
		got := stripURL(u)

		if got.Path != "/a/b" || got.RawPath != "/a%2Fb" {
			t.Errorf("stripURL() = path %q raw %q", got.Path, got.RawPath)
		}
		if got.EscapedPath() != "/a%2Fb" {
			t.Errorf("EscapedPath() = %q", got.EscapedPath())
		}
	})
}
