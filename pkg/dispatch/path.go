package dispatch

import (
	"net/url"
	"strings"
)

// FirstSegment returns the first segment of path, ignoring leading slashes.
//
//	FirstSegment("/demo1/page") == "demo1"
//	FirstSegment("//demo1")     == "demo1"
//	FirstSegment("/")           == ""
func FirstSegment(path string) string {
	path = strings.TrimLeft(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}

// StripSegment removes the first segment of path and returns the remainder,
// which always begins with a slash.
//
//	StripSegment("/demo1/page/x") == "/page/x"
//	StripSegment("/demo1/")       == "/"
//	StripSegment("/demo1")        == "/"
func StripSegment(path string) string {
	path = strings.TrimLeft(path, "/")
	i := strings.IndexByte(path, '/')
	if i < 0 {
		return "/"
	}
	return path[i:]
}

// IsRootPage reports whether path addresses an application's root page.
//
// The path is split from the right into at most three slash-delimited parts.
// It is a root page when that yields exactly two parts, or three parts whose
// last part is empty. "/demo1" and "/demo1/" are root pages, "/demo1/page"
// is not. "/demo1/page/" also counts as a root page.
func IsRootPage(path string) bool {
	switch n := strings.Count(path, "/"); {
	case n == 1:
		return true
	case n >= 2:
		return strings.HasSuffix(path, "/")
	default:
		return false
	}
}

// stripURL returns a copy of u with the first path segment removed from
// both Path and RawPath.
func stripURL(u *url.URL) *url.URL {
	stripped := *u
	stripped.Path = StripSegment(u.Path)
	if u.RawPath != "" {
		stripped.RawPath = StripSegment(u.RawPath)
		if unescaped, err := url.PathUnescape(stripped.RawPath); err != nil || unescaped != stripped.Path {
			stripped.RawPath = ""
		}
	}
	return &stripped
}
