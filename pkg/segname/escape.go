package segname

import "net/url"

// EscapeComponent escapes a single path component for inclusion in a
// hierarchical segment name, using the same percent-escaping net/url
// applies to a path segment. original_source/fs/segment.cc escapes via
// ndn-cpp's Name::Component::toEscapedString and then unescapes any
// encoded "/" it introduced; url.PathEscape never encodes an input "/"
// in the first place (a bare "/" cannot appear inside one component,
// since Name already split on it), so the extra unescape pass has no
// equivalent here.
func EscapeComponent(component string) string {
	return url.PathEscape(component)
}

// UnescapeComponent reverses EscapeComponent, turning an escaped name
// component back into the original path component.
func UnescapeComponent(component string) (string, error) {
	return url.PathUnescape(component)
}
