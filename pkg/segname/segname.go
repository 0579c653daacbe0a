// Package segname builds the hierarchical, wire-visible name a segment is
// signed under. The name is GLOBAL_PREFIX, the file's path split into
// components at "/", a Version component, and a Segment component — every
// path component is URI-escaped so the name round-trips exactly the way
// original_source/fs/segment.cc's Name(uri) construction does.
package segname

import (
	"fmt"
	"strings"
)

// versionComponent and segmentComponent mirror the marker names
// ndn-cpp's Name.appendVersion/appendSegment embed ahead of the integer,
// so a segment name is unambiguous about which trailing components are
// version and segment rather than ordinary path components.
const (
	versionComponent = "v"
	segmentComponent = "seg"
)

// Name builds the hierarchical segment name for one (path, version,
// segment) triple under globalPrefix. path must be an absolute,
// slash-separated path as stored in FileRecord; it is split into
// components and each component is escaped independently, so a literal
// "/" inside a filename can never be mistaken for a path separator.
func Name(globalPrefix, path string, version, segment int) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(globalPrefix, "/"))

	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(EscapeComponent(part))
	}

	fmt.Fprintf(&b, "/%s%d/%s%d", versionComponent, version, segmentComponent, segment)
	return b.String()
}
