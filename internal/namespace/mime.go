package namespace

import "strings"

// mimeByExt is a small extension-to-MIME table seeded from the common
// types the original ndnfs-d file metadata carries; anything unrecognized
// falls back to the generic octet-stream type.
var mimeByExt = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".txt":  "text/plain",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
}

const defaultMimeType = "application/octet-stream"

// mimeFromExt infers a mime_type from p's extension, matching case
// insensitively the way the original file-creation path does.
func mimeFromExt(p string) string {
	ext := strings.ToLower(extOf(p))
	if mt, ok := mimeByExt[ext]; ok {
		return mt
	}
	return defaultMimeType
}

func extOf(p string) string {
	for i := len(p) - 1; i >= 0 && p[i] != '/'; i-- {
		if p[i] == '.' {
			return p[i:]
		}
	}
	return ""
}
