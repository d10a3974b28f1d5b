package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/poiesic/docuchat/core"
)

// routeTable maps detected file types to extraction routes.
var routeTable = map[string]core.Route{
	"pdf":  core.RoutePDF,
	"docx": core.RouteDocx,
	"doc":  core.RouteDocx,
	"xlsx": core.RouteExcel,
	"xls":  core.RouteExcel,
	"csv":  core.RouteExcel,
	"txt":  core.RouteText,
	"md":   core.RouteText,
	"jpg":  core.RouteImage,
	"jpeg": core.RouteImage,
	"png":  core.RouteImage,
	"tiff": core.RouteImage,
}

// DetectFileType derives the file type from a file key or path: the
// lowercased extension without the leading dot.
func DetectFileType(fileKey string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(fileKey), "."))
}

// IsSupported reports whether a file type appears in the routing table.
func IsSupported(fileType string) bool {
	_, ok := routeTable[fileType]
	return ok
}

// RouteFor resolves the extraction route for a file type. The supported
// flag short-circuits before the table lookup; unknown types also resolve
// to RouteUnsupported. Pure and deterministic: the same inputs always
// yield the same route.
func RouteFor(fileType string, supported bool) core.Route {
	if !supported {
		return core.RouteUnsupported
	}
	route, ok := routeTable[fileType]
	if !ok {
		return core.RouteUnsupported
	}
	return route
}
