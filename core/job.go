package core

// JobStatus is the state of an ingestion job inside the processing pipeline.
// The pipeline traverses each edge of the state machine at most once per
// invocation; Stored, Failed and Skipped are terminal.
type JobStatus int

const (
	StatusPending JobStatus = iota
	StatusFileFetched
	StatusRouted
	StatusExtracted
	StatusChunked
	StatusStored
	StatusFailed
	StatusSkipped
)

// String returns the wire name of the status.
func (s JobStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFileFetched:
		return "file_fetched"
	case StatusRouted:
		return "routed"
	case StatusExtracted:
		return "extracted"
	case StatusChunked:
		return "chunked"
	case StatusStored:
		return "stored"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is a terminal state.
func (s JobStatus) Terminal() bool {
	return s == StatusStored || s == StatusFailed || s == StatusSkipped
}

// Route is the processing path (extractor family) selected for a file type.
type Route int

const (
	RouteUnsupported Route = iota
	RoutePDF
	RouteDocx
	RouteExcel
	RouteText
	RouteImage
)

// String returns the wire name of the route.
func (r Route) String() string {
	switch r {
	case RoutePDF:
		return "pdf"
	case RouteDocx:
		return "docx"
	case RouteExcel:
		return "excel"
	case RouteText:
		return "text"
	case RouteImage:
		return "image"
	default:
		return "unsupported"
	}
}
