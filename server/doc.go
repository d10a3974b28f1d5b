// Package server exposes document ingestion and resource-grounded chat
// over HTTP. Ingestion is asynchronous: POST /api/documents/process
// accepts a task and GET /api/documents/status reports its progress.
// POST /api/chat answers a turn as JSON; POST /api/chat/stream answers
// it as server-sent events ending in exactly one final event carrying
// the retrieval context.
package server
