// Package queue dispatches ingestion tasks to a bounded worker pool.
//
// Delivery is at-least-once. A worker re-runs the pipeline with
// exponential backoff when it fails, up to an attempt limit, and never
// re-runs a skipped result. Because chunk identifiers derive from
// content, duplicate deliveries are harmless upserts.
package queue
