// Package domain holds the plain data types shared by every stage of the
// mailbox ingestion pipeline: staging rows, application rows, task
// envelopes, and the status state machine that governs their lifecycle.
package domain
