// Package scan runs a batch: it enumerates candidate videos, decodes and
// scans each one, folds the outcomes into an aggregate summary, and writes
// the report.
//
// Files are independent. A file that cannot be decoded is logged and counted
// in a failure bucket, and the batch moves on. Only cancellation and report
// or metrics write errors end a run early. With more than one worker each
// goroutine folds into a private aggregator; the aggregators are merged once
// all files are done, so the summary does not depend on scheduling.
//
// When a store is supplied every run is recorded in its history, and with
// the cache enabled a file whose path, size, and mtime match a previous scan
// under the same parameters is not decoded again.
package scan
