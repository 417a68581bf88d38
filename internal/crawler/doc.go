// Package crawler holds the shared pieces of the corpus crawl engine: the
// task and document types, URL identity rules, the frontier, the dedup store,
// the document budget, and the retry/pause helpers used by both site adapters.
package crawler
