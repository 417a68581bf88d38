// Command corpuscrawler builds a plain-text search corpus from one of two
// sites and writes it as NDJSON.
//
//   - wiki: breadth-first crawl of an encyclopedia from configured seed
//     articles. A pool of workers shares one frontier; each accepted page
//     contributes in-domain article links up to max_depth.
//   - catalog: sequential walk of paginated category listings on an
//     academic article catalog, fetching each listed article.
//
// Both adapters run pages through the same pipeline: rate-limited fetch,
// profile extraction, quality filter, title dedup, and a document budget
// that stops the run once max_documents records are written.
//
// Configuration comes from an optional YAML file plus CORPUS_* environment
// overrides (CORPUS_WIKI_MAX_DOCUMENTS, CORPUS_METRICS_ADDR, ...). When
// metrics.addr is set the process also serves /healthz, /readyz, /metrics
// and /v1/status.
//
// Usage:
//
//	corpuscrawler -site wiki -config config.yaml
//	corpuscrawler -site catalog
//
// SIGINT and SIGTERM stop the crawl; records already written stay in the
// output file.
package main
