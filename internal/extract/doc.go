// Package extract parses fetched pages with goquery and applies the
// per-site extraction rules (site profiles) for the encyclopedia and the
// article catalog.
package extract
