// Package model defines the value types shared by the fetcher, the searcher,
// the database and the report writers.
//
// This package contains the following main types:
//   - PageID: canonical identifier of one article in the main namespace
//   - Page: raw content returned by the Page Fetcher
//   - SearchResult: terminal outcome of a search, with the path or diagnostics
//   - SearchJob: one start/target request as it moves through the pipeline
//
// The types live in their own package so that crawler, wiki, database and
// report can all use them without import cycles.
package model
