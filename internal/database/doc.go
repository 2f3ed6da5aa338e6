// Package database provides SQLite-based storage for the wiki crawler.
//
// This package implements the WikiDB, which stores:
//   - The link cache: ordered outgoing links of every expanded article,
//     with redirect titles mapped onto their canonical article
//   - Dead ends: titles that do not exist
//   - Search history: every finished search and its path
//
// WikiDB satisfies crawler.LinkCache, so a searcher configured with it only
// fetches pages it has never expanded before.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because the
// database is a single file in the XDG data directory and the CGO-free
// driver keeps cross-compilation simple.
package database
