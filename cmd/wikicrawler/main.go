// Package main provides the entry point for the Wiki Crawler CLI.
//
// Wiki Crawler finds the shortest chain of article links between two
// Wikipedia pages by exploring the link graph breadth-first.
//
// Usage:
//
//	wikicrawler search <start> <target>
//	wikicrawler search --random <target>
//
// See --help for all available options.
package main

// main is the entry point for Wiki Crawler.
func main() {
	Execute()
}
