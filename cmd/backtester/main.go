// Package main provides the entry point for the backtester CLI: a single-run
// simulation engine, a grid/GA parameter-search engine, and an HTTP+WS job
// server, all wired onto a JSON/columnar-file DataStore.
package main

func main() {
	Execute()
}
