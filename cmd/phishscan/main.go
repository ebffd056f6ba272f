// Package main provides the entry point for the phishscan CLI.
//
// Phishscan classifies URLs as phishing, suspicious, or legitimate by
// fusing a local machine-learning model with the Google Safe Browsing
// and VirusTotal reputation services.
//
// Usage:
//
//	phishscan check <url>
//	phishscan serve
//
// See --help for all available options.
package main

// main is the entry point for phishscan.
func main() {
	Execute()
}
