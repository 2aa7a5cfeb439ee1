// Package main is the entry point for the hawkkey CLI.
package main

func main() {
	Execute()
}
