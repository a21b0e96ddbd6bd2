// Command pqdemo drives one produce/consume cycle over a bounded priority
// channel and prints how long it took and how much heap it used.
//
//	pqdemo run --count=12 --producers=1 --consumers=1 --sleep=1s --log-level=debug
//	pqdemo config init --path ./pqdemo.toml
package main
