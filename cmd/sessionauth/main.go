// Command sessionauth issues, validates and serves session tokens.
package main

func main() {
	Execute()
}
