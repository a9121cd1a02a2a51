// Command cosmicblog serves a blog backed by the Cosmic headless CMS and
// manages a local content database for offline development.
package main

// version is set at build time via ldflags.
var version = "dev"

func main() {
	Execute()
}
