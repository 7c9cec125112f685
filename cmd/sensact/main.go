package main

import "github.com/joho/godotenv"

func main() {
	// A missing .env is fine; real environment variables win.
	_ = godotenv.Load()
	Execute()
}
