package main

import "shopledger/internal/app/server"

func main() {
	server.Run()
}
