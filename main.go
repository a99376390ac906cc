package main

import "github.com/thereayou/duochat/cmd/server"

func main() {
	srv := server.NewServer()
	defer srv.Close()
	srv.Run()
}
