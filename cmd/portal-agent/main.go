package main

import "portal-agent/internal/bootstrap"

func main() {
	bootstrap.NewApp().Run()
}
