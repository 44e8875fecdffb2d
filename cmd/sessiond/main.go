package main

import (
	"github.com/tech-arch1tect/sessiond/app"
)

func main() {
	app.New(nil).Run()
}
