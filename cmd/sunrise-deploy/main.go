package main

import "github.com/oshokin/sunrise-deploy/cmd/sunrise-deploy/cmd"

func main() {
	cmd.Execute()
}
