package main

import "github.com/platform-mesh/graphql-schema-provider/cmd"

func main() {
	cmd.Execute()
}
