package main

import "github.com/racingdecoded/driver-dna-go/cmd"

func main() {
	cmd.Execute()
}
