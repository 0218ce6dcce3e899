package main

import (
	"github.com/anthrogo/growthz/pkg/cli"
)

func main() {
	cli.Execute()
}
