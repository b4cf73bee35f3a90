package main

import (
	_ "time/tzdata"

	"github.com/yeremiapane/table-reservations/cmd"
)

func main() {
	cmd.Execute()
}
