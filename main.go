package main

import (
	_ "git.handmade.network/hmn/pngscope/src/migration"
	"git.handmade.network/hmn/pngscope/src/pngtool"
)

func main() {
	pngtool.RootCommand.Execute()
}
