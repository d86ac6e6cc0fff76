package main

import (
	"log"
	"os"

	"github.com/mitchellh/cli"

	deploycmd "github.com/mahasewa/ops/cmd/deploy"
	migratecmd "github.com/mahasewa/ops/cmd/migrate"
	verifycmd "github.com/mahasewa/ops/cmd/verify"
)

func main() {
	const appName, appVersion = "mahasewa-ops", "1.0.0"

	migrateCmd := migratecmd.NewCmd(appName, appVersion)

	c := cli.NewCLI(appName, appVersion)
	c.Args = os.Args[1:]
	c.Autocomplete = true
	c.Commands = map[string]cli.CommandFactory{
		"":        migrateCmd, // default command if no subcommand defined
		"migrate": migrateCmd,
		"verify":  verifycmd.NewCmd(appName, appVersion),
		"deploy":  deploycmd.NewCmd(appName, appVersion),
	}

	exitStatus, err := c.Run()
	if err != nil {
		log.Println(err)
	}

	os.Exit(exitStatus)
}
