package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/trezcool/shule/core"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db   *sql.DB
	conf *core.Config
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run database migrations (up, down, status, ...)")
	fmt.Println("  seed - load demo levels, members and sessions")
	fmt.Println("  mktoken -id ID [-name NAME] [-teacher] [-admin] - print a signed operator token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	mktokenCmd := flag.NewFlagSet("mktoken", flag.ExitOnError)
	mktokenID := mktokenCmd.String("id", "", "The operator's ID; stamped on recorded attendance.")
	mktokenName := mktokenCmd.String("name", "", "The operator's display name.")
	mktokenTeacher := mktokenCmd.Bool("teacher", false, "Grant the teacher role.")
	mktokenAdmin := mktokenCmd.Bool("admin", false, "Grant the admin role.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seed":
		return cli.seed()
	case "mktoken":
		if err := mktokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *mktokenID == "" {
			mktokenCmd.Usage()
			return errHelp
		}
		return cli.mkToken(*mktokenID, *mktokenName, *mktokenTeacher, *mktokenAdmin)
	default:
		cli.printUsage()
		return errHelp
	}
}
