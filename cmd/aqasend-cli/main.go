// Command aqasend-cli is the operator-facing counterpart to the daemon:
// right now it only knows how to mint the first account(s) against a
// database directory without going through the HTTP API. Built on
// urfave/cli the way the teacher's own cmd/cli tool is, grounded on the
// original implementation's create_account command (prompts twice for a
// password, refuses to proceed on mismatch, hashes, and saves).
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/aqasend/aqasend/account"
	"github.com/aqasend/aqasend/snapshot"
	"github.com/aqasend/aqasend/store"
)

func main() {
	app := cli.NewApp()
	app.Name = "aqasend-cli"
	app.Usage = "administer an aqasend database directory"
	app.Commands = []cli.Command{
		createAccountCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "aqasend-cli: %v\n", err)
		os.Exit(1)
	}
}

var createAccountCommand = cli.Command{
	Name:  "create-account",
	Usage: "create an account directly against the database directory, bypassing the HTTP API",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "root", Value: ".", Usage: "database root directory"},
		cli.StringFlag{Name: "name", Usage: "username for the new account"},
		cli.StringFlag{Name: "type", Value: "user", Usage: "account kind: admin | user"},
	},
	Action: func(c *cli.Context) error {
		root := c.String("root")
		username := c.String("name")
		if username == "" {
			return cli.NewExitError("create-account: --name is required", 1)
		}
		accType, ok := accountKindFromFlag(c.String("type"))
		if !ok {
			return cli.NewExitError("create-account: --type must be \"admin\" or \"user\"", 1)
		}

		password, err := promptForPassword()
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("create-account: %v", err), 1)
		}

		db := store.New()
		if err := snapshot.Load(root, db); err != nil {
			return cli.NewExitError(fmt.Sprintf("create-account: load database: %v", err), 1)
		}

		hash, err := account.Hash(password)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("create-account: hash password: %v", err), 1)
		}

		id := uuid.New()
		acc := account.Account{UUID: id, Username: username, PasswordHash: hash, AccType: accType}
		if err := db.AddAccount(id, acc); err != nil {
			return cli.NewExitError(fmt.Sprintf("create-account: %v", err), 1)
		}

		if err := snapshot.Save(root, db); err != nil {
			return cli.NewExitError(fmt.Sprintf("create-account: save database: %v", err), 1)
		}

		fmt.Printf("created account %s (%s) as %s\n", username, id, accType)
		return nil
	},
}

func accountKindFromFlag(s string) (account.Type, bool) {
	switch s {
	case "admin":
		return account.Admin, true
	case "user":
		return account.User, true
	default:
		return "", false
	}
}

// promptForPassword asks for a password twice, echo disabled when stdin
// is a terminal, and refuses to proceed on a mismatch.
func promptForPassword() (string, error) {
	password, err := readSecretLine("Password: ")
	if err != nil {
		return "", err
	}
	confirm, err := readSecretLine("Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", fmt.Errorf("entered passwords don't match")
	}
	return password, nil
}

func readSecretLine(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		var line string
		if _, err := fmt.Scanln(&line); err != nil {
			return "", err
		}
		return line, nil
	}
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
