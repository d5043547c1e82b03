// Command pwhash prints a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/auth"
)

const minPasswordLen = 8

var version = "v0.0.1-default"

func main() {
	if err := newCommand(os.Stdin, os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "pwhash: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(in io.Reader, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "pwhash",
		Version:   version,
		Usage:     "Hash the admin password for ADMIN_PASSWORD_HASH",
		ArgsUsage: "[password]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "password",
				Usage: "Password to hash (optional, read from the first argument or stdin otherwise)",
			},
			&cli.IntFlag{
				Name:  "cost",
				Usage: "bcrypt cost",
				Value: auth.DefaultCost,
			},
			&cli.BoolFlag{
				Name:  "env",
				Usage: "Print as a .env line",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			pw := cmd.String("password")
			if pw == "" {
				pw = cmd.Args().First()
			}
			if pw == "" {
				line, err := bufio.NewReader(in).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read password: %w", err)
				}
				pw = strings.TrimRight(line, "\r\n")
			}
			if len(pw) < minPasswordLen {
				return fmt.Errorf("password must be at least %d characters", minPasswordLen)
			}

			hash, err := auth.BcryptHasher{Cost: int(cmd.Int("cost"))}.Hash(pw)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			if cmd.Bool("env") {
				// single quotes keep godotenv from expanding the $ segments
				_, err = fmt.Fprintf(out, "ADMIN_PASSWORD_HASH='%s'\n", hash)
				return err
			}
			_, err = fmt.Fprintln(out, hash)
			return err
		},
	}
}
