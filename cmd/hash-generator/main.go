// Command hash-generator prints bcrypt hashes for seed files, so that
// password_hash entries can replace plaintext passwords.
//
// Usage:
//
//	hash-generator [-cost 10] [-user EMP003] password...
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/phrazzld/teamboard/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	user := flag.String("user", "", "employee id to emit a seed entry for")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: hash-generator [-cost n] [-user id] password...")
		os.Exit(2)
	}

	hasher := auth.NewBcryptVerifier(*cost)
	failed := false
	for _, password := range flag.Args() {
		hash, err := hasher.Hash(password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			failed = true
			continue
		}
		if *user != "" {
			fmt.Printf("  - e_id: %q\n    password_hash: %q\n", *user, hash)
			continue
		}
		fmt.Println(hash)
	}
	if failed {
		os.Exit(1)
	}
}
