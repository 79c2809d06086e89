// credauth-hash produces and checks encoded credentials from the command
// line. Its main job is seeding configuration: hash the organizational
// default password once and paste the output into the policy config, so the
// plaintext never lives in a config file.
//
// Usage:
//
//	credauth-hash -password <value>
//	credauth-hash -password <value> -verify <stored-credential>
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hrkit/credauth/credential"
)

func main() {
	password := flag.String("password", "", "password to hash or verify")
	verify := flag.String("verify", "", "stored credential to verify the password against")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "credauth-hash: -password is required")
		flag.Usage()
		os.Exit(2)
	}

	hasher := credential.NewHasher(nil, nil)

	if *verify != "" {
		ok, err := hasher.Verify(*password, *verify)
		if err != nil {
			fmt.Fprintf(os.Stderr, "credauth-hash: verify failed: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Println("no match")
			os.Exit(1)
		}
		fmt.Println("match")
		return
	}

	encoded, err := hasher.Hash(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "credauth-hash: hash failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(encoded)
}
