// Command devtoken mints a staff access token signed with JWT_SECRET for
// local testing against the API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/menfistoo/purobeach/internal/utils"
)

func main() {
	sub := flag.String("sub", "staff-dev", "token subject recorded as the actor")
	role := flag.String("role", "STAFF", "STAFF or ADMIN")
	ttl := flag.Duration("ttl", 8*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	tok, err := utils.NewAccessToken(os.Getenv("JWT_SECRET"), *sub, *role, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
	fmt.Println(tok.Token)
}
