// Command create-user registers an identity straight through the service
// layer, using the same configuration sources as the server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Batajoo/youtube-backend-clone/internal/admin"
	"github.com/Batajoo/youtube-backend-clone/internal/server"
	"github.com/Batajoo/youtube-backend-clone/internal/server/config"
)

func main() {
	ctx := context.Background()

	opts, err := admin.ParseCreateUserArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("create-user: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := server.NewApp(ctx, cfg, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	password, err := admin.GetPassword(os.Stdout)
	if err != nil {
		log.Fatalf("read password: %v", err)
	}
	defer clear(password)

	identity, err := admin.CreateUser(ctx, app.Users(), opts, password)
	if err != nil {
		log.Fatalf("create-user: %v", err)
	}
	fmt.Printf("created user %s (%s)\n", identity.Username, identity.ID)
}
