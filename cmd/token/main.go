package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/arena-agent/internal/auth"
	"github.com/freeeve/arena-agent/internal/config"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	viewer := flag.String("viewer", "spectator", "viewer name embedded in the token")
	ttl := flag.Duration("ttl", auth.DefaultViewerTTL, "token lifetime")
	games := flag.String("games", "", "comma-separated game ids to restrict the token to (empty = all)")
	flag.Parse()

	var scope []string
	for _, g := range strings.Split(*games, ",") {
		if g = strings.TrimSpace(g); g != "" {
			scope = append(scope, g)
		}
	}

	mgr := auth.NewJWTManager(config.Load().JWTSecret)
	token, err := mgr.GenerateViewerToken(*viewer, *ttl, scope...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign token")
	}
	log.Info().Str("viewer", *viewer).Dur("ttl", *ttl).Strs("games", scope).Time("expires", time.Now().Add(*ttl)).Msg("Token issued")
	fmt.Println(token)
}
