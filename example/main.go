// Package main demonstrates basic usage of the senscritique library.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/codeGROOVE-dev/senscritique/pkg/senscritique"
)

func main() {
	flag.Parse()

	if len(flag.Args()) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s <username>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Example: %s johndoe\n", os.Args[0])
		os.Exit(1)
	}

	ctx := context.Background()

	client, err := senscritique.New(ctx)
	if err != nil {
		log.Fatalf("Failed to create SensCritique client: %v", err)
	}

	profile, err := client.FetchProfile(ctx, flag.Args()[0])
	if err != nil {
		log.Fatalf("Failed to fetch profile: %v", err)
	}

	fmt.Printf("Name:      %s\n", profile.Username)
	fmt.Printf("URL:       %s\n", profile.ProfileURL)
	if profile.Stats.Placeholder {
		fmt.Println("Stats:     unavailable")
	} else {
		fmt.Printf("Stats:     %d films, %d séries, %d jeux, %d livres (%d total)\n",
			profile.Stats.Films, profile.Stats.Series, profile.Stats.Jeux, profile.Stats.Livres, profile.Stats.Total)
	}
	fmt.Printf("Favorites: %d\n", len(profile.Collections))
	for _, r := range profile.Reviews {
		rating := "-"
		if r.Rating != nil {
			rating = fmt.Sprint(*r.Rating)
		}
		fmt.Printf("  [%s] %s (%s)\n", rating, r.Title, r.Date)
	}
}
