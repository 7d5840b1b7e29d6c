package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"customer-merger/core/config"
	"customer-merger/core/database"
	"customer-merger/feature/merge"
	"customer-merger/feature/profile"
	"customer-merger/feature/profile/models"
	"customer-merger/feature/store"
)

type lookup struct {
	name  string
	value string
	find  func() ([]*models.Customer, error)
}

// Prints how the stored profiles score against one reservation's booker.
func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <reservation-id>", os.Args[0])
	}
	id, err := strconv.ParseInt(os.Args[1], 10, 64)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	st, err := store.New(db, cfg.Merge.DistanceFunction, cfg.Merge.PageSize)
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	found, err := st.ReservationsByIDs(ctx, []int64{id})
	if err != nil {
		log.Fatal(err)
	}
	if len(found) == 0 {
		log.Fatalf("reservation %d not found", id)
	}
	identity := found[0].Identity()

	fmt.Println("=== Identity ===")
	out, _ := json.MarshalIndent(identity, "", "  ")
	fmt.Println(string(out))

	fmt.Println("\n=== Candidates ===")
	var candidates []*models.Customer
	seen := make(map[string]bool)
	lookups := []lookup{
		{"ssn", identity.SSN, func() ([]*models.Customer, error) { return st.CustomersBySSN(ctx, identity.SSN) }},
		{"email", identity.Email, func() ([]*models.Customer, error) {
			return st.CustomersNear(ctx, models.FieldEmail, identity.Email, profile.MatchDistance)
		}},
		{"phone", identity.Phone, func() ([]*models.Customer, error) {
			return st.CustomersNear(ctx, models.FieldPhone, identity.Phone, profile.MatchDistance)
		}},
	}
	if name, ok := identity.FullName(); ok {
		lookups = append(lookups, lookup{"name", name, func() ([]*models.Customer, error) {
			return st.CustomersNear(ctx, models.FieldName, name, profile.MatchDistance)
		}})
	}

	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		hits, err := l.find()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s %q: %d hit(s)\n", l.name, l.value, len(hits))
		for _, c := range hits {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			candidates = append(candidates, c)
		}
	}

	fmt.Println("\n=== Scores ===")
	for _, c := range candidates {
		score := profile.Score(c.Identity(), identity)
		fmt.Printf("%-12s score=%5.2f match=%-5t agrees=%-5t email=%q name=%q %q\n",
			c.ID, score, profile.IsMatch(score), profile.Agrees(c.Identity(), identity), c.Email, c.FirstName, c.LastName)
	}

	if best := merge.Best(candidates, identity); best != nil {
		fmt.Printf("\nResolved to %s\n", best.ID)
	} else {
		fmt.Println("\nNo match, a new profile would be created")
	}
}
