package handlers

import (
	"fmt"
	"log"
	"time"
)

//
// --- Match Engine ---
//
// The sweep pairs every ACTIVE property with every ACTIVE demand brief it
// satisfies and records the pair in 'matches'. Each new pair notifies both
// sides. The UNIQUE (property_id, demand_id) index makes re-running the
// sweep a no-op for pairs already recorded.
//
// The sweep runs after property/demand mutations and from the background
// worker in main.
//

// matchPair carries one new property/demand pairing out of the sweep query.
type matchPair struct {
	PropertyID int64
	OwnerID    int64
	Title      string
	Slug       string
	DemandID   int64
	BuyerID    int64
}

// RunMatchSweep finds property/demand pairs that satisfy the match
// predicate and are not yet recorded, then inserts the match rows and the
// notifications for both parties in a single transaction.
func (h *Handlers) RunMatchSweep() error {
	// 1. --- Find New Pairs ---
	// Predicate: same property type; brief's suburb/city empty or equal;
	// price inside the brief's range (0 bound = open); enough bedrooms.
	// Owners never match their own briefs.
	query := `
		SELECT p.id, p.owner_id, p.title, p.slug, d.id, d.buyer_id
		FROM properties p
		JOIN demands d
			ON p.property_type = d.property_type
			AND (d.suburb = '' OR d.suburb = p.suburb)
			AND (d.city = '' OR d.city = p.city)
			AND (d.min_price <= 0 OR p.price >= d.min_price)
			AND (d.max_price <= 0 OR p.price <= d.max_price)
			AND p.bedrooms >= d.min_bedrooms
		LEFT JOIN matches m
			ON m.property_id = p.id AND m.demand_id = d.id
		WHERE p.status = 'ACTIVE'
			AND d.status = 'ACTIVE'
			AND p.owner_id <> d.buyer_id
			AND m.id IS NULL`

	rows, err := h.DB.Query(query)
	if err != nil {
		return fmt.Errorf("sweep query failed: %w", err)
	}
	defer rows.Close()

	var pairs []matchPair
	for rows.Next() {
		var pair matchPair
		if err := rows.Scan(
			&pair.PropertyID,
			&pair.OwnerID,
			&pair.Title,
			&pair.Slug,
			&pair.DemandID,
			&pair.BuyerID,
		); err != nil {
			return fmt.Errorf("failed to scan match pair: %w", err)
		}
		pairs = append(pairs, pair)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating match pairs: %w", err)
	}

	if len(pairs) == 0 {
		return nil
	}

	// 2. --- Record Matches & Notify (one transaction) ---
	tx, err := h.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to start sweep transaction: %w", err)
	}
	defer tx.Rollback() // Safety net

	for _, pair := range pairs {
		_, err := tx.Exec(
			"INSERT INTO matches (property_id, demand_id, created_at) VALUES (?, ?, ?)",
			pair.PropertyID, pair.DemandID, time.Now(),
		)
		if err != nil {
			// A concurrent sweep may have recorded the pair first; the
			// unique index turns that into an error here and the whole
			// transaction retries on the next sweep.
			return fmt.Errorf("failed to insert match: %w", err)
		}

		propertyLink := fmt.Sprintf("/properties/%s", pair.Slug)

		buyerMsg := fmt.Sprintf("New match: %q fits one of your briefs.", pair.Title)
		if err := h.AddNotification(tx, pair.BuyerID, buyerMsg, propertyLink); err != nil {
			return err
		}

		ownerMsg := fmt.Sprintf("A buyer is looking for a property like %q.", pair.Title)
		ownerLink := fmt.Sprintf("/my/properties/%d/matches", pair.PropertyID)
		if err := h.AddNotification(tx, pair.OwnerID, ownerMsg, ownerLink); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sweep: %w", err)
	}

	log.Printf("Match sweep recorded %d new pair(s)", len(pairs))
	return nil
}

// logSweepError keeps handler bodies tidy: a failed inline sweep is logged
// and left for the background worker to retry.
func logSweepError(where string, err error) {
	log.Printf("WARNING: match sweep %s failed: %v", where, err)
}
