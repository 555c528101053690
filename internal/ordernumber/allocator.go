// Package ordernumber assigns human-readable order numbers such as SF-004,
// scoped to a wholesaler. Allocation goes through a persisted counter row
// advanced with an atomic update, so two concurrent submissions can never
// observe the same value.
package ordernumber

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultPrefix is used when a business name yields no usable initials.
const DefaultPrefix = "WS"

// Prefix derives the 2-letter order number prefix from a wholesaler's
// business name. "Smith Foods" becomes SF; a single-word name uses its first
// two letters; anything unusable falls back to DefaultPrefix.
func Prefix(businessName string) string {
	words := strings.Fields(businessName)

	var letters []rune
	for _, word := range words {
		for _, r := range word {
			if unicode.IsLetter(r) {
				letters = append(letters, unicode.ToUpper(r))
				break
			}
		}
		if len(letters) == 2 {
			return string(letters)
		}
	}

	if len(letters) == 1 {
		rest := []rune(strings.ToUpper(words[0]))
		for _, r := range rest[1:] {
			if unicode.IsLetter(r) {
				return string(letters) + string(r)
			}
		}
	}
	return DefaultPrefix
}

// Allocator hands out the next order number for a wholesaler. It must be
// called inside the order-creation transaction so a rolled back order does
// not leak its number into a gap larger than one.
type Allocator struct {
	repo *Repository
}

func NewAllocator(repo *Repository) *Allocator {
	return &Allocator{repo: repo}
}

// Allocate returns the next number formatted as PREFIX-NNN, zero-padded to
// three digits. Pass the order-creation transaction so the counter advance
// rolls back with a failed order. Wholesalers that predate the counter table
// get their counter seeded from the highest number already assigned to their
// orders.
func (a *Allocator) Allocate(ctx context.Context, tx *gorm.DB, wholesalerID uuid.UUID, businessName string) (string, error) {
	repo := a.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	prefix := Prefix(businessName)

	next, found, err := repo.IncrementCounter(ctx, wholesalerID, prefix)
	if err != nil {
		return "", fmt.Errorf("increment order counter: %w", err)
	}
	if found {
		return Format(prefix, next), nil
	}

	max, err := repo.MaxAssignedNumber(ctx, wholesalerID, prefix)
	if err != nil {
		return "", fmt.Errorf("seed order counter: %w", err)
	}
	next = max + 1
	if err := repo.CreateCounter(ctx, wholesalerID, prefix, next); err != nil {
		// Another transaction seeded the row concurrently; fall back to the
		// atomic increment.
		next, found, incErr := repo.IncrementCounter(ctx, wholesalerID, prefix)
		if incErr != nil {
			return "", fmt.Errorf("increment order counter after seed race: %w", incErr)
		}
		if !found {
			return "", fmt.Errorf("create order counter: %w", err)
		}
		return Format(prefix, next), nil
	}
	return Format(prefix, next), nil
}

// Reconcile raises the counter to the highest number already assigned to the
// wholesaler's orders. Called outside a failed transaction after a
// uniqueness conflict, since the conflicting increment itself rolled back.
func (a *Allocator) Reconcile(ctx context.Context, wholesalerID uuid.UUID, businessName string) error {
	prefix := Prefix(businessName)
	max, err := a.repo.MaxAssignedNumber(ctx, wholesalerID, prefix)
	if err != nil {
		return fmt.Errorf("scan assigned order numbers: %w", err)
	}
	if err := a.repo.ReseedCounter(ctx, wholesalerID, prefix, max); err != nil {
		return fmt.Errorf("reseed order counter: %w", err)
	}
	return nil
}

// Format renders a prefix and sequence number as the stored order number.
func Format(prefix string, number int64) string {
	return fmt.Sprintf("%s-%03d", prefix, number)
}
