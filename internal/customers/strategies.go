package customers

import (
	"strings"

	"github.com/wholesail/wholesail-backend/pkg/db/models"
	"github.com/wholesail/wholesail-backend/pkg/phone"
)

// Candidate is one user matching the phone suffix, enriched with the data
// the ranking strategies need.
type Candidate struct {
	User       models.User
	OrderCount int
}

// Query carries the resolver inputs available to each strategy.
type Query struct {
	LastFour string
	// FullPhone is set when the caller knows the complete number, e.g. from
	// an inbound message; empty otherwise.
	FullPhone string
	// WholesalerDomain is the tenant's own email domain, excluded from the
	// email heuristic so staff accounts never win ties.
	WholesalerDomain string
}

// Strategy picks a single candidate or declines by returning nil, handing
// the decision to the next strategy in the chain. Strategies must be
// deterministic for identical inputs.
type Strategy interface {
	Name() string
	Select(query Query, candidates []Candidate) *Candidate
}

// excludedEmailDomains are addresses that exist for internal or testing
// purposes and say nothing about which human owns a phone number.
// TODO(identity): replace this allowlist once explicit account linking ships.
var excludedEmailDomains = []string{
	"example.com",
	"test.com",
	"mailinator.com",
}

// exactPhoneStrategy wins when exactly one candidate's normalized number
// equals the query's full number.
type exactPhoneStrategy struct{}

func (exactPhoneStrategy) Name() string { return "exact_phone" }

func (exactPhoneStrategy) Select(query Query, candidates []Candidate) *Candidate {
	if query.FullPhone == "" {
		return nil
	}
	var match *Candidate
	for i := range candidates {
		candidate := &candidates[i]
		if candidate.User.Phone == nil {
			continue
		}
		if phone.Equal(*candidate.User.Phone, query.FullPhone) {
			if match != nil {
				return nil
			}
			match = candidate
		}
	}
	return match
}

// orderHistoryStrategy scores candidates by prior order count plus an email
// usability bonus, and wins on a strict maximum.
type orderHistoryStrategy struct{}

func (orderHistoryStrategy) Name() string { return "order_history" }

func (orderHistoryStrategy) Select(query Query, candidates []Candidate) *Candidate {
	best := -1
	var winner *Candidate
	tied := false
	for i := range candidates {
		candidate := &candidates[i]
		score := candidate.OrderCount*10 + emailScore(candidate.User.Email, query.WholesalerDomain)
		switch {
		case score > best:
			best = score
			winner = candidate
			tied = false
		case score == best:
			tied = true
		}
	}
	if tied || best <= 0 {
		return nil
	}
	return winner
}

// usableEmailStrategy falls back to the first candidate holding a usable
// email address.
type usableEmailStrategy struct{}

func (usableEmailStrategy) Name() string { return "usable_email" }

func (usableEmailStrategy) Select(query Query, candidates []Candidate) *Candidate {
	for i := range candidates {
		candidate := &candidates[i]
		if emailScore(candidate.User.Email, query.WholesalerDomain) > 0 {
			return candidate
		}
	}
	return nil
}

// firstCandidateStrategy terminates the chain; candidates arrive ordered by
// account creation, so the oldest account wins.
type firstCandidateStrategy struct{}

func (firstCandidateStrategy) Name() string { return "first_candidate" }

func (firstCandidateStrategy) Select(_ Query, candidates []Candidate) *Candidate {
	if len(candidates) == 0 {
		return nil
	}
	return &candidates[0]
}

// emailScore rates how much an email address identifies a real customer.
// Wholesaler-owned and internal test addresses score zero.
func emailScore(email, wholesalerDomain string) int {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return 0
	}
	domain := email[at+1:]
	if wholesalerDomain != "" && domain == strings.ToLower(wholesalerDomain) {
		return 0
	}
	for _, excluded := range excludedEmailDomains {
		if domain == excluded {
			return 0
		}
	}
	if strings.HasPrefix(email, "test") || strings.HasPrefix(email, "noreply") {
		return 1
	}
	return 3
}

// emailDomain extracts the domain part of an address, lowercased.
func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// defaultStrategies is the ranked chain the resolver walks. Order matters:
// the strongest signal first, an unconditional pick last.
func defaultStrategies() []Strategy {
	return []Strategy{
		exactPhoneStrategy{},
		orderHistoryStrategy{},
		usableEmailStrategy{},
		firstCandidateStrategy{},
	}
}
