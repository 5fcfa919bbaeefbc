package domain

import "time"

// Outcome is the closed result set of a challenge verification.
type Outcome int

const (
	OutcomeRejected Outcome = iota
	OutcomeAccepted
	OutcomeExpired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeExpired:
		return "expired"
	default:
		return "rejected"
	}
}

// Challenge is one pending OTP verification. The delivered code is never
// stored; Proof is the AES-GCM sealed payload binding the code to this
// challenge, and KeyID names the sealing key so proofs survive key rotation.
type Challenge struct {
	ID     string // ULID
	UserID string
	Proof  []byte
	KeyID  string

	CreatedAt  time.Time
	ConsumedAt *time.Time // nil while the challenge is still open
	Outcome    *Outcome   // set when consumed
}

// Consumed reports whether the challenge has already been spent.
func (c Challenge) Consumed() bool { return c.ConsumedAt != nil }

// ExpiredAt reports whether the challenge is past its TTL at the given time.
func (c Challenge) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.After(c.CreatedAt.Add(ttl))
}

// ChallengeProof is the payload sealed into Challenge.Proof. Every field is
// checked on verification so a proof cannot be replayed against a different
// challenge or user.
type ChallengeProof struct {
	OTP         string    `json:"otp"`
	UserID      string    `json:"user_id"`
	ChallengeID string    `json:"challenge_id"`
	IssuedAt    time.Time `json:"issued_at"`
}
