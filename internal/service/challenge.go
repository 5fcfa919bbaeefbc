package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/backdesk/backdesk/internal/domain"
	"github.com/backdesk/backdesk/internal/store"
	"github.com/backdesk/backdesk/pkg/cryptox"
	"github.com/backdesk/backdesk/pkg/idx"
	"github.com/backdesk/backdesk/pkg/slogx"
)

const (
	// DefaultChallengeTTL bounds how long an issued challenge stays verifiable.
	DefaultChallengeTTL = 5 * time.Minute

	otpDigits = 6

	// MethodOTP verifies the delivered code; MethodTOTP verifies an
	// authenticator-app code for enrolled users.
	MethodOTP  = "otp"
	MethodTOTP = "totp"
)

var ErrChallengeNotFound = errors.New("challenge not found")

// Deliverer carries a plaintext OTP to the user out-of-band. The transport is
// an external collaborator; the engine only hands the code over.
type Deliverer interface {
	Deliver(ctx context.Context, user domain.User, code string) error
}

// LogDeliverer writes codes to the log. Development only.
type LogDeliverer struct {
	Logger *slog.Logger
}

func (d *LogDeliverer) Deliver(_ context.Context, user domain.User, code string) error {
	d.Logger.Info("otp issued",
		slog.String("email", user.Email),
		slog.String("code", code),
	)
	return nil
}

// ChallengeService is the OTP challenge engine. Each challenge moves
// Issued → Consumed{Accepted|Rejected|Expired} exactly once; the plaintext
// code exists only in flight, the stored record holds the sealed proof.
type ChallengeService struct {
	Store     store.Store
	Deliverer Deliverer
	TTL       time.Duration

	// Boxes indexed by key ID; SealKeyID names the one used for new proofs.
	// Old boxes stay openable so rotation doesn't strand open challenges.
	Boxes     map[string]*cryptox.SecretBox
	SealKeyID string
}

// NewChallengeService wires a challenge engine sealing under the given box.
func NewChallengeService(st store.Store, box *cryptox.SecretBox, deliverer Deliverer, ttl time.Duration) *ChallengeService {
	if ttl <= 0 {
		ttl = DefaultChallengeTTL
	}
	return &ChallengeService{
		Store:     st,
		Deliverer: deliverer,
		TTL:       ttl,
		Boxes:     map[string]*cryptox.SecretBox{box.KeyID(): box},
		SealKeyID: box.KeyID(),
	}
}

// AddBox registers an additional box for opening proofs sealed under an older key.
func (s *ChallengeService) AddBox(box *cryptox.SecretBox) {
	s.Boxes[box.KeyID()] = box
}

// Issue creates a challenge for the user and hands the code to the deliverer.
// The code is never stored; the challenge row carries only the sealed proof.
func (s *ChallengeService) Issue(ctx context.Context, user domain.User) (string, error) {
	l := slogx.FromContext(ctx)

	code, err := cryptox.GenerateNumericCode(otpDigits)
	if err != nil {
		return "", err
	}

	challengeID := idx.New().String()
	now := time.Now()

	payload, err := json.Marshal(domain.ChallengeProof{
		OTP:         code,
		UserID:      user.ID,
		ChallengeID: challengeID,
		IssuedAt:    now,
	})
	if err != nil {
		return "", err
	}

	box := s.Boxes[s.SealKeyID]
	proof, err := box.Seal(payload)
	if err != nil {
		return "", err
	}

	err = s.Store.Challenges().CreateChallenge(ctx, domain.Challenge{
		ID:        challengeID,
		UserID:    user.ID,
		Proof:     proof,
		KeyID:     box.KeyID(),
		CreatedAt: now,
	})
	if err != nil {
		return "", err
	}

	if err := s.Deliverer.Deliver(ctx, user, code); err != nil {
		l.Error("otp delivery failed", slog.Any("error", err))
		return "", err
	}

	l.Info("challenge issued",
		slog.String("challenge_id", challengeID),
		slog.String("user_id", user.ID),
	)
	return challengeID, nil
}

// Verify consumes a challenge and reports the outcome. Expiry is checked
// before the proof is opened; a consumed or unknown challenge is always
// Rejected; proof decryption failure or a binding mismatch is Rejected, never
// an error. Consumption is first-consumer-wins, so concurrent verifies of the
// same challenge produce at most one Accepted.
func (s *ChallengeService) Verify(
	ctx context.Context,
	challengeID, supplied, method string,
) (domain.Outcome, domain.User, error) {
	l := slogx.FromContext(ctx)
	now := time.Now()

	challenge, err := s.Store.Challenges().GetChallenge(ctx, challengeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.OutcomeRejected, domain.User{}, nil
		}
		return domain.OutcomeRejected, domain.User{}, err
	}

	if challenge.Consumed() {
		return domain.OutcomeRejected, domain.User{}, nil
	}

	if challenge.ExpiredAt(now, s.TTL) {
		outcome, err := s.consume(ctx, challenge, domain.OutcomeExpired, now)
		return outcome, domain.User{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, challenge.UserID)
	if err != nil {
		return domain.OutcomeRejected, domain.User{}, err
	}

	outcome := domain.OutcomeRejected
	switch method {
	case MethodTOTP:
		if user.TOTPActive() && totp.Validate(supplied, *user.TOTPSecret) {
			outcome = domain.OutcomeAccepted
		}
	default:
		if s.proofMatches(ctx, challenge, supplied) {
			outcome = domain.OutcomeAccepted
		}
	}

	result, err := s.consume(ctx, challenge, outcome, now)
	if err != nil {
		return domain.OutcomeRejected, domain.User{}, err
	}

	var resultUser domain.User
	if result == domain.OutcomeAccepted {
		resultUser = user
	}

	l.Info("challenge verified",
		slog.String("challenge_id", challengeID),
		slog.String("outcome", result.String()),
	)
	return result, resultUser, nil
}

// proofMatches opens the stored proof and compares every bound field. Any
// failure reads as a mismatch.
func (s *ChallengeService) proofMatches(ctx context.Context, c domain.Challenge, supplied string) bool {
	l := slogx.FromContext(ctx)

	box, ok := s.Boxes[c.KeyID]
	if !ok {
		l.Warn("challenge sealed under unknown key", slog.String("key_id", c.KeyID))
		return false
	}

	payload, err := box.Open(c.Proof)
	if err != nil {
		l.Warn("challenge proof failed to open", slog.String("challenge_id", c.ID))
		return false
	}

	var proof domain.ChallengeProof
	if err := json.Unmarshal(payload, &proof); err != nil {
		return false
	}

	if proof.ChallengeID != c.ID || proof.UserID != c.UserID {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(proof.OTP), []byte(supplied)) == 1
}

// consume writes the outcome. When another verify already spent the challenge
// the caller lost the race and gets Rejected, matching the replay rule.
func (s *ChallengeService) consume(
	ctx context.Context,
	c domain.Challenge,
	outcome domain.Outcome,
	at time.Time,
) (domain.Outcome, error) {
	won, err := s.Store.Challenges().ConsumeChallenge(ctx, c.ID, outcome, at)
	if err != nil {
		return domain.OutcomeRejected, err
	}
	if !won {
		return domain.OutcomeRejected, nil
	}
	return outcome, nil
}
