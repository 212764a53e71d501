package certificate

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stemsi/acequiz-backend/internal/model"
)

// ErrInvalidToken covers every verification failure.
var ErrInvalidToken = errors.New("invalid certificate token")

// Claims is what a verification token vouches for.
type Claims struct {
	jwt.RegisteredClaims
	CandidateName string            `json:"candidate_name"`
	CandidateID   string            `json:"candidate_id"`
	QuestionSetID model.SetID       `json:"question_set_id"`
	Total         int               `json:"total_questions"`
	Score         float64           `json:"score"`
	Result        model.ResultLabel `json:"result"`
}

// Signer issues and checks HS256 verification tokens for certificates.
type Signer struct {
	secret []byte
	issuer string
}

// NewSigner creates a signer. An empty secret disables signing.
func NewSigner(secret, issuer string) *Signer {
	return &Signer{secret: []byte(secret), issuer: issuer}
}

// Enabled reports whether a signing secret is configured.
func (s *Signer) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// Sign returns a token for the certificate. Tokens do not expire.
func (s *Signer) Sign(data model.CertificateData) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       data.Serial.String(),
			Issuer:   s.issuer,
			Subject:  data.CandidateID,
			IssuedAt: jwt.NewNumericDate(data.IssuedAt),
		},
		CandidateName: data.CandidateName,
		CandidateID:   data.CandidateID,
		QuestionSetID: data.QuestionSetID,
		Total:         data.TotalQuestions,
		Score:         data.Score,
		Result:        data.Result,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign certificate: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns its claims.
func (s *Signer) Verify(tokenStr string) (*Claims, error) {
	if !s.Enabled() {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
