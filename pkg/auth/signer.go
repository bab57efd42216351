// Package auth signs Binance API requests with HMAC-SHA256.
//
// A Signer holds one immutable credential pair. It adds the timestamp and
// signature parameters to a request and produces the API key header; it never
// talks to the network.
package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"bintang/internal/digest"
	"bintang/pkg/core"
)

// HeaderAPIKey is the header carrying the API key on every authenticated call.
const HeaderAPIKey = "X-MBX-APIKEY"

var (
	// ErrNilParams is returned by SignRequest when there is no parameter set
	// to sign. It is a signing error, never a transport error.
	ErrNilParams = &core.ExchangeError{
		Type:     core.ErrorTypeSigning,
		Code:     string(core.ErrCodeSigning),
		Message:  "nil parameter set",
		Exchange: core.ExchangeName,
	}
	// ErrInvalidCredentials is returned by NewStrict for unusable credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Signer computes request signatures for one API key.
// It is safe for concurrent use.
type Signer struct {
	apiKey string
	secret []byte
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Signer.
type Option func(*Signer)

// WithClock sets the clock used for injected timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger. Credentials and signatures are never logged.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Signer) {
		s.logger = l
	}
}

// New returns a Signer for the given credential pair. No restriction is placed
// on the credentials: an empty secret is a valid HMAC key.
func New(apiKey, apiSecret string, opts ...Option) *Signer {
	s := &Signer{
		apiKey: apiKey,
		secret: []byte(apiSecret),
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type credentials struct {
	APIKey    string `validate:"required,printascii"`
	APISecret string `validate:"required,printascii"`
}

var validate = validator.New()

// NewStrict is like New but rejects empty or non-printable credentials.
func NewStrict(apiKey, apiSecret string, opts ...Option) (*Signer, error) {
	if err := validate.Struct(credentials{APIKey: apiKey, APISecret: apiSecret}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return New(apiKey, apiSecret, opts...), nil
}

// FromCredentials returns a validated Signer for creds.
func FromCredentials(creds *core.Credentials, opts ...Option) (*Signer, error) {
	if creds == nil {
		return nil, core.WrapError(core.ErrorTypeAuthentication, core.ErrCodeNoCredentials, core.ErrNoCredentials)
	}
	return NewStrict(creds.APIKey, creds.SecretKey, opts...)
}

// APIKey returns the public API key.
func (s *Signer) APIKey() string {
	return s.apiKey
}

// GenerateSignature returns the lowercase hex HMAC-SHA256 of the canonical
// encoding of params. An existing signature parameter is not part of the
// signed payload.
func (s *Signer) GenerateSignature(params core.Params) string {
	mac := digest.HMAC(s.secret, []byte(params.Unsigned()))
	return hex.EncodeToString(mac[:])
}

// SignRequest adds a timestamp, unless one is already present, and the
// signature of the resulting set. Nothing is written to params on failure.
func (s *Signer) SignRequest(params core.Params) error {
	if params == nil {
		return ErrNilParams
	}

	signed := params.Clone()
	if !signed.Has(core.ParamTimestamp) {
		signed.Set(core.ParamTimestamp, strconv.FormatInt(s.now().UnixMilli(), 10))
	}
	signature := s.GenerateSignature(signed)

	params.Set(core.ParamTimestamp, signed[core.ParamTimestamp])
	params.Set(core.ParamSignature, signature)

	s.logger.Debug().Int("params", len(params)).Msg("request signed")
	return nil
}

// Verify reports whether params carries a valid signature for this key.
func (s *Signer) Verify(params core.Params) bool {
	got, ok := params.Get(core.ParamSignature)
	if !ok {
		return false
	}
	return digest.Equal([]byte(got), []byte(s.GenerateSignature(params)))
}

// CreateHeaders returns the headers authenticating a request.
func (s *Signer) CreateHeaders() map[string]string {
	return map[string]string{HeaderAPIKey: s.apiKey}
}

// String masks the API key and omits the secret.
func (s *Signer) String() string {
	return fmt.Sprintf("Signer{Key:%s}", MaskKey(s.apiKey))
}

// GoString keeps %#v from printing the secret.
func (s *Signer) GoString() string {
	return s.String()
}

// MaskKey hides all but the first and last four characters of key.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
