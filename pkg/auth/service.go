package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kusalwijekoon97/ml-be/pkg/config"
	"github.com/kusalwijekoon97/ml-be/pkg/errcodes"
	"github.com/kusalwijekoon97/ml-be/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt hashing.
const BcryptCost = 12

const (
	RoleUser      = "user"
	RoleLibrarian = "librarian"
	RoleAdmin     = "admin"
)

// Claims are carried by every bearer token.
type Claims struct {
	PrincipalID string `json:"userId"`
	Role        string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// Service issues tokens and handles the credential flows of users and
// librarians.
type Service struct {
	db          *bun.DB
	jwtSecret   []byte
	tokenExpiry time.Duration
}

func NewService(db *bun.DB, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		jwtSecret:   []byte(cfg.JWTSecret),
		tokenExpiry: cfg.TokenExpiry,
	}
}

// Issue creates a signed token for principalID.
func (s *Service) Issue(principalID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		PrincipalID: principalID,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return signedToken, nil
}

// Validate parses a token and returns its claims.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token    string `json:"token"`
	User     string `json:"user"`
	UserType string `json:"userType,omitempty"`
}

func (s *Service) LoginUser(ctx context.Context, email, password string) (*LoginResult, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.email = ?", normalizeEmail(email)).
		Where("u.deleted = ?", false).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.Unauthorized("No user found by this email")
		}
		return nil, errors.WithStack(err)
	}
	if !CheckPassword(password, user.PasswordHash) {
		return nil, errcodes.BadRequest("Invalid Password")
	}

	token, err := s.Issue(user.ID, RoleUser)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user.ID}, nil
}

// LoginLibrarian authenticates a librarian, falling back to an admin with the
// same email when no librarian matches.
func (s *Service) LoginLibrarian(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)

	var principalID, hash, role string
	librarian := &models.Librarian{}
	err := s.db.NewSelect().
		Model(librarian).
		Where("lib.email = ?", email).
		Where("lib.deleted = ?", false).
		Scan(ctx)
	switch {
	case err == nil:
		principalID, hash, role = librarian.ID, librarian.PasswordHash, RoleLibrarian
	case errors.Is(err, sql.ErrNoRows):
		admin := &models.Admin{}
		err = s.db.NewSelect().
			Model(admin).
			Where("adm.email = ?", email).
			Where("adm.deleted = ?", false).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, errcodes.Unauthorized("No user found by this email")
			}
			return nil, errors.WithStack(err)
		}
		principalID, hash, role = admin.ID, admin.PasswordHash, RoleAdmin
	default:
		return nil, errors.WithStack(err)
	}

	if !CheckPassword(password, hash) {
		return nil, errcodes.BadRequest("Invalid Password")
	}
	token, err := s.Issue(principalID, role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: principalID, UserType: role}, nil
}

// Account is the table holding the credentials of one kind of principal.
type Account string

const (
	AccountUser      Account = "users"
	AccountLibrarian Account = "librarians"
)

type credentials struct {
	PasswordHash string `bun:"password_hash"`
	OTPCode      string `bun:"otp_code"`
	EmailCode    string `bun:"email_code"`
}

func (s *Service) credentials(ctx context.Context, idb bun.IDB, account Account, id string) (*credentials, error) {
	creds := &credentials{}
	err := idb.NewSelect().
		Table(string(account)).
		Column("password_hash", "otp_code", "email_code").
		Where("id = ?", id).
		Scan(ctx, creds)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}
	return creds, nil
}

func (s *Service) setColumn(ctx context.Context, idb bun.IDB, account Account, id, column string, value interface{}) error {
	_, err := idb.NewUpdate().
		Table(string(account)).
		Set("? = ?", bun.Ident(column), value).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

// VerifyOTP marks the account's phone as verified when code matches.
func (s *Service) VerifyOTP(ctx context.Context, account Account, id, code string) error {
	creds, err := s.credentials(ctx, s.db, account, id)
	if err != nil {
		return err
	}
	if creds.OTPCode == "" || creds.OTPCode != code {
		return errcodes.BadRequest("Wrong OTP Code Entered")
	}
	return s.setColumn(ctx, s.db, account, id, "otp_verified", true)
}

// VerifyEmail marks the account's email as verified when code matches.
func (s *Service) VerifyEmail(ctx context.Context, account Account, id, code string) error {
	creds, err := s.credentials(ctx, s.db, account, id)
	if err != nil {
		return err
	}
	if creds.EmailCode == "" || creds.EmailCode != code {
		return errcodes.BadRequest("Wrong Code Entered")
	}
	return s.setColumn(ctx, s.db, account, id, "email_verified", true)
}

// UpdatePassword replaces the account's password after checking the old one.
func (s *Service) UpdatePassword(ctx context.Context, account Account, id, oldPassword, newPassword string) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		creds, err := s.credentials(ctx, tx, account, id)
		if err != nil {
			return err
		}
		if !CheckPassword(oldPassword, creds.PasswordHash) {
			return errcodes.BadRequest("Old Password is Incorrect")
		}
		hash, err := HashPassword(newPassword)
		if err != nil {
			return err
		}
		return s.setColumn(ctx, tx, account, id, "password_hash", hash)
	})
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a password with a hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// RandomCode returns a random numeric code of the given length.
func RandomCode(digits int) (string, error) {
	var b strings.Builder
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", errors.WithStack(err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
