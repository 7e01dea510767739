package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Accounts are optional: anyone can defend a stronghold as a guest. An
// account only buys persistent stats, achievements and a leaderboard
// entry, so this layer stays small on purpose: bcrypt for password
// storage and a signed token so a returning client skips the password
// prompt for a week.

const (
	tokenLifetime    = 7 * 24 * time.Hour
	bcryptCost       = 12
	minPasswordLen   = 4
	minUsernameLen   = 2
	maxUsernameLen   = 16
	maxLoginAttempts = 10 // per address, per window
	loginRateWindow  = time.Minute
)

var (
	errBadCredentials = errors.New("invalid username or password")
	errNameTaken      = errors.New("username already taken")
	errTooManyTries   = errors.New("too many login attempts, try again later")
)

// Auth issues and validates account tokens.
type Auth struct {
	db       *DB
	secret   []byte
	throttle loginThrottle
}

// tokenClaims is the payload of an issued token.
type tokenClaims struct {
	PlayerID int64  `json:"pid"`
	Username string `json:"usr"`
	jwt.RegisteredClaims
}

// NewAuth builds the auth layer over the account database. The signing
// secret lives in the settings table so tokens survive restarts; the
// first run generates one.
func NewAuth(db *DB) *Auth {
	return &Auth{
		db:       db,
		secret:   signingSecret(db),
		throttle: loginThrottle{seen: make(map[string]*loginWindow)},
	}
}

func signingSecret(db *DB) []byte {
	if db != nil {
		if stored := db.GetSetting("jwt_secret"); stored != "" {
			b, err := hex.DecodeString(stored)
			if err == nil && len(b) == 32 {
				return b
			}
			logger.Warn("stored signing secret unusable, rotating")
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("no entropy for signing secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
			logger.WithError(err).Warn("signing secret not persisted, tokens die with the process")
		}
	}
	return secret
}

// Register creates an account and logs it straight in.
func (a *Auth) Register(username, password string) (int64, string, error) {
	username = strings.TrimSpace(username)
	if n := len(username); n < minUsernameLen || n > maxUsernameLen {
		return 0, "", fmt.Errorf("username must be %d-%d characters", minUsernameLen, maxUsernameLen)
	}
	if len(password) < minPasswordLen {
		return 0, "", fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	taken, err := a.db.UsernameExists(username)
	if err != nil {
		return 0, "", errors.New("database error")
	}
	if taken {
		return 0, "", errNameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return 0, "", errors.New("internal error")
	}
	id, err := a.db.CreatePlayer(username, "", string(hash))
	if err != nil {
		return 0, "", errors.New("failed to create account")
	}

	token, err := a.issue(id, username)
	if err != nil {
		return 0, "", errors.New("internal error")
	}
	logger.WithFields(logrus.Fields{"account": id, "username": username}).Info("account registered")
	return id, token, nil
}

// Login checks a password and issues a fresh token. Refusals never say
// whether the username or the password was the wrong half.
func (a *Auth) Login(username, password, ip string) (int64, string, error) {
	if !a.throttle.allow(ip) {
		return 0, "", errTooManyTries
	}

	row, err := a.db.GetPlayerByUsername(username)
	if err != nil {
		return 0, "", errors.New("database error")
	}
	if row == nil || row.PassHash == "" {
		return 0, "", errBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PassHash), []byte(password)) != nil {
		return 0, "", errBadCredentials
	}

	token, err := a.issue(row.ID, row.Username)
	if err != nil {
		return 0, "", errors.New("internal error")
	}
	return row.ID, token, nil
}

// ValidateToken checks signature and expiry and returns the account the
// token names.
func (a *Auth) ValidateToken(raw string) (int64, string, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return 0, "", err
	}
	if claims.PlayerID == 0 || claims.Username == "" {
		return 0, "", errors.New("invalid token claims")
	}
	return claims.PlayerID, claims.Username, nil
}

func (a *Auth) issue(playerID int64, username string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		PlayerID: playerID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// loginThrottle counts login attempts per remote address. A window
// opens on the first attempt from an address and stale windows are
// replaced as they are revisited.
type loginThrottle struct {
	mu   sync.Mutex
	seen map[string]*loginWindow
}

type loginWindow struct {
	attempts int
	openedAt time.Time
}

func (lt *loginThrottle) allow(ip string) bool {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	now := time.Now()
	w := lt.seen[ip]
	if w == nil || now.Sub(w.openedAt) > loginRateWindow {
		lt.seen[ip] = &loginWindow{attempts: 1, openedAt: now}
		return true
	}
	w.attempts++
	return w.attempts <= maxLoginAttempts
}

// GenerateGuestName hands an anonymous connection a throwaway roster
// name. Three random bytes keep two guests in the same lobby apart.
func GenerateGuestName() string {
	b := make([]byte, 3)
	rand.Read(b)
	return "Guest_" + hex.EncodeToString(b)
}
