package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tendant/login-redirect/pkg/config"
)

// tokenClaims matches what client.AuthUserMiddleware reads
type tokenClaims struct {
	UserID      string                 `json:"user_id"`
	ExtraClaims map[string]interface{} `json:"extra_claims,omitempty"`
	jwt.RegisteredClaims
}

func main() {
	secret := flag.String("secret", config.GetEnvOrDefault("JWT_SECRET", "very-secure-jwt-secret"), "Secret key for signing the token")
	issuer := flag.String("issuer", config.GetEnvOrDefault("JWT_ISSUER", "login-redirect"), "Issuer of the token")
	userID := flag.String("user", "", "User ID (UUID); a random one is generated when empty")
	roles := flag.String("roles", "", "Comma-separated roles; defaults to the primary admin role")
	username := flag.String("username", "admin", "Username claim")
	expiry := flag.Duration("expiry", time.Hour, "Token expiry duration (e.g., 30m, 1h, 24h)")
	outputFormat := flag.String("format", "compact", "Output format: compact, full, or debug")
	flag.Parse()

	if *userID == "" {
		*userID = uuid.New().String()
	} else if _, err := uuid.Parse(*userID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: user must be a UUID: %v\n", err)
		os.Exit(1)
	}

	roleList := config.SplitList(*roles)
	if len(roleList) == 0 {
		roleList = []string{config.ParseAdminRoles(config.GetEnv("ADMIN_ROLES")).Primary()}
	}

	now := time.Now()
	expiresAt := now.Add(*expiry)
	claims := tokenClaims{
		UserID: *userID,
		ExtraClaims: map[string]interface{}{
			"username": *username,
			"roles":    roleList,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   *userID,
			Issuer:    *issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(*secret))
	if err != nil {
		slog.Error("Failed to sign token", "err", err)
		fmt.Fprintf(os.Stderr, "Error: Failed to sign token: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "compact":
		fmt.Println(tokenStr)
	case "full":
		fmt.Printf("Token: %s\nUser: %s\nRoles: %s\nExpires: %s\n", tokenStr, *userID, strings.Join(roleList, ","), expiresAt.Format(time.RFC3339))
	case "debug":
		parsed, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(*secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			slog.Error("Failed to parse generated token", "err", err)
			fmt.Fprintf(os.Stderr, "Error: Failed to parse generated token: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("=== Token Information ===\n")
		fmt.Printf("Token: %s\n\n", tokenStr)
		fmt.Printf("=== Token Header ===\n")
		headerJSON, _ := json.MarshalIndent(parsed.Header, "", "  ")
		fmt.Printf("%s\n\n", headerJSON)
		fmt.Printf("=== Token Claims ===\n")
		claimsJSON, _ := json.MarshalIndent(parsed.Claims, "", "  ")
		fmt.Printf("%s\n\n", claimsJSON)
		fmt.Printf("Expires: %s\n", expiresAt.Format(time.RFC3339))
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown output format: %s\n", *outputFormat)
		os.Exit(1)
	}
}

