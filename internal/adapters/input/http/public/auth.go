package public

import (
    "context"
    "crypto/rsa"
    "encoding/base64"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"

    "github.com/walletera/food-delivery/pkg/logattr"

    "github.com/golang-jwt/jwt"
)

type principalKey struct{}

// ParsePublicKey decodes a base64 encoded PEM RSA public key.
func ParsePublicKey(base64PEM string) (*rsa.PublicKey, error) {
    pem, err := base64.StdEncoding.DecodeString(base64PEM)
    if err != nil {
        return nil, fmt.Errorf("auth public key is not base64: %w", err)
    }
    key, err := jwt.ParseRSAPublicKeyFromPEM(pem)
    if err != nil {
        return nil, fmt.Errorf("failed parsing auth public key: %w", err)
    }
    return key, nil
}

// Subject returns the subject of the token that authenticated the request.
func Subject(ctx context.Context) string {
    subject, _ := ctx.Value(principalKey{}).(string)
    return subject
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if s.publicKey == nil || r.URL.Path == "/health" {
            next.ServeHTTP(w, r)
            return
        }
        subject, err := s.authenticate(r.Header.Get("Authorization"))
        if err != nil {
            s.logger.Debug("request rejected", logattr.Error(err.Error()))
            writeError(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
            return
        }
        ctx := context.WithValue(r.Context(), principalKey{}, subject)
        next.ServeHTTP(w, r.WithContext(ctx))
    })
}

func (s *Server) authenticate(authorization string) (string, error) {
    parts := strings.Fields(authorization)
    if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
        return "", fmt.Errorf("missing bearer token")
    }
    claims := &jwt.StandardClaims{}
    token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
        if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
            return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
        }
        return s.publicKey, nil
    })
    if err != nil {
        return "", err
    }
    if !token.Valid {
        return "", fmt.Errorf("invalid token")
    }
    return claims.Subject, nil
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(apiError{ErrorCode: code, Message: message})
}
