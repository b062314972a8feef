package jwt

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/quillpress/quill/shared/domain"
	internal_errors "github.com/quillpress/quill/shared/errors"
	"github.com/quillpress/quill/shared/logger"
)

// JwtService decodes access tokens issued by the blog API. Issuing tokens is
// the API's job.
type JwtService interface {
	DecodeToken(jwtStr string) (*jwt.Token, error)
	UserFromToken(token *jwt.Token) (*domain.User, error)
}

type Jwt struct {
	secretKey string
}

func New(secretKey string) JwtService {
	return &Jwt{secretKey}
}

func (j *Jwt) DecodeToken(jwtStr string) (*jwt.Token, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &internal_errors.ErrorWithStatusCode{Message: fmt.Sprintf("Unexpected signing method: %v", token.Header["alg"]), StatusCode: http.StatusUnauthorized}
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		logger.Log.Debug("decoding access token", "error", err)
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid token signature", StatusCode: http.StatusUnauthorized}
	}

	if !token.Valid {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid access token", StatusCode: http.StatusUnauthorized}
	}

	return token, nil
}

// UserFromToken reads the viewer identity. The API puts the user id into
// "uid" (falling back to the numeric "sub") and the login into "login".
func (j *Jwt) UserFromToken(token *jwt.Token) (*domain.User, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidClaims
	}

	var id int64
	switch uid := claims["uid"].(type) {
	case float64:
		id = int64(uid)
	default:
		sub, ok := claims["sub"].(string)
		if !ok {
			return nil, errInvalidClaims
		}
		if _, err := fmt.Sscanf(sub, "%d", &id); err != nil {
			return nil, errInvalidClaims
		}
	}

	login, _ := claims["login"].(string)
	admin, _ := claims["admin"].(bool)

	return &domain.User{Id: id, Login: login, Admin: admin}, nil
}

var errInvalidClaims = &internal_errors.ErrorWithStatusCode{Message: "Invalid token claims", StatusCode: http.StatusUnauthorized}
