package server

import (
	"time"

	"github.com/freenote/freenote/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const localsUser = "user"

// requestLogger tags every request with an id (the client's, if it sent
// one) and logs the outcome.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	id := c.Get(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(HeaderRequestID, id)

	// Errors are rendered here so the logged status is the final one.
	if err := c.Next(); err != nil {
		if herr := s.handleError(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}
	s.log.Info().
		Str("request_id", id).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("latency", time.Since(start)).
		Msg("request")
	return nil
}

// requireToken checks the shared access token against a bcrypt hash.
func requireToken(hash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hash == "" {
			return c.Next()
		}
		token := c.Get(HeaderToken)
		if token == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or missing token")
		}
		return c.Next()
	}
}

// resolveUser picks the user for this request, creating it on first use.
func (s *Server) resolveUser(c *fiber.Ctx) error {
	user := c.Get(HeaderUser)
	if user == "" {
		user = DefaultUser
	}
	if err := store.EnsureUser(c.UserContext(), s.store, user, ""); err != nil {
		return err
	}
	c.Locals(localsUser, user)
	return c.Next()
}

func userOf(c *fiber.Ctx) string {
	user, _ := c.Locals(localsUser).(string)
	return user
}

// HashToken returns the bcrypt hash to configure as serve.token_hash.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
