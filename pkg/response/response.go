package response

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/evjobsch/backend/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// Identity is the authenticated user triple supplied by the auth provider.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GetIdentity retrieves the authenticated identity from the context
func GetIdentity(c *gin.Context) (Identity, error) {
	id := c.GetString("user_id")
	if id == "" {
		return Identity{}, apperror.ErrUnauthorized
	}

	return Identity{
		ID:    id,
		Name:  c.GetString("user_name"),
		Email: c.GetString("user_email"),
	}, nil
}

// DisplayName returns the name to show for the identity, falling back to
// the local part of the email when no display name is set.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	for j := 0; j < len(i.Email); j++ {
		if i.Email[j] == '@' {
			return i.Email[:j]
		}
	}
	return i.Email
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	var rateLimitErr *apperror.RateLimitError
	if errors.As(err, &rateLimitErr) {
		c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
