package gateway

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// checkEnv is what body checks may depend on besides the body itself.
type checkEnv struct {
	now    time.Time
	policy service.BookingPolicy
}

// bodyChecker is implemented by bodies that need checks beyond binding tags.
type bodyChecker interface {
	check(env checkEnv) error
}

type userBody struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

func (b *userBody) check(checkEnv) error {
	if strings.TrimSpace(b.Name) == "" {
		return domain.Validation("name must not be blank")
	}
	return nil
}

type userPatchBody struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
}

func (b *userPatchBody) check(checkEnv) error {
	if b.Name != nil && strings.TrimSpace(*b.Name) == "" {
		return domain.Validation("name must not be blank")
	}
	return nil
}

type itemBody struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Available   *bool  `json:"available" binding:"required"`
	RequestID   *int64 `json:"requestId" binding:"omitempty,min=1"`
}

func (b *itemBody) check(checkEnv) error {
	if strings.TrimSpace(b.Name) == "" || strings.TrimSpace(b.Description) == "" {
		return domain.Validation("name and description must not be blank")
	}
	return nil
}

type itemPatchBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

func (b *itemPatchBody) check(checkEnv) error {
	if b.Name != nil && strings.TrimSpace(*b.Name) == "" {
		return domain.Validation("name must not be blank")
	}
	if b.Description != nil && strings.TrimSpace(*b.Description) == "" {
		return domain.Validation("description must not be blank")
	}
	return nil
}

type commentBody struct {
	Text string `json:"text" binding:"required"`
}

func (b *commentBody) check(checkEnv) error {
	if strings.TrimSpace(b.Text) == "" {
		return domain.Validation("text must not be blank")
	}
	return nil
}

type requestBody struct {
	Description string `json:"description" binding:"required"`
}

func (b *requestBody) check(checkEnv) error {
	if strings.TrimSpace(b.Description) == "" {
		return domain.Validation("description must not be blank")
	}
	return nil
}

type bookingBody struct {
	ItemID int64  `json:"itemId" binding:"required,min=1"`
	Start  string `json:"start" binding:"required"`
	End    string `json:"end" binding:"required"`
}

func (b *bookingBody) check(env checkEnv) error {
	start, err := models.ParseTimestamp(b.Start)
	if err != nil {
		return domain.Validation("start: %v", err)
	}
	end, err := models.ParseTimestamp(b.End)
	if err != nil {
		return domain.Validation("end: %v", err)
	}
	return env.policy.CheckPeriod(start.UTC(), end.UTC(), env.now.UTC())
}

// validateBody binds the JSON body into T for validation and puts the raw
// bytes back so the backend receives them untouched.
func validateBody[T any, PT interface {
	*T
	bodyChecker
}](policy service.BookingPolicy, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			abort(c, http.StatusBadRequest, "validation", "cannot read request body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))

		body := PT(new(T))
		if err := binding.JSON.BindBody(raw, body); err != nil {
			abort(c, http.StatusBadRequest, "validation", err.Error())
			return
		}
		if err := body.check(checkEnv{now: now(), policy: policy}); err != nil {
			abort(c, http.StatusBadRequest, domain.KindName(err), err.Error())
			return
		}
		c.Next()
	}
}

func validateID() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param("id")
		if id, err := strconv.ParseInt(raw, 10, 64); err != nil || id <= 0 {
			abort(c, http.StatusBadRequest, "validation", "invalid id: "+strconv.Quote(raw))
			return
		}
		c.Next()
	}
}

func validatePage(cfg config.PaginationConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := c.GetQuery("from"); ok {
			from, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || from < 0 {
				abort(c, http.StatusBadRequest, "validation", "from must be a non-negative integer")
				return
			}
		}
		if raw, ok := c.GetQuery("size"); ok {
			size, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || size <= 0 {
				abort(c, http.StatusBadRequest, "validation", "size must be a positive integer")
				return
			}
			if cfg.MaxSize > 0 && size > cfg.MaxSize {
				abort(c, http.StatusBadRequest, "validation", "size must not exceed "+strconv.Itoa(cfg.MaxSize))
				return
			}
		}
		c.Next()
	}
}

func validateState() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := service.ParseBookingState(c.Query("state")); err != nil {
			abort(c, http.StatusBadRequest, domain.KindName(err), err.Error())
			return
		}
		c.Next()
	}
}

func validateApproved() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("approved")
		if _, err := strconv.ParseBool(strings.TrimSpace(raw)); err != nil {
			abort(c, http.StatusBadRequest, "validation", "approved must be true or false")
			return
		}
		c.Next()
	}
}

// requireCaller checks that the caller identity is present and well formed.
func (g *Gateway) requireCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := g.auth.UserID(c.Request); err != nil {
			abort(c, http.StatusUnauthorized, domain.KindName(err), err.Error())
			return
		}
		c.Next()
	}
}
