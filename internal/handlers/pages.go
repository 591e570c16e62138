package handlers

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"vim-audiosync/internal/config"
	"vim-audiosync/internal/middleware"
	"vim-audiosync/internal/models"
	"vim-audiosync/internal/supabase"
)

// UserLookup resolves the Supabase user behind an access token.
type UserLookup interface {
	GetUser(ctx context.Context, accessToken string) (*supabase.User, error)
}

type PagesHandler struct {
	cfg       *config.Config
	templates *template.Template
	users     UserLookup
	log       logrus.FieldLogger
}

func NewPagesHandler(cfg *config.Config, templates *template.Template, users UserLookup, log logrus.FieldLogger) *PagesHandler {
	return &PagesHandler{
		cfg:       cfg,
		templates: templates,
		users:     users,
		log:       log,
	}
}

type indexPage struct {
	Title           string
	PaymentRequired bool
	Amount          string
	PayPalClientID  string
	PollIntervalMS  int64
	MaxUploadGB     int64
	Tiers           []models.SubscriptionTier
	HasPlans        bool
	Year            int
}

type authPage struct {
	Title       string
	SupabaseURL string
	SupabaseKey string
}

type profilePage struct {
	Title  string
	UserID string
	Email  string
}

// Index renders the upload page with the payment settings injected.
func (h *PagesHandler) Index(c *gin.Context) {
	tiers := h.cfg.SubscriptionTiers()
	hasPlans := false
	for _, t := range tiers {
		if t.Configured() {
			hasPlans = true
		}
	}

	h.render(c, "index.html", indexPage{
		Title:           "Upload",
		PaymentRequired: h.cfg.PaymentRequired,
		Amount:          h.cfg.PayPerJobAmount,
		PayPalClientID:  h.cfg.PayPalClientID,
		PollIntervalMS:  (5 * time.Second).Milliseconds(),
		MaxUploadGB:     h.cfg.MaxUploadMB / 1024,
		Tiers:           tiers,
		HasPlans:        hasPlans,
		Year:            time.Now().Year(),
	})
}

func (h *PagesHandler) Login(c *gin.Context) {
	h.render(c, "login.html", h.authPage("Log in"))
}

func (h *PagesHandler) Signup(c *gin.Context) {
	h.render(c, "signup.html", h.authPage("Sign up"))
}

// Logout clears the access token cookie.
func (h *PagesHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", false, false)
	c.Redirect(http.StatusSeeOther, "/login")
}

// Profile expects OptionalAuth in front of it and sends anonymous visitors to /login.
func (h *PagesHandler) Profile(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	page := profilePage{Title: "Account", UserID: userID}
	if user, err := h.lookup(c); err == nil {
		page.Email = user.Email
	} else {
		h.log.WithError(err).WithField("user_id", userID).Warn("failed to load user profile")
	}
	h.render(c, "profile.html", page)
}

// GetMe godoc
// @Summary     Current user
// @Description Returns the signed-in Supabase user
// @Tags        account
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.UserResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /api/me [get]
func (h *PagesHandler) GetMe(c *gin.Context) {
	user, err := h.lookup(c)
	if err != nil {
		h.log.WithError(err).Warn("failed to load user")
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "failed to load user",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.UserResponse{ID: user.ID, Email: user.Email})
}

func (h *PagesHandler) lookup(c *gin.Context) (*supabase.User, error) {
	if h.users == nil {
		return nil, supabase.ErrNoToken
	}
	return h.users.GetUser(c.Request.Context(), c.GetString(middleware.AccessTokenKey))
}

func (h *PagesHandler) authPage(title string) authPage {
	return authPage{
		Title:       title,
		SupabaseURL: h.cfg.SupabaseURL,
		SupabaseKey: h.cfg.SupabasePublishableKey,
	}
}

func (h *PagesHandler) render(c *gin.Context, name string, data any) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.WithError(err).WithField("template", name).Error("failed to render page")
		c.String(http.StatusInternalServerError, "failed to render page")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
