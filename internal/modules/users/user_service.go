package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"parts-and-service/internal/models"
)

const tokenTTL = 72 * time.Hour

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// ServiceInterface defines the contract for the user service.
type ServiceInterface interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GoogleLoginURL(state string) string
	GoogleCallback(ctx context.Context, code string) (*models.AuthResponse, error)
	GetProfile(ctx context.Context, userID string) (*models.ProviderProfile, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.ProviderProfile, error)
	VerifyProfile(ctx context.Context, profileID string, verified bool) error
}

// Service implements the user service logic.
type Service struct {
	repo      RepositoryInterface
	jwtSecret string
	oauth     *oauth2.Config
}

// NewService creates a new user service. oauthConfig may be nil when Google
// sign-in is not configured.
func NewService(repo RepositoryInterface, jwtSecret string, oauthConfig *oauth2.Config) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: jwtSecret,
		oauth:     oauthConfig,
	}
}

// NewGoogleOAuthConfig builds the oauth2 config for Google sign-in.
func NewGoogleOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	if clientID == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

// Signup registers a new account. Provider roles also get an empty provider
// profile of the matching kind.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service.Signup: hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, req.Email, req.Name, req.Role, string(hash))
	if err != nil {
		return nil, err
	}

	switch user.Role {
	case models.RoleSupplier, models.RoleMechanic, models.RoleLogistics:
		if _, err := s.repo.CreateProfile(ctx, user.ID, user.Role); err != nil {
			return nil, fmt.Errorf("service.Signup: create profile: %w", err)
		}
	}

	return s.issueToken(user)
}

// Login verifies credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	return s.issueToken(user)
}

// GoogleLoginURL returns the Google consent page URL for the given state.
func (s *Service) GoogleLoginURL(state string) string {
	if s.oauth == nil {
		return ""
	}
	return s.oauth.AuthCodeURL(state)
}

// GoogleCallback exchanges the authorization code, loads the Google profile
// and signs the matching account in, creating a buyer account on first use.
func (s *Service) GoogleCallback(ctx context.Context, code string) (*models.AuthResponse, error) {
	if s.oauth == nil {
		return nil, models.ErrInvalidToken
	}
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service.GoogleCallback: exchange: %w", err)
	}

	resp, err := s.oauth.Client(ctx, tok).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("service.GoogleCallback: userinfo: %w", err)
	}
	defer resp.Body.Close()

	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("service.GoogleCallback: decode userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, models.ErrInvalidToken
	}

	user, err := s.repo.FindByEmail(ctx, info.Email)
	if errors.Is(err, models.ErrNotFound) {
		// First Google sign-in: create a buyer account with no usable
		// password. Password login stays impossible for this account.
		user, err = s.repo.CreateUser(ctx, info.Email, info.Name, models.RoleBuyer, "")
	}
	if err != nil {
		return nil, err
	}
	return s.issueToken(user)
}

func (s *Service) issueToken(user *models.User) (*models.AuthResponse, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &models.AuthResponse{Token: signed, User: user}, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*models.ProviderProfile, error) {
	return s.repo.FindProfileByUserID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.ProviderProfile, error) {
	return s.repo.UpdateProfile(ctx, userID, req)
}

// VerifyProfile is the admin toggle for the verified flag.
func (s *Service) VerifyProfile(ctx context.Context, profileID string, verified bool) error {
	return s.repo.SetProfileVerified(ctx, profileID, verified)
}
