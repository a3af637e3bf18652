package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/savethebee/honeyweb/internal/email"
	"github.com/savethebee/honeyweb/internal/models"
	"github.com/savethebee/honeyweb/internal/store"
)

const (
	newsletterAudience = "newsletter"
	unsubscribeTTL     = 365 * 24 * time.Hour
)

type NewsletterService struct {
	Store    *store.Store
	Notifier *email.Notifier
	Secret   []byte
	BaseURL  string
}

// Subscribe adds the address to the list and flags a matching account.
func (s *NewsletterService) Subscribe(ctx context.Context, address string) error {
	address = NormalizeEmail(address)
	if !IsValidEmail(address) {
		return &ValidationError{Fields: map[string]string{"email": "Enter a valid email address."}}
	}
	if err := s.Store.SetUserSubscribed(ctx, address, true); err != nil {
		return err
	}
	return s.Store.AddSubscribedEmail(ctx, address)
}

func (s *NewsletterService) Unsubscribe(ctx context.Context, address string) error {
	address = NormalizeEmail(address)
	if !IsValidEmail(address) {
		return &ValidationError{Fields: map[string]string{"email": "Enter a valid email address."}}
	}
	if err := s.Store.SetUserSubscribed(ctx, address, false); err != nil {
		return err
	}
	return s.Store.RemoveSubscribedEmail(ctx, address)
}

func (s *NewsletterService) IsSubscribed(ctx context.Context, address string) (bool, error) {
	return s.Store.IsEmailSubscribed(ctx, NormalizeEmail(address))
}

func (s *NewsletterService) Subscribers(ctx context.Context) ([]models.SubscribedEmail, error) {
	return s.Store.ListSubscribedEmails(ctx)
}

// UnsubscribeToken signs a one-click unsubscribe link token for address.
func (s *NewsletterService) UnsubscribeToken(address string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   NormalizeEmail(address),
		Audience:  jwt.ClaimStrings{newsletterAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(unsubscribeTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// ParseUnsubscribeToken returns the address a valid token was issued for.
func (s *NewsletterService) ParseUnsubscribeToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(newsletterAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// UnsubscribeWithToken handles the one-click link from newsletter emails.
func (s *NewsletterService) UnsubscribeWithToken(ctx context.Context, token string) (string, error) {
	address, err := s.ParseUnsubscribeToken(token)
	if err != nil {
		return "", err
	}
	return address, s.Unsubscribe(ctx, address)
}

func (s *NewsletterService) unsubscribeURL(address string) (string, error) {
	token, err := s.UnsubscribeToken(address)
	if err != nil {
		return "", err
	}
	return s.BaseURL + "/User/Unsubscribe?token=" + url.QueryEscape(token), nil
}

// Broadcast queues the newsletter to every subscriber and returns how many
// sends were queued. Delivery is best-effort.
func (s *NewsletterService) Broadcast(ctx context.Context, subject, body string) (int, error) {
	subject, body = strings.TrimSpace(subject), strings.TrimSpace(body)
	if subject == "" || body == "" {
		return 0, &ValidationError{Fields: map[string]string{"newsletter": "Subject and body are required."}}
	}
	if s.Notifier == nil {
		return 0, errors.New("newsletter: no notifier configured")
	}
	subs, err := s.Subscribers(ctx)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, sub := range subs {
		link, err := s.unsubscribeURL(sub.Email)
		if err != nil {
			slog.Warn("Failed to sign unsubscribe link", "error", err, "email", sub.Email)
			continue
		}
		to := sub.Email
		s.Notifier.Go("newsletter", func(ctx context.Context) error {
			return s.Notifier.Newsletter(ctx, to, subject, body, link)
		})
		queued++
	}
	slog.Info("Newsletter queued", "recipients", queued)
	return queued, nil
}
