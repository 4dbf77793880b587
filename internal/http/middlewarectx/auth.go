// Package middlewarectx содержит HTTP middleware для проверки JWT токенов,
// ролей, ограничения частоты запросов и сбора метрик.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке
// Authorization и в случае успеха кладёт пользователя в контекст запроса
// для дальнейшего использования в обработчиках.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized с сообщением об ошибке.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ottmanager/subscription-tracker/internal/http/response"
	"github.com/ottmanager/subscription-tracker/internal/lib/sl"
	"github.com/ottmanager/subscription-tracker/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// CurrentUser — ключ для пользователя в контексте.
const CurrentUser Key = "user"

// Service описывает интерфейс сервиса для валидации JWT токена.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*models.User, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет пользователя в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const op = "middlewarectx.JWTMiddleware"

			log = log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			user, err := authService.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), CurrentUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWTMiddleware проверяет JWT, если он передан, но не требует его.
//
// Используется на открытых конечных точках, где авторизованный пользователь
// получает контекст, а анонимный запрос проходит дальше без него.
func OptionalJWTMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const op = "middlewarectx.OptionalJWTMiddleware"

			if !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			user, err := authService.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Warn("ignoring invalid token on open endpoint",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), CurrentUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext возвращает пользователя, положенного в контекст JWTMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(CurrentUser).(*models.User)
	return user, ok && user != nil
}

// RequireRole возвращает middleware, пропускающий только пользователей
// с ролью не ниже minRole.
func RequireRole(minRole string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}
			if !user.HasRole(minRole) {
				log.Error("access denied",
					slog.String("role", user.Role),
					slog.String("required", minRole))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
