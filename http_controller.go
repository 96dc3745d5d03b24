package useradmin

import (
	"errors"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RegisterAdminRoutes mounts the administrative API on the given
// router. Every /admin route runs behind the gate's admin check; the
// verify endpoint handles its own token so it can report revocation
// instead of rejecting at the gate.
func RegisterAdminRoutes[T any](app router.Router[T], opts ...AdminControllerOption) {

	controller := NewAdminController(opts...)

	admin := controller.Gate.RequireAdmin()

	app.Get(controller.Routes.Health, controller.Health).
		SetName("health.get")

	app.Get(controller.Routes.Users, controller.UsersIndex, admin).
		SetName("admin-users.index")

	app.Get(controller.Routes.User, controller.UserShow, admin).
		SetName("admin-users.show")

	app.Post(controller.Routes.DeleteUser, controller.DeleteUser, admin).
		SetName("admin-users.delete")

	app.Post(controller.Routes.BulkDelete, controller.DeleteUsersBulk, admin).
		SetName("admin-users.bulk-delete")

	app.Post(controller.Routes.ToggleStatus, controller.ToggleStatus, admin).
		SetName("admin-users.toggle-status")

	app.Get(controller.Routes.VerifyToken, controller.VerifyToken).
		SetName("auth.verify-token")
}

type AdminControllerRoutes struct {
	Health       string
	Users        string
	User         string
	DeleteUser   string
	BulkDelete   string
	ToggleStatus string
	VerifyToken  string
}

type AdminController struct {
	Logger     Logger
	Gate       *AuthGate
	Manager    *LifecycleManager
	Bulk       *BulkExecutor
	Probe      *RevocationProbe
	Provider   IdentityProvider
	Docs       DocumentStore
	Tombstones RevocationStore
	Storage    Pinger
	Routes     *AdminControllerRoutes
}

type AdminControllerOption func(*AdminController) *AdminController

func NewAdminController(opts ...AdminControllerOption) *AdminController {
	c := &AdminController{
		Logger: defLogger{},
		Routes: &AdminControllerRoutes{
			Health:       "/health",
			Users:        "/admin/users",
			User:         "/admin/user/:id",
			DeleteUser:   "/admin/delete-user",
			BulkDelete:   "/admin/delete-users-bulk",
			ToggleStatus: "/admin/user/:id/toggle-status",
			VerifyToken:  "/auth/verify-token",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Gate == nil {
		panic("Missing AuthGate in admin controller...")
	}

	if c.Manager == nil {
		panic("Missing LifecycleManager in admin controller...")
	}

	if c.Provider == nil {
		panic("Missing IdentityProvider in admin controller...")
	}

	if c.Probe == nil {
		panic("Missing RevocationProbe in admin controller...")
	}

	if c.Bulk == nil {
		c.Bulk = NewBulkExecutor(c.Manager, WithBulkLogger(c.Logger))
	}

	return c
}

func (a *AdminController) Health(ctx router.Context) error {
	if a.Storage != nil {
		if err := a.Storage.Ping(ctx.Context()); err != nil {
			a.Logger.Error("health check storage ping failed", "error", err)
			return ctx.JSON(503, map[string]any{
				"status":    "degraded",
				"timestamp": time.Now().UTC(),
			})
		}
	}

	return ctx.JSON(200, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func (a *AdminController) UsersIndex(ctx router.Context) error {
	limit := queryInt(ctx, "limit", 50)
	offset := queryInt(ctx, "offset", 0)

	users, total, err := a.Provider.ListUsers(ctx.Context(), limit, offset)
	if err != nil {
		a.Logger.Error("list users failed", "error", err)
		return respondError(ctx, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to list users"))
	}

	return respond(ctx, 200, map[string]any{
		"users":       users,
		"total_count": total,
	})
}

// UserShow merges the provider record with the profile document. A
// deleted principal still resolves here through its tombstone; only a
// principal no store has ever seen is a 404.
func (a *AdminController) UserShow(ctx router.Context) error {
	id := ctx.Param("id", "")
	if id == "" {
		return respondError(ctx, goerrors.New("missing user id", goerrors.CategoryBadInput))
	}

	principal, err := a.Provider.GetUser(ctx.Context(), id)
	if err != nil {
		if !goerrors.IsNotFound(err) {
			return respondError(ctx, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to load user"))
		}
		principal = nil
	}

	var profile *ProfileDocument
	if a.Docs != nil {
		if doc, err := a.Docs.Get(ctx.Context(), id); err == nil {
			profile = doc
		} else if !goerrors.IsNotFound(err) {
			a.Logger.Warn("profile lookup failed", "principal_id", id, "error", err)
		}
	}

	var tombstone *Tombstone
	if a.Tombstones != nil {
		if tmb, err := a.Tombstones.Get(ctx.Context(), id); err == nil {
			tombstone = tmb
		} else if !goerrors.IsNotFound(err) {
			a.Logger.Warn("tombstone lookup failed", "principal_id", id, "error", err)
		}
	}

	if principal == nil && profile == nil && tombstone == nil {
		return respondError(ctx, ErrPrincipalNotFound)
	}

	return respond(ctx, 200, map[string]any{
		"auth":      principal,
		"profile":   profile,
		"tombstone": tombstone,
	})
}

// DeleteUserRequest identifies a deletion target by id or email
type DeleteUserRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	// RevokeTokens defaults to true when the body omits it; only an
	// explicit false skips session revocation
	RevokeTokens *bool `json:"revoke_tokens"`
}

// ShouldRevokeTokens reports whether the deletion revokes sessions
func (r DeleteUserRequest) ShouldRevokeTokens() bool {
	return r.RevokeTokens == nil || *r.RevokeTokens
}

// Validate will run validation rules
func (r DeleteUserRequest) Validate() error {
	if r.UserID == "" && r.Email == "" {
		return validation.Errors{
			"user_id": errors.New("either user_id or email is required"),
		}
	}
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			is.Email,
		),
	)
}

func (a *AdminController) DeleteUser(ctx router.Context) error {
	payload := new(DeleteUserRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("delete user parse payload", "error", err)
		return respondError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return respondError(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid delete request"))
	}

	ref := payload.UserID
	if ref == "" {
		ref = payload.Email
	}

	result, err := a.Manager.DeleteUser(ctx.Context(), ref, payload.ShouldRevokeTokens())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return respondError(ctx, err)
		}
		status := StatusFromError(err)
		return ctx.JSON(status, map[string]any{
			"success":   false,
			"error":     err.Error(),
			"result":    result,
			"timestamp": time.Now().UTC(),
		})
	}

	return respond(ctx, 200, map[string]any{
		"result": result,
	})
}

// BulkDeleteRequest carries the targets of a bulk deletion
type BulkDeleteRequest struct {
	UserIDs      []string `json:"user_ids"`
	RevokeTokens *bool    `json:"revoke_tokens"`
}

// ShouldRevokeTokens reports whether the deletions revoke sessions
func (r BulkDeleteRequest) ShouldRevokeTokens() bool {
	return r.RevokeTokens == nil || *r.RevokeTokens
}

// Validate will run validation rules
func (r BulkDeleteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.UserIDs,
			validation.Required,
			validation.Length(1, 1000),
		),
	)
}

// DeleteUsersBulk always answers 200: per-item failures are data in the
// result list, never a request-level error.
func (a *AdminController) DeleteUsersBulk(ctx router.Context) error {
	payload := new(BulkDeleteRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("bulk delete parse payload", "error", err)
		return respondError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return respondError(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid bulk delete request"))
	}

	res := a.Bulk.DeleteMany(ctx.Context(), payload.UserIDs, payload.ShouldRevokeTokens())

	return respond(ctx, 200, map[string]any{
		"results":       res.Results,
		"success_count": res.SuccessCount(),
		"failure_count": res.FailureCount(),
	})
}

// ToggleStatusRequest enables or disables a principal
type ToggleStatusRequest struct {
	Disabled *bool `json:"disabled"`
}

// Validate will run validation rules
func (r ToggleStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Disabled,
			validation.NotNil,
		),
	)
}

func (a *AdminController) ToggleStatus(ctx router.Context) error {
	id := ctx.Param("id", "")
	if id == "" {
		return respondError(ctx, goerrors.New("missing user id", goerrors.CategoryBadInput))
	}

	payload := new(ToggleStatusRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("toggle status parse payload", "error", err)
		return respondError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return respondError(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid toggle request"))
	}

	result, err := a.Manager.ToggleStatus(ctx.Context(), id, *payload.Disabled)
	if err != nil {
		return respondError(ctx, err)
	}

	return respond(ctx, 200, map[string]any{
		"disabled":       *payload.Disabled,
		"tokens_revoked": result.Steps.TokensRevoked,
	})
}

// VerifyToken answers the session probe. A missing header is the only
// 401 here; a token that fails verification gets a definite 200 body
// telling the client to sign out.
func (a *AdminController) VerifyToken(ctx router.Context) error {
	header := ctx.GetString(router.HeaderAuthorization, "")

	raw, err := a.Gate.bearerToken(header)
	if err != nil {
		return respondError(ctx, err)
	}

	check, err := a.Probe.CheckSession(ctx.Context(), raw)
	if err != nil {
		a.Logger.Error("session check failed", "error", err)
		return respondError(ctx, err)
	}

	return respond(ctx, 200, map[string]any{
		"valid":           check.Valid,
		"should_sign_out": check.ShouldSignOut,
		"reason":          check.Reason,
	})
}

func queryInt(ctx router.Context, key string, def int) int {
	raw := ctx.Query(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func respond(c router.Context, status int, payload map[string]any) error {
	body := map[string]any{
		"success":   true,
		"timestamp": time.Now().UTC(),
	}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(status, body)
}

func respondError(c router.Context, err error) error {
	status := StatusFromError(err)

	body := map[string]any{
		"success":   false,
		"timestamp": time.Now().UTC(),
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		body["error"] = rich.Message
		if rich.TextCode != "" {
			body["code"] = rich.TextCode
		}
	} else {
		body["error"] = err.Error()
	}

	return c.JSON(status, body)
}
